// Package router names every page and form action of the storefront, so
// navigation goes through typed routes instead of hand-built strings.
package router

import (
	"fmt"
	"net/url"
	"strings"
)

type Route string

// Pages.
const (
	Home       Route = "/"
	Login      Route = "/login"
	LoginToken Route = "/login/:token"
	Logout     Route = "/logout"
	Success    Route = "/success"
)

// Form actions.
const (
	SelectSlot       Route = "/slots/:id/select"
	IncrementQty     Route = "/selection/increment"
	DecrementQty     Route = "/selection/decrement"
	CloseSelection   Route = "/selection/close"
	Checkout         Route = "/checkout"
	ClaimAccount     Route = "/success/account"
	RequestLoginLink Route = "/login"
)

// Pages lists the routes a visitor can land on.
var Pages = []Route{Home, Login, LoginToken, Logout, Success}

// Pattern is the route in gin's path syntax.
func (r Route) Pattern() string { return string(r) }

// Path fills the route's :params in order. It panics on a count mismatch,
// which is a programming error.
func (r Route) Path(params ...string) string {
	segs := strings.Split(string(r), "/")
	i := 0
	for n, s := range segs {
		if strings.HasPrefix(s, ":") {
			if i >= len(params) {
				panic(fmt.Sprintf("router: %s needs more params", r))
			}
			segs[n] = url.PathEscape(params[i])
			i++
		}
	}
	if i != len(params) {
		panic(fmt.Sprintf("router: %s takes %d params, got %d", r, i, len(params)))
	}
	return strings.Join(segs, "/")
}

// With appends a query string to a parameterless route.
func (r Route) With(q url.Values) string {
	if len(q) == 0 {
		return r.Path()
	}
	return r.Path() + "?" + q.Encode()
}

// LoginFor is the login page with the email field pre-filled.
func LoginFor(email string) string {
	if email == "" {
		return Login.Path()
	}
	return Login.With(url.Values{"email": {email}})
}

// Match resolves a request path to a page route and its params.
func Match(path string) (Route, map[string]string, bool) {
	for _, r := range Pages {
		if params, ok := r.match(path); ok {
			return r, params, true
		}
	}
	return "", nil, false
}

func (r Route) match(path string) (map[string]string, bool) {
	want := strings.Split(string(r), "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return nil, false
	}
	params := map[string]string{}
	for i := range want {
		if strings.HasPrefix(want[i], ":") {
			if got[i] == "" {
				return nil, false
			}
			v, err := url.PathUnescape(got[i])
			if err != nil {
				return nil, false
			}
			params[want[i][1:]] = v
			continue
		}
		if want[i] != got[i] {
			return nil, false
		}
	}
	return params, true
}

// SafeLocal returns loc when it points at one of the storefront pages on this
// site, and fallback otherwise.
func SafeLocal(loc string, fallback Route) string {
	u, err := url.Parse(loc)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(loc, "/") || strings.HasPrefix(loc, "//") || strings.HasPrefix(loc, "/\\") {
		return fallback.Path()
	}
	if _, _, ok := Match(u.Path); !ok {
		return fallback.Path()
	}
	return loc
}
