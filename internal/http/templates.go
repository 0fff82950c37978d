package httpapi

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"bakeshop/internal/router"
	"bakeshop/internal/visit"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// actions are the routes templates may link or post to, by short name.
var actions = map[string]router.Route{
	"home":      router.Home,
	"login":     router.Login,
	"logout":    router.Logout,
	"close":     router.CloseSelection,
	"increment": router.IncrementQty,
	"decrement": router.DecrementQty,
	"checkout":  router.Checkout,
	"claim":     router.ClaimAccount,
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"path": func(name string) (string, error) {
			r, ok := actions[name]
			if !ok {
				return "", fmt.Errorf("unknown route %q", name)
			}
			return r.Path(), nil
		},
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// page carries what the shared header needs.
type page struct {
	Title    string
	LoggedIn bool
	Refresh  *refresh
}

type refresh struct {
	After time.Duration
	URL   string
}

func (r refresh) Seconds() int { return int(r.After / time.Second) }

type slotRow struct {
	Action  string
	Date    string
	Label   string
	SoldOut bool
}

type selectionPanel struct {
	Date         string
	Quantity     int
	Max          int
	CanIncrement bool
	CanDecrement bool
	CanSubmit    bool
	Submitting   bool
	BuyLabel     string
	Error        string
}

type homeData struct {
	page
	Slots []slotRow
	Panel *selectionPanel
}

type successData struct {
	page
	Claim         visit.ClaimForm
	Notice        string
	ConflictLogin string
}

type loginData struct {
	page
	Form   visit.LoginForm
	Notice string
}

type errorData struct {
	page
	Heading string
	Message string
	Back    *link
}

type link struct {
	URL  string
	Text string
}
