package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidationError is the hosted checkout refusing a session outright.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// HostedCheckout hands a checkout session to the payment provider's hosted page.
type HostedCheckout interface {
	RedirectURL(sessionID string) (string, error)
}

var sessionIDPattern = regexp.MustCompile(`^cs_[A-Za-z0-9_]+$`)

// HostedRedirect sends the browser to <base>/<sessionID>.
type HostedRedirect struct {
	base *url.URL
}

func NewHostedRedirect(base string) (*HostedRedirect, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse hosted checkout url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("hosted checkout url %q must be http(s)", base)
	}
	return &HostedRedirect{base: u}, nil
}

func (h *HostedRedirect) RedirectURL(sessionID string) (string, error) {
	if sessionID == "" {
		return "", &ValidationError{Message: "Missing checkout session."}
	}
	if !sessionIDPattern.MatchString(sessionID) {
		return "", &ValidationError{Message: fmt.Sprintf("Invalid checkout session %q.", sessionID)}
	}
	return h.base.JoinPath(sessionID).String(), nil
}
