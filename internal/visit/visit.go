// Package visit is everything the storefront remembers about one browser
// between page loads.
package visit

import (
	"errors"
	"strings"
	"time"

	"bakeshop/internal/catalog"
	"bakeshop/internal/domain"
	"bakeshop/internal/reservation"
)

var (
	ErrClaimInFlight = errors.New("account claim already in flight")
	ErrClaimDone     = errors.New("account already claimed")
	ErrNoSession     = errors.New("no checkout session to claim")
	ErrEmptyEmail    = errors.New("email is required")
)

type Visit struct {
	ID          string            `json:"id"`
	Catalog     catalog.Catalog   `json:"catalog"`
	Reservation *reservation.View `json:"reservation"`
	Claim       ClaimForm         `json:"claim"`
	Login       LoginForm         `json:"login"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func New(id string) *Visit {
	return &Visit{ID: id, Reservation: reservation.New()}
}

// ClaimForm backs the "create an account" box on the success page.
type ClaimForm struct {
	SessionID string             `json:"session_id,omitempty"`
	Email     string             `json:"email,omitempty"`
	Loading   bool               `json:"loading,omitempty"`
	Result    domain.ClaimResult `json:"result,omitempty"`
	Message   string             `json:"message,omitempty"`
	StartedAt time.Time          `json:"started_at,omitzero"`
}

// Reset prepares the form for a freshly loaded checkout session.
func (f *ClaimForm) Reset(sessionID, email string) {
	*f = ClaimForm{SessionID: sessionID, Email: email}
}

// Begin gates a submission: one at a time, none after success.
func (f *ClaimForm) Begin(email string) error {
	switch {
	case f.Loading:
		return ErrClaimInFlight
	case f.Result == domain.ClaimSuccess:
		return ErrClaimDone
	case f.SessionID == "":
		return ErrNoSession
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	f.Email = email
	f.StartedAt = time.Now().UTC()
	f.Loading = true
	f.Result = ""
	f.Message = ""
	return nil
}

func (f *ClaimForm) Finish(result domain.ClaimResult, msg string) {
	f.Loading = false
	f.Result = result
	f.Message = msg
}

// Expire finishes a claim that has been loading for longer than after with an
// unknown result, so the visitor can retry. It reports whether it did.
func (f *ClaimForm) Expire(now time.Time, after time.Duration, msg string) bool {
	if !f.Loading || now.Sub(f.StartedAt) <= after {
		return false
	}
	f.Finish(domain.ClaimUnknown, msg)
	return true
}

// ReadOnly reports whether the email field is locked.
func (f ClaimForm) ReadOnly() bool { return f.Loading || f.Result == domain.ClaimSuccess }

func (f ClaimForm) Failed() bool {
	return f.Result != "" && f.Result != domain.ClaimSuccess
}

// LoginForm backs the magic-link request page. Once Complete it stays complete.
type LoginForm struct {
	Email    string `json:"email,omitempty"`
	Complete bool   `json:"complete,omitempty"`
}
