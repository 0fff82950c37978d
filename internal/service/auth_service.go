package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"bakeshop/internal/repository"
	"bakeshop/internal/router"
	"bakeshop/internal/visit"
)

// LoginPage is what the login view renders. Redirect wins over everything else.
type LoginPage struct {
	Redirect string
	Form     visit.LoginForm
}

// AuthService runs the magic-link login.
type AuthService struct {
	backend AuthBackend
	visits  repository.VisitStore
	logger  *zap.Logger
}

func NewAuthService(backend AuthBackend, visits repository.VisitStore, logger *zap.Logger) *AuthService {
	return &AuthService{backend: backend, visits: visits, logger: logger}
}

// Authenticated reports whether the backend already knows the visitor. A
// failing identity call counts as not logged in.
func (s *AuthService) Authenticated(ctx context.Context) bool {
	id, err := s.backend.CurrentIdentity(ctx)
	if err != nil {
		s.logger.Info("identity check failed", zap.Error(err))
		return false
	}
	return id.LoggedIn
}

// LoginPage loads the login view: logged-in visitors go home, everyone else
// gets the form, pre-filled with prefill unless a request was already sent.
func (s *AuthService) LoginPage(ctx context.Context, visitID, prefill string) (LoginPage, error) {
	if s.Authenticated(ctx) {
		return LoginPage{Redirect: router.Home.Path()}, nil
	}
	v, err := s.visits.Get(ctx, visitID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return LoginPage{}, err
	}
	var form visit.LoginForm
	if v != nil {
		form = v.Login
	}
	if !form.Complete && prefill != "" {
		form.Email = prefill
	}
	return LoginPage{Form: form}, nil
}

// RequestLogin asks for a login link for email. Once accepted the login view
// shows the check-your-email message for good.
func (s *AuthService) RequestLogin(ctx context.Context, visitID, email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("email %q: %w", email, ErrInvalidInput)
	}
	if err := s.backend.RequestMagicLink(ctx, addr.Address); err != nil {
		return err
	}
	return s.visits.WithVisit(context.WithoutCancel(ctx), visitID, func(v *visit.Visit) error {
		v.Login = visit.LoginForm{Email: addr.Address, Complete: true}
		return nil
	})
}

// CompleteLogin exchanges a one-time token for a session and returns where to
// go next plus the session cookies to hand the visitor.
func (s *AuthService) CompleteLogin(ctx context.Context, token string) (string, []*http.Cookie, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil, ErrLoginFailed
	}
	loc, cookies, err := s.backend.ExchangeToken(ctx, token)
	if err != nil {
		s.logger.Warn("token exchange failed", zap.Error(err))
		return "", nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	return router.SafeLocal(loc, router.Home), cookies, nil
}

// Logout ends the backend session and drops the visit.
func (s *AuthService) Logout(ctx context.Context, visitID string) ([]*http.Cookie, error) {
	cookies, err := s.backend.EndSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.visits.Delete(ctx, visitID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("drop visit on logout", zap.Error(err))
	}
	return cookies, nil
}
