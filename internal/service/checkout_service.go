package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bakeshop/internal/backend"
	"bakeshop/internal/repository"
	"bakeshop/internal/visit"
)

const (
	msgUnreachable   = "We couldn't reach the bakery. Please try again."
	msgCheckoutError = "Something went wrong starting your checkout. Please try again."
)

// CheckoutService creates checkout sessions and hands them to the hosted checkout.
type CheckoutService struct {
	backend CheckoutBackend
	hosted  HostedCheckout
	visits  repository.VisitStore
	logger  *zap.Logger
	opts    options
}

func NewCheckoutService(backend CheckoutBackend, hosted HostedCheckout, visits repository.VisitStore, logger *zap.Logger, opts ...Option) *CheckoutService {
	return &CheckoutService{backend: backend, hosted: hosted, visits: visits, logger: logger, opts: newOptions(opts)}
}

// CreateSession registers a checkout for quantity units picked up on date.
func (s *CheckoutService) CreateSession(ctx context.Context, date time.Time, quantity int) (string, error) {
	if quantity <= 0 {
		return "", fmt.Errorf("create session: quantity %d: %w", quantity, ErrInvalidInput)
	}
	return s.backend.CreateCheckoutSession(ctx, quantity, date)
}

// RedirectToCheckout returns where to send the browser for sessionID.
func (s *CheckoutService) RedirectToCheckout(sessionID string) (string, error) {
	return s.hosted.RedirectURL(sessionID)
}

// Submit buys the visit's current selection. On success the selection is
// discarded and the hosted checkout URL returned; on failure the error message
// is put on the selection panel and the buy button re-enabled.
func (s *CheckoutService) Submit(ctx context.Context, visitID string) (string, error) {
	var (
		attempt  int
		quantity int
		date     time.Time
	)
	err := s.visits.WithVisit(ctx, visitID, func(v *visit.Visit) error {
		s.opts.expire(v)
		a, err := v.Reservation.Begin()
		if err != nil {
			return err
		}
		sel := v.Reservation.Selection()
		attempt, quantity, date = a, sel.Quantity, sel.Slot.Date.Time
		return nil
	})
	if err != nil {
		return "", err
	}

	target, err := s.handOff(ctx, date, quantity)

	// The visitor may be gone by now; record the outcome regardless.
	ctx = context.WithoutCancel(ctx)
	if err != nil {
		s.logger.Warn("checkout hand-off failed", zap.String("visit", visitID), zap.Error(err))
		if uerr := s.visits.WithVisit(ctx, visitID, func(v *visit.Visit) error {
			v.Reservation.Fail(attempt, UserMessage(err))
			return nil
		}); uerr != nil {
			s.logger.Error("record checkout failure", zap.Error(uerr))
		}
		return "", err
	}
	if uerr := s.visits.WithVisit(ctx, visitID, func(v *visit.Visit) error {
		v.Reservation.Complete(attempt)
		return nil
	}); uerr != nil {
		s.logger.Error("record checkout hand-off", zap.Error(uerr))
	}
	s.logger.Info("checkout handed off", zap.String("visit", visitID), zap.Int("quantity", quantity))
	return target, nil
}

func (s *CheckoutService) handOff(ctx context.Context, date time.Time, quantity int) (string, error) {
	id, err := s.CreateSession(ctx, date, quantity)
	if err != nil {
		return "", err
	}
	return s.RedirectToCheckout(id)
}

// UserMessage turns a checkout error into the text shown under the buy button.
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case backend.IsNetwork(err):
		return msgUnreachable
	default:
		return msgCheckoutError
	}
}
