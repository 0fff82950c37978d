package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"bakeshop/internal/repository"
	"bakeshop/internal/router"
	"bakeshop/internal/visit"
)

// SessionParam is the query parameter the hosted checkout returns the session id in.
const SessionParam = "s"

// Completion is the result of loading the success page. A non-empty Redirect
// means the page must not render and the browser goes there instead.
type Completion struct {
	Redirect string
	Claim    visit.ClaimForm
}

// CompletionService reads back the outcome of a hosted checkout.
type CompletionService struct {
	backend CheckoutBackend
	visits  repository.VisitStore
	logger  *zap.Logger
	opts    options
}

func NewCompletionService(backend CheckoutBackend, visits repository.VisitStore, logger *zap.Logger, opts ...Option) *CompletionService {
	return &CompletionService{backend: backend, visits: visits, logger: logger, opts: newOptions(opts)}
}

// Load asks the backend once for the outcome of the session named in query.
// Any error outcome sends the visitor back to home without explanation.
func (s *CompletionService) Load(ctx context.Context, visitID string, query url.Values) (Completion, error) {
	sessionID := strings.TrimSpace(query.Get(SessionParam))
	if sessionID == "" {
		return Completion{Redirect: router.Home.Path()}, nil
	}

	outcome, err := s.backend.CheckoutOutcome(ctx, sessionID)
	if err != nil {
		s.logger.Warn("checkout outcome unavailable", zap.String("session", sessionID), zap.Error(err))
		return Completion{Redirect: router.Home.Path()}, nil
	}
	if outcome.Error != "" {
		s.logger.Info("checkout outcome carried an error", zap.String("session", sessionID), zap.String("error", outcome.Error))
		return Completion{Redirect: router.Home.Path()}, nil
	}

	var c Completion
	err = s.visits.WithVisit(ctx, visitID, func(v *visit.Visit) error {
		s.opts.expire(v)
		if v.Claim.SessionID != sessionID {
			v.Claim.Reset(sessionID, outcome.CustomerEmail)
		}
		c.Claim = v.Claim
		return nil
	})
	if err != nil {
		return Completion{}, err
	}
	return c, nil
}
