package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bakeshop/internal/backend"
	"bakeshop/internal/domain"
	"bakeshop/internal/repository"
	"bakeshop/internal/visit"
)

// SuccessRedirectDelay is how long the success message stays up before the
// page returns home.
const SuccessRedirectDelay = 3 * time.Second

const (
	MsgClaimSuccess  = "All set! Thank you!"
	MsgClaimConflict = "You already have an account with us."
	MsgClaimRejected = "stop trying to hack me, plz"
	MsgClaimUnknown  = "something went wrong 😭"
)

// AccountService turns a finished checkout into an account.
type AccountService struct {
	backend AccountBackend
	visits  repository.VisitStore
	logger  *zap.Logger
	opts    options
}

func NewAccountService(backend AccountBackend, visits repository.VisitStore, logger *zap.Logger, opts ...Option) *AccountService {
	return &AccountService{backend: backend, visits: visits, logger: logger, opts: newOptions(opts)}
}

// Claim creates an account for email against the checkout session loaded on
// the success page. Gate errors (in flight, already done, no session) come
// back as errors alongside the untouched form; backend outcomes come back in
// the form's Result.
func (s *AccountService) Claim(ctx context.Context, visitID, email string) (visit.ClaimForm, error) {
	var form visit.ClaimForm
	err := s.visits.WithVisit(ctx, visitID, func(v *visit.Visit) error {
		s.opts.expire(v)
		form = v.Claim
		if err := v.Claim.Begin(email); err != nil {
			return err
		}
		form = v.Claim
		return nil
	})
	if err != nil {
		return form, err
	}

	result := ClassifyClaim(s.backend.CreateAccount(ctx, form.SessionID, form.Email))
	msg := claimMessage(result)
	s.logger.Info("account claim finished", zap.String("visit", visitID), zap.String("result", string(result)))

	err = s.visits.WithVisit(context.WithoutCancel(ctx), visitID, func(v *visit.Visit) error {
		v.Claim.Finish(result, msg)
		form = v.Claim
		return nil
	})
	return form, err
}

// ClassifyClaim maps the backend's answer to an account claim outcome.
func ClassifyClaim(err error) domain.ClaimResult {
	if err == nil {
		return domain.ClaimSuccess
	}
	switch backend.StatusOf(err) {
	case http.StatusConflict:
		return domain.ClaimConflict
	case http.StatusBadRequest:
		return domain.ClaimRejected
	default:
		return domain.ClaimUnknown
	}
}

func claimMessage(r domain.ClaimResult) string {
	switch r {
	case domain.ClaimSuccess:
		return MsgClaimSuccess
	case domain.ClaimConflict:
		return MsgClaimConflict
	case domain.ClaimRejected:
		return MsgClaimRejected
	default:
		return MsgClaimUnknown
	}
}
