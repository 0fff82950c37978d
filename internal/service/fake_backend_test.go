package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"bakeshop/internal/backend"
	"bakeshop/internal/domain"
	"bakeshop/internal/repository"
	"bakeshop/internal/visit"
)

// fakeBackend stands in for every backend collaborator.
type fakeBackend struct {
	mu sync.Mutex

	slots    []domain.PickupSlot
	slotsErr error
	config   domain.CheckoutConfig
	cfgErr   error
	identity domain.Identity
	idErr    error

	sessionID  string
	sessionErr error
	sessions   []createCall

	outcome    domain.CheckoutOutcome
	outcomeErr error
	outcomes   int

	accountErr error
	accounts   int

	linkErr  error
	links    []string
	location string
	tokenErr error
	endErr   error
}

type createCall struct {
	quantity int
	date     time.Time
}

func (f *fakeBackend) ListPickupSlots(ctx context.Context) ([]domain.PickupSlot, error) {
	return f.slots, f.slotsErr
}

func (f *fakeBackend) CheckoutConfig(ctx context.Context) (domain.CheckoutConfig, error) {
	return f.config, f.cfgErr
}

func (f *fakeBackend) CurrentIdentity(ctx context.Context) (domain.Identity, error) {
	return f.identity, f.idErr
}

func (f *fakeBackend) CreateCheckoutSession(ctx context.Context, quantity int, date time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, createCall{quantity: quantity, date: date})
	return f.sessionID, f.sessionErr
}

func (f *fakeBackend) CheckoutOutcome(ctx context.Context, sessionID string) (domain.CheckoutOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes++
	return f.outcome, f.outcomeErr
}

func (f *fakeBackend) CreateAccount(ctx context.Context, sessionID, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts++
	return f.accountErr
}

func (f *fakeBackend) RequestMagicLink(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, email)
	return f.linkErr
}

func (f *fakeBackend) ExchangeToken(ctx context.Context, token string) (string, []*http.Cookie, error) {
	if f.tokenErr != nil {
		return "", nil, f.tokenErr
	}
	return f.location, []*http.Cookie{{Name: "session", Value: token}}, nil
}

func (f *fakeBackend) EndSession(ctx context.Context) ([]*http.Cookie, error) {
	if f.endErr != nil {
		return nil, f.endErr
	}
	return []*http.Cookie{{Name: "session", MaxAge: -1}}, nil
}

func status(code int) error {
	return &backend.ServerError{Op: "test", Status: code}
}

type fixture struct {
	backend     *fakeBackend
	store       *repository.MemoryStore
	reservation *ReservationService
	checkout    *CheckoutService
	completion  *CompletionService
	account     *AccountService
	auth        *AuthService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	fb := &fakeBackend{
		slots: []domain.PickupSlot{
			{ID: "1", Date: domain.SlotDate{Time: time.Date(2026, 11, 7, 0, 0, 0, 0, time.UTC)}, Available: 20},
			{ID: "2", Date: domain.SlotDate{Time: time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)}, Available: 0},
			{ID: "3", Date: domain.SlotDate{Time: time.Date(2026, 11, 21, 0, 0, 0, 0, time.UTC)}, Available: 2},
		},
		config:    domain.CheckoutConfig{PublicKey: "pk_test", UnitAmount: 1000, DiscountAmount: 800, Currency: "usd"},
		sessionID: "cs_test_1",
		location:  "/",
	}
	store := repository.NewMemoryStore(0)
	hosted, err := NewHostedRedirect("https://checkout.example.com/pay")
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		backend:     fb,
		store:       store,
		reservation: NewReservationService(fb, store, logger),
		checkout:    NewCheckoutService(fb, hosted, store, logger),
		completion:  NewCompletionService(fb, store, logger),
		account:     NewAccountService(fb, store, logger),
		auth:        NewAuthService(fb, store, logger),
	}
}

// failingWrites fails the failOn-th WithVisit call and passes the rest through.
type failingWrites struct {
	repository.VisitStore
	calls  int
	failOn int
}

func (s *failingWrites) WithVisit(ctx context.Context, id string, fn func(v *visit.Visit) error) error {
	s.calls++
	if s.calls == s.failOn {
		return errors.New("store unavailable")
	}
	return s.VisitStore.WithVisit(ctx, id, fn)
}
