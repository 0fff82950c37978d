package service

import (
	"context"
	"net/http"
	"time"

	"bakeshop/internal/domain"
)

// CatalogBackend serves the data behind the home page.
type CatalogBackend interface {
	ListPickupSlots(ctx context.Context) ([]domain.PickupSlot, error)
	CheckoutConfig(ctx context.Context) (domain.CheckoutConfig, error)
	CurrentIdentity(ctx context.Context) (domain.Identity, error)
}

type CheckoutBackend interface {
	CreateCheckoutSession(ctx context.Context, quantity int, date time.Time) (string, error)
	CheckoutOutcome(ctx context.Context, sessionID string) (domain.CheckoutOutcome, error)
}

type AccountBackend interface {
	CreateAccount(ctx context.Context, sessionID, email string) error
}

type AuthBackend interface {
	CurrentIdentity(ctx context.Context) (domain.Identity, error)
	RequestMagicLink(ctx context.Context, email string) error
	ExchangeToken(ctx context.Context, token string) (string, []*http.Cookie, error)
	EndSession(ctx context.Context) ([]*http.Cookie, error)
}
