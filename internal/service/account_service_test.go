package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"bakeshop/internal/backend"
	"bakeshop/internal/domain"
	"bakeshop/internal/visit"
)

func TestClassifyClaim(t *testing.T) {
	tests := []struct {
		err  error
		want domain.ClaimResult
	}{
		{nil, domain.ClaimSuccess},
		{status(409), domain.ClaimConflict},
		{status(400), domain.ClaimRejected},
		{status(500), domain.ClaimUnknown},
		{status(404), domain.ClaimUnknown},
		{&backend.NetworkError{Op: "account", Err: errors.New("reset")}, domain.ClaimUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyClaim(tt.err), "err=%v", tt.err)
	}
}

func loadSuccess(t *testing.T, f *fixture) {
	t.Helper()
	f.backend.outcome = domain.CheckoutOutcome{CustomerEmail: "ann@example.com"}
	_, err := f.completion.Load(context.Background(), "v1", url.Values{SessionParam: {"cs_test_1"}})
	require.NoError(t, err)
}

func TestClaim_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		backendErr error
		wantResult domain.ClaimResult
		wantMsg    string
	}{
		{"created", nil, domain.ClaimSuccess, MsgClaimSuccess},
		{"already exists", status(409), domain.ClaimConflict, MsgClaimConflict},
		{"bad request", status(400), domain.ClaimRejected, MsgClaimRejected},
		{"server error", status(500), domain.ClaimUnknown, MsgClaimUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			loadSuccess(t, f)
			f.backend.accountErr = tt.backendErr

			form, err := f.account.Claim(context.Background(), "v1", " ann@example.com ")
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, form.Result)
			assert.Equal(t, tt.wantMsg, form.Message)
			assert.False(t, form.Loading)
			assert.Equal(t, "ann@example.com", form.Email)
		})
	}
}

func TestClaim_Gates(t *testing.T) {
	ctx := context.Background()

	t.Run("no session loaded", func(t *testing.T) {
		f := setup(t)
		_, err := f.account.Claim(ctx, "v1", "ann@example.com")
		assert.ErrorIs(t, err, visit.ErrNoSession)
		assert.Zero(t, f.backend.accounts)
	})

	t.Run("empty email", func(t *testing.T) {
		f := setup(t)
		loadSuccess(t, f)
		_, err := f.account.Claim(ctx, "v1", "   ")
		assert.ErrorIs(t, err, visit.ErrEmptyEmail)
	})

	t.Run("in flight", func(t *testing.T) {
		f := setup(t)
		loadSuccess(t, f)
		require.NoError(t, f.store.WithVisit(ctx, "v1", func(v *visit.Visit) error {
			return v.Claim.Begin("ann@example.com")
		}))
		_, err := f.account.Claim(ctx, "v1", "ann@example.com")
		assert.ErrorIs(t, err, visit.ErrClaimInFlight)
		assert.Zero(t, f.backend.accounts)
	})

	t.Run("after success", func(t *testing.T) {
		f := setup(t)
		loadSuccess(t, f)
		_, err := f.account.Claim(ctx, "v1", "ann@example.com")
		require.NoError(t, err)
		_, err = f.account.Claim(ctx, "v1", "ann@example.com")
		assert.ErrorIs(t, err, visit.ErrClaimDone)
		assert.Equal(t, 1, f.backend.accounts)
	})

	t.Run("retry after failure", func(t *testing.T) {
		f := setup(t)
		loadSuccess(t, f)
		f.backend.accountErr = status(500)
		form, err := f.account.Claim(ctx, "v1", "ann@example.com")
		require.NoError(t, err)
		assert.True(t, form.Failed())

		f.backend.accountErr = nil
		form, err = f.account.Claim(ctx, "v1", "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimSuccess, form.Result)
		assert.True(t, form.ReadOnly())
	})
}

func TestClaim_UnrecordedOutcomeExpires(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	loadSuccess(t, f)
	store := &failingWrites{VisitStore: f.store, failOn: 2}
	clock := time.Now()
	account := NewAccountService(f.backend, store, zaptest.NewLogger(t),
		WithClock(func() time.Time { return clock }), WithStaleAfter(time.Minute))

	_, err := account.Claim(ctx, "v1", "ann@example.com")
	require.Error(t, err)

	_, err = account.Claim(ctx, "v1", "ann@example.com")
	assert.ErrorIs(t, err, visit.ErrClaimInFlight)

	clock = clock.Add(2 * time.Minute)
	form, err := account.Claim(ctx, "v1", "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimSuccess, form.Result)
	assert.Equal(t, 2, f.backend.accounts)
}
