package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"bakeshop/internal/repository"
	"bakeshop/internal/visit"
)

func TestLoginPage_LoggedInGoesHome(t *testing.T) {
	f := setup(t)
	f.backend.identity.LoggedIn = true

	page, err := f.auth.LoginPage(context.Background(), "v1", "")
	require.NoError(t, err)
	assert.Equal(t, "/", page.Redirect)
}

func TestLoginPage_Prefill(t *testing.T) {
	f := setup(t)
	f.backend.idErr = status(500)

	page, err := f.auth.LoginPage(context.Background(), "v1", "ann@example.com")
	require.NoError(t, err)
	assert.Empty(t, page.Redirect)
	assert.Equal(t, "ann@example.com", page.Form.Email)
	assert.False(t, page.Form.Complete)
}

func TestRequestLogin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	err := f.auth.RequestLogin(ctx, "v1", "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.backend.links)

	require.NoError(t, f.auth.RequestLogin(ctx, "v1", " Ann <ann@example.com> "))
	assert.Equal(t, []string{"ann@example.com"}, f.backend.links)

	page, err := f.auth.LoginPage(ctx, "v1", "other@example.com")
	require.NoError(t, err)
	assert.True(t, page.Form.Complete)
	assert.Equal(t, "ann@example.com", page.Form.Email, "prefill must not replace a sent request")
}

func TestRequestLogin_BackendFailureLeavesFormOpen(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.backend.linkErr = status(500)

	require.Error(t, f.auth.RequestLogin(ctx, "v1", "ann@example.com"))
	page, err := f.auth.LoginPage(ctx, "v1", "")
	require.NoError(t, err)
	assert.False(t, page.Form.Complete)
}

func TestCompleteLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("exchange succeeds", func(t *testing.T) {
		f := setup(t)
		f.backend.location = "/success?s=cs_test_1"
		loc, cookies, err := f.auth.CompleteLogin(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "/success?s=cs_test_1", loc)
		require.Len(t, cookies, 1)
		assert.Equal(t, "tok", cookies[0].Value)
	})

	t.Run("foreign location is replaced", func(t *testing.T) {
		f := setup(t)
		f.backend.location = "https://evil.example.com/"
		loc, _, err := f.auth.CompleteLogin(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "/", loc)
	})

	t.Run("empty token", func(t *testing.T) {
		f := setup(t)
		_, _, err := f.auth.CompleteLogin(ctx, " ")
		assert.ErrorIs(t, err, ErrLoginFailed)
	})

	t.Run("exchange fails", func(t *testing.T) {
		f := setup(t)
		f.backend.tokenErr = status(401)
		_, _, err := f.auth.CompleteLogin(ctx, "tok")
		assert.ErrorIs(t, err, ErrLoginFailed)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.reservation.Load(ctx, "v1")
	require.NoError(t, err)

	cookies, err := f.auth.Logout(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	_, err = f.store.Get(ctx, "v1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	f.backend.endErr = errors.New("down")
	_, err = f.auth.Logout(ctx, "v1")
	assert.Error(t, err)
}

// wrappingStore reports misses the way a layered store would, wrapped.
type wrappingStore struct {
	repository.VisitStore
}

func (w wrappingStore) Get(ctx context.Context, id string) (*visit.Visit, error) {
	v, err := w.VisitStore.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}
	return v, nil
}

func TestLoginPage_WrappedMissIsNotAnError(t *testing.T) {
	f := setup(t)
	auth := NewAuthService(f.backend, wrappingStore{f.store}, zaptest.NewLogger(t))

	page, err := auth.LoginPage(context.Background(), "unknown", "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", page.Form.Email)
}
