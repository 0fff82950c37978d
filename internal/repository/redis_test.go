package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakeshop/internal/domain"
	"bakeshop/internal/visit"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_WithVisitAndGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "v1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.WithVisit(ctx, "v1", func(v *visit.Visit) error {
		v.Claim.Reset("cs_1", "a@b.c")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("visit:v1"))
	assert.Equal(t, time.Hour, mr.TTL("visit:v1"))

	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", got.Claim.SessionID)
	assert.NotNil(t, got.Reservation)
}

func TestRedisStore_ErrorDoesNotSave(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithVisit(ctx, "v1", func(v *visit.Visit) error {
		v.Login.Complete = true
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("visit:v1"))
}

func TestRedisStore_ClaimGateAcrossUpdates(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.WithVisit(ctx, "v1", func(v *visit.Visit) error {
		v.Claim.Reset("cs_1", "a@b.c")
		return v.Claim.Begin("a@b.c")
	}))
	err := store.WithVisit(ctx, "v1", func(v *visit.Visit) error { return v.Claim.Begin("a@b.c") })
	assert.ErrorIs(t, err, visit.ErrClaimInFlight)

	require.NoError(t, store.WithVisit(ctx, "v1", func(v *visit.Visit) error {
		v.Claim.Finish(domain.ClaimSuccess, "All set! Thank you!")
		return nil
	}))
	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, got.Claim.ReadOnly())
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, store.WithVisit(ctx, "v1", func(v *visit.Visit) error { return nil }))
	require.NoError(t, store.Delete(ctx, "v1"))
	assert.ErrorIs(t, store.Delete(ctx, "v1"), ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("visit:v1", "{not json"))
	_, err := store.Get(context.Background(), "v1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
