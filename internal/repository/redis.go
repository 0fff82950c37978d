package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bakeshop/internal/visit"
)

const maxTxRetries = 5

// errAborted carries fn's error out of a WATCH callback untouched.
type errAborted struct{ err error }

func (e errAborted) Error() string { return e.err.Error() }

// RedisStore keeps visits in Redis so several storefront processes can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

var _ VisitStore = (*RedisStore)(nil)

func (r *RedisStore) Get(ctx context.Context, id string) (*visit.Visit, error) {
	b, err := r.client.Get(ctx, visitKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return decode(id, b)
}

// WithVisit uses WATCH/MULTI so concurrent updates to one visit never
// overwrite each other; a lost race is retried.
func (r *RedisStore) WithVisit(ctx context.Context, id string, fn func(v *visit.Visit) error) error {
	key := visitKey(id)
	txf := func(tx *redis.Tx) error {
		v := visit.New(id)
		b, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get failed: %w", err)
		default:
			if v, err = decode(id, b); err != nil {
				return err
			}
		}
		if err := fn(v); err != nil {
			return errAborted{err}
		}
		v.UpdatedAt = time.Now().UTC()
		data, err := encode(v)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		var aborted errAborted
		if errors.As(err, &aborted) {
			return aborted.err
		}
		if err != nil {
			return fmt.Errorf("redis update failed: %w", err)
		}
		return nil
	}
	return fmt.Errorf("redis update of visit %s: too much contention", id)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, visitKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func visitKey(id string) string {
	return fmt.Sprintf("visit:%s", id)
}
