package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bakeshop/internal/reservation"
	"bakeshop/internal/visit"
)

// ErrNotFound is returned when no visit is stored under an id.
var ErrNotFound = errors.New("not found")

// VisitStore keeps visits between page loads.
type VisitStore interface {
	Get(ctx context.Context, id string) (*visit.Visit, error)
	// WithVisit loads the visit (creating it when absent), applies fn and saves
	// the result atomically. Nothing is saved when fn returns an error.
	WithVisit(ctx context.Context, id string, fn func(v *visit.Visit) error) error
	Delete(ctx context.Context, id string) error
}

func encode(v *visit.Visit) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode visit: %w", err)
	}
	return b, nil
}

func decode(id string, b []byte) (*visit.Visit, error) {
	var v visit.Visit
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode visit %s: %w", id, err)
	}
	if v.Reservation == nil {
		v.Reservation = reservation.New()
	}
	v.ID = id
	return &v, nil
}
