package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bakeshop/internal/catalog"
	"bakeshop/internal/domain"
	"bakeshop/internal/repository"
	"bakeshop/internal/reservation"
	"bakeshop/internal/visit"
)

// HomePage is what the slot picker renders.
type HomePage struct {
	Slots       []domain.PickupSlot
	Reservation *reservation.View
	Identity    domain.Identity
}

// ReservationService drives the slot picker and the selection panel.
type ReservationService struct {
	backend CatalogBackend
	visits  repository.VisitStore
	logger  *zap.Logger
	opts    options
}

func NewReservationService(backend CatalogBackend, visits repository.VisitStore, logger *zap.Logger, opts ...Option) *ReservationService {
	return &ReservationService{backend: backend, visits: visits, logger: logger, opts: newOptions(opts)}
}

// Load fetches slots, pricing and identity once for a page load. Only the slot
// list is required; without pricing the quote stays pending and without
// identity the visitor is shown as logged out. An open selection is checked
// against the fresh slot list so a sold out slot cannot be bought.
func (s *ReservationService) Load(ctx context.Context, visitID string) (*HomePage, error) {
	var (
		slots    []domain.PickupSlot
		cfg      domain.CheckoutConfig
		cfgErr   error
		identity domain.Identity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		slots, err = s.backend.ListPickupSlots(gctx)
		if err != nil {
			return fmt.Errorf("load pickup slots: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		cfg, cfgErr = s.backend.CheckoutConfig(gctx)
		return nil
	})
	g.Go(func() error {
		id, err := s.backend.CurrentIdentity(gctx)
		if err != nil {
			s.logger.Info("identity unavailable, rendering logged out", zap.Error(err))
			return nil
		}
		identity = id
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &HomePage{Identity: identity}
	err := s.visits.WithVisit(ctx, visitID, func(v *visit.Visit) error {
		s.opts.expire(v)
		v.Catalog = catalog.New(slots)
		if sel := v.Reservation.Selection(); sel != nil && v.Reservation.State() != reservation.StateSubmitting {
			slot, lookupErr := v.Catalog.Lookup(sel.Slot.ID)
			if err := v.Reservation.Refresh(slot, lookupErr == nil); err != nil {
				s.logger.Error("refresh selection", zap.Error(err))
			}
		}
		if cfgErr != nil {
			s.logger.Warn("checkout config unavailable", zap.Error(cfgErr))
		} else if v.Reservation.State() != reservation.StateSubmitting {
			if err := v.Reservation.LoadPricing(cfg); err != nil {
				s.logger.Error("checkout config rejected", zap.Error(err))
			}
		}
		page.Slots = v.Catalog.Slots()
		page.Reservation = v.Reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Slots lists the pickup slots without touching any visit.
func (s *ReservationService) Slots(ctx context.Context) ([]domain.PickupSlot, error) {
	slots, err := s.backend.ListPickupSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pickup slots: %w", err)
	}
	return catalog.New(slots).Slots(), nil
}

// Select opens the selection panel for slotID from the catalog loaded with the page.
func (s *ReservationService) Select(ctx context.Context, visitID string, slotID domain.SlotID) (*reservation.View, error) {
	return s.update(ctx, visitID, func(v *visit.Visit) error {
		slot, err := v.Catalog.Lookup(slotID)
		if err != nil {
			return err
		}
		return v.Reservation.Select(slot)
	})
}

func (s *ReservationService) Increment(ctx context.Context, visitID string) (*reservation.View, error) {
	return s.update(ctx, visitID, func(v *visit.Visit) error { return v.Reservation.Increment() })
}

func (s *ReservationService) Decrement(ctx context.Context, visitID string) (*reservation.View, error) {
	return s.update(ctx, visitID, func(v *visit.Visit) error { return v.Reservation.Decrement() })
}

func (s *ReservationService) Close(ctx context.Context, visitID string) (*reservation.View, error) {
	return s.update(ctx, visitID, func(v *visit.Visit) error { return v.Reservation.Close() })
}

// View returns the stored reservation for visitID, idle if the visit is unknown.
func (s *ReservationService) View(ctx context.Context, visitID string) (*reservation.View, error) {
	v, err := s.visits.Get(ctx, visitID)
	if errors.Is(err, repository.ErrNotFound) {
		return reservation.New(), nil
	}
	if err != nil {
		return nil, err
	}
	return v.Reservation, nil
}

func (s *ReservationService) update(ctx context.Context, visitID string, fn func(v *visit.Visit) error) (*reservation.View, error) {
	var view *reservation.View
	err := s.visits.WithVisit(ctx, visitID, func(v *visit.Visit) error {
		s.opts.expire(v)
		if err := fn(v); err != nil {
			return err
		}
		view = v.Reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
