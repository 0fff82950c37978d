// Package catalog is the ordered list of pickup slots the storefront offers.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"bakeshop/internal/domain"
)

// LowStockThreshold is the availability at or below which a slot is flagged as running out.
const LowStockThreshold = 6

var ErrSlotNotFound = errors.New("slot not found")

// Catalog is immutable once built; callers get copies.
type Catalog struct {
	slots []domain.PickupSlot
}

// New builds a catalog preserving the backend's order. Negative availability is clamped to zero.
func New(slots []domain.PickupSlot) Catalog {
	cp := make([]domain.PickupSlot, len(slots))
	copy(cp, slots)
	for i := range cp {
		if cp[i].Available < 0 {
			cp[i].Available = 0
		}
	}
	return Catalog{slots: cp}
}

func (c Catalog) Slots() []domain.PickupSlot {
	cp := make([]domain.PickupSlot, len(c.slots))
	copy(cp, c.slots)
	return cp
}

func (c Catalog) Len() int { return len(c.slots) }

func (c Catalog) Lookup(id domain.SlotID) (domain.PickupSlot, error) {
	for _, s := range c.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.PickupSlot{}, fmt.Errorf("%w: %s", ErrSlotNotFound, id)
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	if c.slots == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.slots)
}

func (c *Catalog) UnmarshalJSON(b []byte) error {
	var slots []domain.PickupSlot
	if err := json.Unmarshal(b, &slots); err != nil {
		return err
	}
	*c = New(slots)
	return nil
}

// Label is the availability blurb shown next to a slot.
func Label(available int) string {
	switch {
	case available <= 0:
		return "Sold Out!"
	case available <= LowStockThreshold:
		return fmt.Sprintf("Only %d left!", available)
	default:
		return fmt.Sprintf("%d available", available)
	}
}
