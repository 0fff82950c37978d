// Package reservation holds the state behind the pickup selection panel: which
// slot is picked, how many units, and the price for that quantity.
package reservation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakeshop/internal/domain"
	"bakeshop/internal/pricing"
)

type State string

const (
	StateIdle         State = "idle"
	StateSlotSelected State = "slotSelected"
	StateQuoteLoaded  State = "quoteLoaded"
	StateSubmitting   State = "submitting"
)

var (
	ErrSoldOut        = errors.New("slot is sold out")
	ErrQuantityBounds = errors.New("quantity out of bounds")
	ErrInvalidState   = errors.New("invalid state")
	ErrNoPricing      = errors.New("pricing not loaded")
)

// Selection is the in-progress choice of slot and quantity.
type Selection struct {
	Slot     domain.PickupSlot `json:"slot"`
	Quantity int               `json:"quantity"`
}

// View is the reservation view-state machine. The zero value is idle.
type View struct {
	state     State
	selection *Selection
	pricing   *domain.CheckoutConfig
	quote     *pricing.Quote
	err       string
	attempt   int
	began     time.Time
}

func New() *View { return &View{state: StateIdle} }

func (v *View) State() State {
	if v.state == "" {
		return StateIdle
	}
	return v.state
}

// Selection returns a copy of the current selection, or nil when idle.
func (v *View) Selection() *Selection {
	if v.selection == nil {
		return nil
	}
	cp := *v.selection
	return &cp
}

func (v *View) Quote() *pricing.Quote {
	if v.quote == nil {
		return nil
	}
	cp := *v.quote
	return &cp
}

func (v *View) Pricing() *domain.CheckoutConfig {
	if v.pricing == nil {
		return nil
	}
	cp := *v.pricing
	return &cp
}

// Error is the message from the last failed submission, if any.
func (v *View) Error() string { return v.err }

// MaxQuantity is min(available, domain.MaxPerOrder) for the selected slot.
func (v *View) MaxQuantity() int {
	if v.selection == nil {
		return 0
	}
	return min(v.selection.Slot.Available, domain.MaxPerOrder)
}

func (v *View) CanIncrement() bool {
	return v.selection != nil && v.State() != StateSubmitting && v.selection.Quantity < v.MaxQuantity()
}

func (v *View) CanDecrement() bool {
	return v.selection != nil && v.State() != StateSubmitting && v.selection.Quantity > 1
}

func (v *View) CanSubmit() bool { return v.State() == StateQuoteLoaded }

// Select picks slot with quantity 1. Picking again replaces the selection.
func (v *View) Select(slot domain.PickupSlot) error {
	if v.State() == StateSubmitting {
		return ErrInvalidState
	}
	if slot.Available <= 0 {
		return ErrSoldOut
	}
	v.selection = &Selection{Slot: slot, Quantity: 1}
	v.err = ""
	v.state = StateSlotSelected
	return v.requote()
}

// LoadPricing records the pricing configuration. It may arrive before or after
// a slot is selected.
func (v *View) LoadPricing(cfg domain.CheckoutConfig) error {
	if v.State() == StateSubmitting {
		return ErrInvalidState
	}
	if _, err := pricing.NewQuote(cfg.UnitAmount, cfg.DiscountAmount, cfg.Currency, 1); err != nil {
		return fmt.Errorf("load pricing: %w", err)
	}
	v.pricing = &cfg
	return v.requote()
}

func (v *View) Increment() error {
	if !v.CanIncrement() {
		if v.selection == nil || v.State() == StateSubmitting {
			return ErrInvalidState
		}
		return ErrQuantityBounds
	}
	v.selection.Quantity++
	return v.requote()
}

func (v *View) Decrement() error {
	if !v.CanDecrement() {
		if v.selection == nil || v.State() == StateSubmitting {
			return ErrInvalidState
		}
		return ErrQuantityBounds
	}
	v.selection.Quantity--
	return v.requote()
}

// Begin moves a priced selection into submitting and returns the attempt number
// that Fail and Complete must present.
func (v *View) Begin() (int, error) {
	if v.State() != StateQuoteLoaded {
		if v.State() == StateSlotSelected {
			return 0, ErrNoPricing
		}
		return 0, ErrInvalidState
	}
	v.attempt++
	v.err = ""
	v.state = StateSubmitting
	v.began = time.Now().UTC()
	return v.attempt, nil
}

// Expire fails a submission that began more than after before now, as if its
// outcome had come back with msg. It reports whether it did.
func (v *View) Expire(now time.Time, after time.Duration, msg string) bool {
	if v.State() != StateSubmitting || now.Sub(v.began) <= after {
		return false
	}
	return v.Fail(v.attempt, msg)
}

// Refresh re-checks the selection against a freshly loaded slot. found is false
// when the slot is no longer offered. A vanished or sold out slot closes the
// panel; otherwise the quantity is capped at the new ceiling and requoted.
func (v *View) Refresh(slot domain.PickupSlot, found bool) error {
	if v.selection == nil {
		return nil
	}
	if v.State() == StateSubmitting {
		return ErrInvalidState
	}
	if !found || slot.Available <= 0 {
		v.reset()
		return nil
	}
	v.selection.Slot = slot
	v.selection.Quantity = min(v.selection.Quantity, v.MaxQuantity())
	return v.requote()
}

// Fail surfaces msg and re-enables the buy button. Stale attempts are ignored.
func (v *View) Fail(attempt int, msg string) bool {
	if v.State() != StateSubmitting || attempt != v.attempt {
		return false
	}
	v.err = msg
	v.state = StateQuoteLoaded
	return true
}

// Complete discards the selection after a successful hand-off.
func (v *View) Complete(attempt int) bool {
	if v.State() != StateSubmitting || attempt != v.attempt {
		return false
	}
	v.reset()
	return true
}

// Close dismisses the selection panel.
func (v *View) Close() error {
	if v.State() == StateSubmitting {
		return ErrInvalidState
	}
	v.reset()
	return nil
}

func (v *View) reset() {
	v.selection = nil
	v.quote = nil
	v.err = ""
	v.state = StateIdle
}

func (v *View) requote() error {
	if v.selection == nil {
		return nil
	}
	if v.pricing == nil {
		v.quote = nil
		v.state = StateSlotSelected
		return nil
	}
	q, err := pricing.NewQuote(v.pricing.UnitAmount, v.pricing.DiscountAmount, v.pricing.Currency, v.selection.Quantity)
	if err != nil {
		return err
	}
	v.quote = &q
	if v.state != StateSubmitting {
		v.state = StateQuoteLoaded
	}
	return nil
}

type viewJSON struct {
	State     State                  `json:"state"`
	Selection *Selection             `json:"selection,omitempty"`
	Pricing   *domain.CheckoutConfig `json:"pricing,omitempty"`
	Quote     *pricing.Quote         `json:"quote,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Attempt   int                    `json:"attempt,omitempty"`
	BeganAt   time.Time              `json:"beganAt,omitzero"`
}

func (v *View) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewJSON{
		State:     v.State(),
		Selection: v.selection,
		Pricing:   v.pricing,
		Quote:     v.quote,
		Error:     v.err,
		Attempt:   v.attempt,
		BeganAt:   v.began,
	})
}

// UnmarshalJSON restores a stored view and rejects one that breaks the quantity bounds.
func (v *View) UnmarshalJSON(b []byte) error {
	var j viewJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	nv := View{
		state:     j.State,
		selection: j.Selection,
		pricing:   j.Pricing,
		quote:     j.Quote,
		err:       j.Error,
		attempt:   j.Attempt,
		began:     j.BeganAt,
	}
	switch nv.State() {
	case StateIdle:
		nv.selection, nv.quote = nil, nil
	case StateSlotSelected, StateQuoteLoaded, StateSubmitting:
		if nv.selection == nil {
			return fmt.Errorf("%w: %s without selection", ErrInvalidState, nv.state)
		}
		if q := nv.selection.Quantity; q < 1 || q > nv.MaxQuantity() {
			return fmt.Errorf("%w: quantity %d", ErrQuantityBounds, q)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidState, j.State)
	}
	*v = nv
	return nil
}
