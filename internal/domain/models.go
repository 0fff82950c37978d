package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MaxPerOrder caps how many units one order can carry regardless of availability.
const MaxPerOrder = 12

// SlotDateLayout is the display format the backend uses for pickup dates.
const SlotDateLayout = "Mon, Jan 02, 2006"

// SlotID is an opaque pickup slot identifier. The backend sends it as a number or a string.
type SlotID string

func (id *SlotID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = SlotID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("slot id: %w", err)
	}
	*id = SlotID(n.String())
	return nil
}

// SlotDate is a pickup date. It accepts RFC 3339 or SlotDateLayout on input.
type SlotDate struct{ time.Time }

func (d *SlotDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("slot date: %w", err)
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, SlotDateLayout, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("slot date: unrecognised format %q", s)
}

func (d SlotDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

// Label renders the date the way the storefront lists it.
func (d SlotDate) Label() string { return d.Format(SlotDateLayout) }

// PickupSlot is a pickup date with its remaining capacity
type PickupSlot struct {
	ID        SlotID   `json:"id"`
	Date      SlotDate `json:"date"`
	Available int      `json:"available"`
}

// CheckoutConfig is the pricing configuration published by the backend.
type CheckoutConfig struct {
	PublicKey      string `json:"publicKey"`
	UnitAmount     int64  `json:"unitAmount"`
	DiscountAmount int64  `json:"discountAmount"`
	Currency       string `json:"currency"`
}

// CheckoutOutcome is what the backend reports about a finished hosted checkout.
type CheckoutOutcome struct {
	SessionID     string `json:"id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Identity is the backend's view of the current visitor.
type Identity struct {
	LoggedIn bool   `json:"logged_in"`
	Email    string `json:"email,omitempty"`
}

// ClaimResult tags the outcome of an account claim.
type ClaimResult string

const (
	ClaimSuccess  ClaimResult = "Success"
	ClaimConflict ClaimResult = "Conflict"
	ClaimRejected ClaimResult = "Rejected"
	ClaimUnknown  ClaimResult = "Unknown"
)
