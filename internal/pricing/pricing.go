// Package pricing turns unit amounts and a quantity into the price shown on the buy button.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// BulkThreshold is the quantity the discount unit price starts applying above.
const BulkThreshold = 3

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidAmount   = errors.New("amount must not be negative")
)

var displayLang = language.AmericanEnglish

// Quote is a priced quantity.
type Quote struct {
	DisplayPrice    string `json:"displayPrice"`
	TotalMinorUnits int64  `json:"totalMinorUnits"`
}

// Price formats the total charged for quantity units.
func Price(unitAmount, discountAmount int64, cur string, quantity int) (string, error) {
	q, err := NewQuote(unitAmount, discountAmount, cur, quantity)
	if err != nil {
		return "", err
	}
	return q.DisplayPrice, nil
}

// NewQuote prices quantity units. Above BulkThreshold every unit is charged at
// discountAmount instead of unitAmount.
func NewQuote(unitAmount, discountAmount int64, cur string, quantity int) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, ErrInvalidQuantity
	}
	if unitAmount < 0 || discountAmount < 0 {
		return Quote{}, ErrInvalidAmount
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(cur)))
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, cur)
	}

	amount := unitAmount
	if quantity > BulkThreshold {
		amount = discountAmount
	}
	totalMinor := int64(quantity) * amount

	scale, _ := currency.Standard.Rounding(unit)
	total := float64(totalMinor)
	if scale != 0 {
		total /= 100
	}
	total = math.Round(total*100) / 100

	return Quote{
		DisplayPrice:    format(unit, scale, total),
		TotalMinorUnits: totalMinor,
	}, nil
}

// IsZeroDecimal reports whether amounts in cur are already major units.
func IsZeroDecimal(cur string) (bool, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(cur)))
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownCurrency, cur)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale == 0, nil
}

// format renders total with the en-US symbol for unit: $, CA$, A$, CHF.
// A symbol ending in a letter is followed by a non-breaking space.
func format(unit currency.Unit, scale int, total float64) string {
	p := message.NewPrinter(displayLang)
	sym := p.Sprint(currency.Symbol(unit))
	if r, _ := utf8.DecodeLastRuneInString(sym); unicode.IsLetter(r) {
		sym += "\u00a0"
	}
	return sym + p.Sprint(number.Decimal(total, number.Scale(scale)))
}
