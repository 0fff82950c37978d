package service

import (
	"time"

	"bakeshop/internal/visit"
)

// DefaultStaleAfter is how long a checkout hand-off or account claim may stay
// in flight before a later request treats it as failed.
const DefaultStaleAfter = 30 * time.Second

const msgStale = "We lost track of that request. Please try again."

type options struct {
	staleAfter time.Duration
	now        func() time.Time
}

// Option tunes a service.
type Option func(*options)

// WithStaleAfter sets how long an in-flight submission is trusted. Choose a
// value comfortably above the backend request timeout.
func WithStaleAfter(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.staleAfter = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) options {
	o := options{staleAfter: DefaultStaleAfter, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// expire releases submissions whose outcome was never recorded, either because
// the recording write failed or the process died mid-request.
func (o options) expire(v *visit.Visit) {
	now := o.now()
	v.Reservation.Expire(now, o.staleAfter, msgStale)
	v.Claim.Expire(now, o.staleAfter, MsgClaimUnknown)
}
