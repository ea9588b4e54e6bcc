package review

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the retries of the external analysis call.
type RetryPolicy struct {
	Attempts        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy makes three attempts, waiting 4s then 8s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:        3,
		InitialInterval: 4 * time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
	}
}

// Waits returns the delays before each retry, in order.
func (p RetryPolicy) Waits() []time.Duration {
	b := p.exponential()
	b.Reset()
	waits := make([]time.Duration, 0, max(p.Attempts-1, 0))
	for range max(p.Attempts-1, 0) {
		waits = append(waits, b.NextBackOff())
	}
	return waits
}

func (p RetryPolicy) exponential() *backoff.ExponentialBackOff {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	return &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialInterval,
		RandomizationFactor: 0,
		Multiplier:          mult,
		MaxInterval:         p.MaxInterval,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
}

// backOff builds the schedule for one call. Cancelling ctx stops retrying.
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	retries := max(p.Attempts-1, 0)
	return backoff.WithContext(backoff.WithMaxRetries(p.exponential(), uint64(retries)), ctx)
}

// retry runs op under p. It returns op's last error once attempts run out.
func (p RetryPolicy) retry(ctx context.Context, op func() error, notify backoff.Notify, timer backoff.Timer) error {
	return backoff.RetryNotifyWithTimer(op, p.backOff(ctx), notify, timer)
}
