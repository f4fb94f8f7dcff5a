package services

import (
	"context"
	"errors"
	"time"

	"eventcircle/internal/domain"
)

// RetryPolicy bounds how often and how patiently a transient failure is retried.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy is used by services unless overridden.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 25 * time.Millisecond}

// Retry runs fn until it succeeds, returns a non-transient error, the attempts
// run out or ctx is done. The delay doubles after every transient failure.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay
	var err error
	for i := 0; i < attempts; i++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, domain.ErrTransient) {
			return err
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.MarkTransient(ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
