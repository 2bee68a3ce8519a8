package services

import (
	"context"
	"time"
)

// Pacer decides how long to wait before processing the next submission
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPacer waits the same delay every time
type FixedPacer struct {
	Delay time.Duration
}

func (p FixedPacer) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoPacing never waits
type NoPacing struct{}

func (NoPacing) Wait(context.Context) error { return nil }
