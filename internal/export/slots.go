package export

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrBusy is returned when no render slot frees up within the wait budget.
var ErrBusy = errors.New("export: all render slots busy")

// Slots bounds how many exports render at once. Spreadsheets are built in
// memory, so unbounded parallel downloads translate directly into heap.
type Slots struct {
	sem  *semaphore.Weighted
	wait time.Duration
}

// NewSlots allows at most limit concurrent renders; a caller waits up to
// wait for a slot before getting ErrBusy.
func NewSlots(limit int, wait time.Duration) *Slots {
	if limit < 1 {
		limit = 1
	}
	return &Slots{sem: semaphore.NewWeighted(int64(limit)), wait: wait}
}

// Run acquires a slot, runs fn, and releases the slot. A nil Slots runs fn
// directly. Cancellation of ctx while waiting returns ctx.Err().
func (s *Slots) Run(ctx context.Context, fn func() error) error {
	if s == nil || s.sem == nil {
		return fn()
	}
	wctx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()
	if err := s.sem.Acquire(wctx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
	defer s.sem.Release(1)
	return fn()
}
