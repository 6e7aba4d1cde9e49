// Package sequence allocates gapless, monotonically increasing numbers
// from named counters held in the parameter store.
//
// A counter's persisted value is the last issued number, so allocation is
// read, add, write back. The parameter store has no atomic increment
// primitive: callers must serialize allocations on the same counter
// externally (the engine holds its commit lock across the whole
// allocate-and-persist critical section).
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/xraph/facture/param"
)

// ErrCorruptCounter reports a counter parameter that is missing or does not
// parse as an integer. This is a configuration defect, not user error, and
// should be surfaced as an operational alert.
var ErrCorruptCounter = errors.New("sequence: corrupt counter")

// Allocator hands out numbers from named counters. It must be the only
// writer of counter parameters.
type Allocator struct {
	params param.Store
}

// NewAllocator creates an Allocator over the given parameter store.
func NewAllocator(params param.Store) *Allocator {
	return &Allocator{params: params}
}

// Next issues the next number from the named counter and persists the new
// value. The first call after a counter holds "100" returns 101.
func (a *Allocator) Next(ctx context.Context, name string) (int64, error) {
	return a.NextN(ctx, name, 1)
}

// NextN reserves n consecutive numbers from the named counter in a single
// read-and-write, returning the first. The reserved range is
// [first, first+n-1].
func (a *Allocator) NextN(ctx context.Context, name string, n int64) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("sequence: reserve %d from %q: count must be positive", n, name)
	}

	current, err := a.Current(ctx, name)
	if err != nil {
		return 0, err
	}

	if err := a.write(ctx, name, current+n); err != nil {
		return 0, err
	}
	return current + 1, nil
}

// Current returns the last issued number without allocating. A missing or
// unparsable counter is a configuration defect (ErrCorruptCounter); any
// other store failure passes through unchanged.
func (a *Allocator) Current(ctx context.Context, name string) (int64, error) {
	p, err := a.params.Get(ctx, name)
	if err != nil {
		if errors.Is(err, param.ErrNotFound) {
			return 0, fmt.Errorf("%w: %q: %v", ErrCorruptCounter, name, err)
		}
		return 0, err
	}

	value, err := strconv.ParseInt(p.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q holds %q", ErrCorruptCounter, name, p.Value)
	}
	return value, nil
}

// Restore writes a previously observed value back to the named counter.
// The engine calls this when a commit fails after allocation so that the
// failed commit's numbers are reissued instead of burned. Only safe while
// the caller still holds the serialization that covered the allocation.
func (a *Allocator) Restore(ctx context.Context, name string, value int64) error {
	if err := a.write(ctx, name, value); err != nil {
		return fmt.Errorf("sequence: restore %q to %d: %w", name, value, err)
	}
	return nil
}

func (a *Allocator) write(ctx context.Context, name string, value int64) error {
	return a.params.Put(ctx, &param.Parameter{
		Name:  name,
		Value: strconv.FormatInt(value, 10),
	})
}
