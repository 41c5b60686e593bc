// Package ids provides the extraction-run-local ID allocator helper and
// association map described in spec §4.4. Real id assignment happens
// inside each Driver (a monotonic counter keyed off its current maximum
// id); Allocator exposes that maximum so a Driver implementation can
// resume numbering correctly after reopening an existing store.
package ids

import (
	"context"
	"math"

	"jvmcpg/internal/driver"
)

// Allocator reads a Driver's current maximum id so a fresh in-process
// counter can resume from it, per spec §4.4 ("Monotonic 64-bit counter
// keyed off the driver's current maximum id").
type Allocator struct {
	d driver.Driver
}

// NewAllocator wraps d.
func NewAllocator(d driver.Driver) *Allocator {
	return &Allocator{d: d}
}

// CurrentMax returns the highest id currently persisted in the driver, or
// 0 if the store is empty.
func (a *Allocator) CurrentMax(ctx context.Context) (int64, error) {
	all, err := a.d.GetVertexIDs(ctx, 0, math.MaxInt64)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, id := range all {
		if id > max {
			max = id
		}
	}
	return max, nil
}
