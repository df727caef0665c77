// Package trustedtime acquires attendance timestamps from external time
// sources so a tampered device clock cannot forge a check-in time. Sources
// are ranked; each sits behind its own circuit breaker so one flapping
// server does not stall every synchronization pass.
package trustedtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const sampleTimeout = 4 * time.Second

// Status is a snapshot of the authority for operators.
type Status struct {
	Offset     time.Duration
	Synced     bool
	Degraded   bool
	LastSource string
	LastSync   time.Time
}

type breakerProvider struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
}

// Authority caches a local-clock offset computed from the first responsive
// provider. Now() never blocks on the network; source unreachability only
// degrades timestamp trustworthiness.
type Authority struct {
	providers []breakerProvider
	clock     func() time.Time

	mu         sync.RWMutex
	offset     time.Duration
	synced     bool
	degraded   bool
	lastSource string
	lastSync   time.Time
}

func NewAuthority(providers ...Provider) *Authority {
	a := &Authority{clock: time.Now}
	for _, p := range providers {
		a.providers = append(a.providers, breakerProvider{
			provider: p,
			breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:    p.Name(),
				Timeout: 2 * time.Minute,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= 3
				},
			}),
		})
	}
	return a
}

// Synchronize walks the ranked provider list and adopts the first successful
// sample. When every source fails the previous offset stays in effect and
// the authority is marked degraded.
func (a *Authority) Synchronize(ctx context.Context) error {
	var errs []error
	for _, bp := range a.providers {
		sampleCtx, cancel := context.WithTimeout(ctx, sampleTimeout)
		result, err := bp.breaker.Execute(func() (interface{}, error) {
			return bp.provider.Sample(sampleCtx)
		})
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", bp.provider.Name(), err))
			continue
		}

		sample := result.(Sample)
		a.mu.Lock()
		a.offset = sample.Offset()
		a.synced = true
		a.degraded = false
		a.lastSource = bp.provider.Name()
		a.lastSync = a.clock()
		a.mu.Unlock()
		return nil
	}

	a.mu.Lock()
	a.degraded = true
	a.mu.Unlock()

	err := errors.Join(errs...)
	log.Printf("time authority: all sources failed, keeping previous offset: %v", err)
	return fmt.Errorf("all time sources failed: %w", err)
}

// Now returns the local clock corrected by the cached offset. Pure read.
func (a *Authority) Now() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.clock().Add(a.offset)
}

// Trusted reports whether Now() is currently backed by a fresh source sample.
func (a *Authority) Trusted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.synced && !a.degraded
}

func (a *Authority) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Status{
		Offset:     a.offset,
		Synced:     a.synced,
		Degraded:   a.degraded,
		LastSource: a.lastSource,
		LastSync:   a.lastSync,
	}
}
