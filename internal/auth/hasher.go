package auth

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Hasher bounds concurrent key-derivation work so a burst of logins cannot
// monopolize the CPU and stall request handling. Comparison runs on the
// caller's goroutine; only the boolean result flows back to shared state.
type Hasher struct {
	sem *semaphore.Weighted
}

// NewHasher constructs a Hasher allowing at most maxParallel concurrent
// derivations. A non-positive value defaults to GOMAXPROCS.
func NewHasher(maxParallel int64) *Hasher {
	if maxParallel <= 0 {
		maxParallel = int64(runtime.GOMAXPROCS(0))
	}
	return &Hasher{sem: semaphore.NewWeighted(maxParallel)}
}

// Compare verifies password against the stored hash, waiting for a slot when
// too many derivations are already in flight. It returns the context error
// when the caller gives up before a slot frees.
func (h *Hasher) Compare(ctx context.Context, stored PasswordHash, password string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)
	return stored.Equal(password), nil
}
