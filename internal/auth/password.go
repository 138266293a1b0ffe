// Package auth: password hashing utilities.
//
// bcrypt is deliberately slow, which is exactly what makes it expensive to
// brute-force. It also:
//   - generates a random salt per hash (same password, different hashes)
//   - embeds the salt and cost in its output, so no separate salt column
//   - compares in constant time
//
// Hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$10$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (10 → 2^10 rounds)
//	 version
//
// BOUNDED CONCURRENCY:
// Every hash or comparison burns ~50–100ms of CPU at cost 10. Goroutines are
// cheap, CPU is not: a burst of logins could occupy every core and stall
// unrelated requests. PasswordService therefore runs bcrypt behind a weighted
// semaphore sized to the number of hash workers. Callers block (respecting
// their context) until a slot is free.
package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultCost is the bcrypt work factor used in production.
const DefaultCost = 10

// PasswordService provides bcrypt hashing and verification on a bounded
// worker pool. It is safe for concurrent use.
type PasswordService struct {
	cost  int
	slots *semaphore.Weighted
}

// NewPasswordService creates a PasswordService with the default cost and at
// most workers concurrent bcrypt operations. workers < 1 means NumCPU.
func NewPasswordService(workers int) *PasswordService {
	return NewPasswordServiceWithCost(DefaultCost, workers)
}

// NewPasswordServiceWithCost is NewPasswordService with an explicit cost.
// Tests use bcrypt.MinCost (4) to keep hashing fast.
func NewPasswordServiceWithCost(cost, workers int) *PasswordService {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &PasswordService{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(workers)),
	}
}

// NewPasswordServiceForTest creates a PasswordService with the given cost and
// one worker per CPU. Do NOT use in production with cost < 10.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return NewPasswordServiceWithCost(cost, 0)
}

// Hash hashes the plaintext password with bcrypt.
//
// Returns an error if the plaintext is longer than 72 bytes (bcrypt would
// silently truncate it) or if ctx is done before a worker slot frees up.
func (p *PasswordService) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("auth: waiting for hash worker: %w", err)
	}
	defer p.slots.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored bcrypt hash.
//
// A mismatch is (false, nil), never an error. An error means the comparison
// could not be made at all: ctx was cancelled or the stored hash is corrupt.
func (p *PasswordService) Verify(ctx context.Context, hash, plaintext string) (bool, error) {
	// Hash never accepts such a password, so no stored hash can match it.
	if len(plaintext) > MaxPasswordBytes {
		return false, nil
	}

	if err := p.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("auth: waiting for hash worker: %w", err)
	}
	defer p.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("auth: comparing password hash: %w", err)
	}
}
