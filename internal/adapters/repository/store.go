// Package repository defines the backfill reserve store interface and errors.
package repository

import (
	"context"

	"github.com/kestrel-intel/kestrel/internal/domain/model"
)

// Entry is a reserved candidate with the credibility score it carried when
// it missed the briefing cut.
type Entry struct {
	Candidate *model.Candidate
	Score     float64
}

// Store holds ranked candidates that missed a briefing so follow-up
// requests can pull the next best items.
type Store interface {
	// Put reserves a candidate under the given score. Re-putting an id
	// keeps the higher score. When the reserve is full the lowest-scored
	// entry is dropped to make room; a candidate scoring below the floor
	// of a full reserve is not admitted.
	Put(ctx context.Context, c *model.Candidate, score float64) error

	// More removes and returns up to n entries, best first.
	// Returns ErrInvalidLimit when n < 1.
	More(ctx context.Context, n int) ([]Entry, error)

	// Peek returns up to n entries, best first, without removing them.
	Peek(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of reserved candidates.
	Count(ctx context.Context) int
}
