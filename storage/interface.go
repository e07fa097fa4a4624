package storage

import "context"

// RoundStore abstracts persistence for round history and the loss
// leaderboard. Implementations can be swapped for testing (mocks) or
// different backends.
type RoundStore interface {
	// Read
	ListByUserID(ctx context.Context, userID string) ([]RoundRecord, error)
	ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error)

	// Write
	InsertRoundResult(ctx context.Context, roundID, roomID, loserUserID, loserName string, playerNames []string, durationSec int) error

	// Lifecycle
	Close()
}

// Ensure *Store implements RoundStore at compile time.
var _ RoundStore = (*Store)(nil)
