package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS round_history (
	id UUID PRIMARY KEY,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	room_id TEXT NOT NULL,
	loser_user_id TEXT NOT NULL DEFAULT '',
	loser_name TEXT NOT NULL,
	player_names TEXT[] NOT NULL,
	duration_sec INT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_round_history_room ON round_history(room_id);
CREATE INDEX IF NOT EXISTS idx_round_history_loser ON round_history(loser_user_id);
CREATE TABLE IF NOT EXISTS player_losses (
	user_id      TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	losses       INT  NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_player_losses_losses ON player_losses(losses ASC);
`

// RoundRecord is one finished round as stored in round_history.
type RoundRecord struct {
	ID          string    `json:"id"`
	PlayedAt    time.Time `json:"played_at"`
	RoomID      string    `json:"room_id"`
	LoserUserID string    `json:"loser_user_id"`
	LoserName   string    `json:"loser_name"`
	PlayerNames []string  `json:"player_names"`
	DurationSec int       `json:"duration_sec"`
}

// LeaderboardEntry ranks players by how rarely they lose.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Losses      int    `json:"losses"`
}

// Store persists and retrieves round history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the tables exist. If databaseURL
// is empty, NewStore returns (nil, nil) and no persistence occurs; every
// method is nil-safe for that case.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// InsertRoundResult records a finished round and bumps the loser's loss
// count. Guests (empty loserUserID) appear in round_history but not on the
// leaderboard.
func (s *Store) InsertRoundResult(ctx context.Context, roundID, roomID, loserUserID, loserName string, playerNames []string, durationSec int) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO round_history (id, room_id, loser_user_id, loser_name, player_names, duration_sec)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		roundID, roomID, loserUserID, loserName, playerNames, durationSec)
	if err != nil {
		return err
	}
	if loserUserID == "" {
		return nil
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO player_losses (user_id, display_name, losses) VALUES ($1, $2, 1)
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = $2, losses = player_losses.losses + 1, updated_at = now()`,
		loserUserID, loserName)
	return err
}

// ListByUserID returns the rounds lost by the given user, newest first.
func (s *Store) ListByUserID(ctx context.Context, userID string) ([]RoundRecord, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, played_at, room_id, loser_user_id, loser_name, player_names, duration_sec
		FROM round_history WHERE loser_user_id = $1
		ORDER BY played_at DESC LIMIT 100`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []RoundRecord
	for rows.Next() {
		var rec RoundRecord
		if err := rows.Scan(&rec.ID, &rec.PlayedAt, &rec.RoomID, &rec.LoserUserID, &rec.LoserName, &rec.PlayerNames, &rec.DurationSec); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// ListLeaderboard returns players ordered by fewest losses.
func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, display_name, losses FROM player_losses
		ORDER BY losses ASC, updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []LeaderboardEntry
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.DisplayName, &entry.Losses); err != nil {
			return nil, err
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}
