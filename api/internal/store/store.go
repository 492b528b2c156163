// Package store persists chats' rosters, parsed matches, and upload audit
// rows in Postgres. Repos are thin: raw SQL, explicit scans, no ORM.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"
)

var ErrNotFound = sql.ErrNoRows

//go:embed schema.sql
var schemaSQL string

// EnsureSchema applies the idempotent DDL at startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Friend is one roster entry, scoped to a chat.
type Friend struct {
	ID          int64
	CreatedAt   time.Time
	ChatID      int64
	GameUserID  string
	DisplayName string
}

// FriendStats is the aggregate row kept per friend, recomputed after every
// ingested match.
type FriendStats struct {
	FriendID      int64
	UpdatedAt     time.Time
	GamesTogether int
	WinsTogether  int
	AvgKills      float64
	AvgDeaths     float64
	AvgAssists    float64
	SynergyScore  float64
	Confidence    float64
}

// Match is one parsed scoreboard.
type Match struct {
	ID        int64
	CreatedAt time.Time
	ChatID    int64
	Result    string
	Mode      string
	PartySize int
}

// MatchPlayer is one scoreboard row of a stored match. FriendID is nil
// until the player is linked to a roster entry.
type MatchPlayer struct {
	ID           int64
	MatchID      int64
	FriendID     *int64
	GameUserID   string
	DisplayName  string
	Hero         string
	Kills        int
	Deaths       int
	Assists      int
	GPM          int
	DmgDealt     int
	DmgTaken     int
	IsOwnerParty bool
}

// MatchWithPlayers joins a match with its player rows for aggregation.
type MatchWithPlayers struct {
	Match
	Players []MatchPlayer
}

// Upload is the audit row for one received screenshot.
type Upload struct {
	ID        int64
	CreatedAt time.Time
	ChatID    int64
	ImageHash string
	Engine    string
	Model     string
	Processed bool
	MatchID   *int64
	Notes     string
}
