package store

import (
	"context"
	"database/sql"
)

type FriendRepo struct{ DB *sql.DB }

func NewFriendRepo(db *sql.DB) *FriendRepo { return &FriendRepo{DB: db} }

// ListByChat returns the chat's roster in creation order, so resolution
// tie-breaks are stable across calls.
func (r *FriendRepo) ListByChat(ctx context.Context, chatID int64) ([]Friend, error) {
	const q = `
select id, created_at, chat_id, game_user_id, coalesce(display_name,'') as display_name
from friends
where chat_id = $1
order by id`
	rows, err := r.DB.QueryContext(ctx, q, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Friend
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.ID, &f.CreatedAt, &f.ChatID, &f.GameUserID, &f.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Create inserts a roster entry, or returns the existing one when the
// (chat_id, game_user_id) pair is already known.
func (r *FriendRepo) Create(ctx context.Context, chatID int64, gameUserID, displayName string) (Friend, error) {
	const q = `
insert into friends (chat_id, game_user_id, display_name)
values ($1, $2, $3)
on conflict (chat_id, game_user_id) do update
set display_name = case
    when friends.display_name = '' then excluded.display_name
    else friends.display_name
end
returning id, created_at, chat_id, game_user_id, display_name`
	var f Friend
	err := r.DB.QueryRowContext(ctx, q, chatID, gameUserID, displayName).
		Scan(&f.ID, &f.CreatedAt, &f.ChatID, &f.GameUserID, &f.DisplayName)
	return f, err
}

func (r *FriendRepo) UpdateDisplayName(ctx context.Context, friendID int64, displayName string) error {
	const q = `update friends set display_name = $2 where id = $1`
	_, err := r.DB.ExecContext(ctx, q, friendID, displayName)
	return err
}

func (r *FriendRepo) UpsertStats(ctx context.Context, s FriendStats) error {
	const q = `
insert into friend_stats (
  friend_id, updated_at, games_together, wins_together,
  avg_kills, avg_deaths, avg_assists, synergy_score, confidence
) values ($1, now(), $2, $3, $4, $5, $6, $7, $8)
on conflict (friend_id) do update
set updated_at     = now(),
    games_together = excluded.games_together,
    wins_together  = excluded.wins_together,
    avg_kills      = excluded.avg_kills,
    avg_deaths     = excluded.avg_deaths,
    avg_assists    = excluded.avg_assists,
    synergy_score  = excluded.synergy_score,
    confidence     = excluded.confidence`
	_, err := r.DB.ExecContext(ctx, q,
		s.FriendID, s.GamesTogether, s.WinsTogether,
		s.AvgKills, s.AvgDeaths, s.AvgAssists, s.SynergyScore, s.Confidence)
	return err
}

func (r *FriendRepo) GetStats(ctx context.Context, friendID int64) (FriendStats, error) {
	const q = `
select friend_id, updated_at, games_together, wins_together,
       avg_kills, avg_deaths, avg_assists, synergy_score, confidence
from friend_stats
where friend_id = $1`
	var s FriendStats
	err := r.DB.QueryRowContext(ctx, q, friendID).Scan(
		&s.FriendID, &s.UpdatedAt, &s.GamesTogether, &s.WinsTogether,
		&s.AvgKills, &s.AvgDeaths, &s.AvgAssists, &s.SynergyScore, &s.Confidence)
	return s, err
}
