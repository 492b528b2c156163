package store

import (
	"context"
	"database/sql"
)

type MatchRepo struct{ DB *sql.DB }

func NewMatchRepo(db *sql.DB) *MatchRepo { return &MatchRepo{DB: db} }

// Create stores a match together with all its player rows in one
// transaction and returns the stored form with IDs filled in.
func (r *MatchRepo) Create(ctx context.Context, m Match, players []MatchPlayer) (MatchWithPlayers, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return MatchWithPlayers{}, err
	}
	defer tx.Rollback()

	const qm = `
insert into matches (chat_id, result, mode, party_size)
values ($1, $2, $3, $4)
returning id, created_at`
	if err := tx.QueryRowContext(ctx, qm, m.ChatID, m.Result, m.Mode, m.PartySize).
		Scan(&m.ID, &m.CreatedAt); err != nil {
		return MatchWithPlayers{}, err
	}

	const qp = `
insert into match_players (
  match_id, friend_id, game_user_id, display_name, hero,
  kills, deaths, assists, gpm, dmg_dealt, dmg_taken, is_owner_party
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
returning id`
	stored := make([]MatchPlayer, 0, len(players))
	for _, p := range players {
		p.MatchID = m.ID
		if err := tx.QueryRowContext(ctx, qp,
			p.MatchID, p.FriendID, p.GameUserID, p.DisplayName, p.Hero,
			p.Kills, p.Deaths, p.Assists, p.GPM, p.DmgDealt, p.DmgTaken, p.IsOwnerParty,
		).Scan(&p.ID); err != nil {
			return MatchWithPlayers{}, err
		}
		stored = append(stored, p)
	}

	if err := tx.Commit(); err != nil {
		return MatchWithPlayers{}, err
	}
	return MatchWithPlayers{Match: m, Players: stored}, nil
}

// LinkPlayer attaches a stored player row to a roster entry.
func (r *MatchRepo) LinkPlayer(ctx context.Context, playerID, friendID int64) error {
	const q = `update match_players set friend_id = $2 where id = $1`
	_, err := r.DB.ExecContext(ctx, q, playerID, friendID)
	return err
}

// ReassignPlayer relinks a player row and rewrites its identifier to the
// roster's canonical one. Used when fuzzy matching decides the parsed id
// was an OCR corruption of a known friend.
func (r *MatchRepo) ReassignPlayer(ctx context.Context, playerID, friendID int64, gameUserID string) error {
	const q = `update match_players set friend_id = $2, game_user_id = $3 where id = $1`
	_, err := r.DB.ExecContext(ctx, q, playerID, friendID, gameUserID)
	return err
}

// ListByFriend returns every stored match the friend appears in, players
// included, newest first.
func (r *MatchRepo) ListByFriend(ctx context.Context, friendID int64) ([]MatchWithPlayers, error) {
	const qm = `
select distinct m.id, m.created_at, m.chat_id, m.result, coalesce(m.mode,'') as mode, m.party_size
from matches m
join match_players mp on mp.match_id = m.id
where mp.friend_id = $1
order by m.created_at desc, m.id desc`
	rows, err := r.DB.QueryContext(ctx, qm, friendID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchWithPlayers
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.ChatID, &m.Result, &m.Mode, &m.PartySize); err != nil {
			return nil, err
		}
		out = append(out, MatchWithPlayers{Match: m})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		players, err := r.listPlayers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Players = players
	}
	return out, nil
}

func (r *MatchRepo) listPlayers(ctx context.Context, matchID int64) ([]MatchPlayer, error) {
	const q = `
select id, match_id, friend_id, game_user_id,
       coalesce(display_name,'') as display_name, coalesce(hero,'') as hero,
       kills, deaths, assists, gpm, dmg_dealt, dmg_taken, is_owner_party
from match_players
where match_id = $1
order by id`
	rows, err := r.DB.QueryContext(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchPlayer
	for rows.Next() {
		var p MatchPlayer
		if err := rows.Scan(&p.ID, &p.MatchID, &p.FriendID, &p.GameUserID,
			&p.DisplayName, &p.Hero,
			&p.Kills, &p.Deaths, &p.Assists, &p.GPM, &p.DmgDealt, &p.DmgTaken, &p.IsOwnerParty); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
