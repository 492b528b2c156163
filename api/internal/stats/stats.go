// Package stats aggregates stored matches into per-friend synergy numbers
// and the feature vector handed to the explanation model.
package stats

import (
	"context"
	"fmt"

	"squad-tracker/api/internal/store"
)

// Summary is the aggregate view of playing together with one friend.
type Summary struct {
	GamesTogether int
	WinsTogether  int
	AvgKills      float64
	AvgDeaths     float64
	AvgAssists    float64
	SynergyScore  float64
	Confidence    float64
}

// Summarize folds the friend's owner-party appearances into a Summary.
// Only rows where the friend sat in the uploader's party count; enemy-team
// sightings say nothing about synergy.
func Summarize(matches []store.MatchWithPlayers, friendID int64) Summary {
	var s Summary
	for _, m := range matches {
		row, ok := friendRow(m.Players, friendID)
		if !ok || !row.IsOwnerParty {
			continue
		}
		s.GamesTogether++
		if m.Result == "win" {
			s.WinsTogether++
		}
		s.AvgKills += float64(row.Kills)
		s.AvgDeaths += float64(row.Deaths)
		s.AvgAssists += float64(row.Assists)
	}
	if s.GamesTogether == 0 {
		return s
	}
	n := float64(s.GamesTogether)
	s.AvgKills /= n
	s.AvgDeaths /= n
	s.AvgAssists /= n
	s.SynergyScore = float64(s.WinsTogether) / n

	// Confidence ramps with sample size: 0.2 floor for a single game,
	// saturating at 0.9 around 50 games.
	s.Confidence = 0.2 + n/50*0.7
	if s.Confidence > 0.9 {
		s.Confidence = 0.9
	}
	return s
}

func friendRow(players []store.MatchPlayer, friendID int64) (store.MatchPlayer, bool) {
	for _, p := range players {
		if p.FriendID != nil && *p.FriendID == friendID {
			return p, true
		}
	}
	return store.MatchPlayer{}, false
}

// FriendStore and MatchStore are the narrow slices of the store this
// package needs, kept as interfaces so tests can run without Postgres.
type FriendStore interface {
	ListByChat(ctx context.Context, chatID int64) ([]store.Friend, error)
	UpsertStats(ctx context.Context, s store.FriendStats) error
	GetStats(ctx context.Context, friendID int64) (store.FriendStats, error)
}

type MatchStore interface {
	ListByFriend(ctx context.Context, friendID int64) ([]store.MatchWithPlayers, error)
}

// Service recomputes and serves per-friend aggregates.
type Service struct {
	Friends FriendStore
	Matches MatchStore
}

func NewService(friends FriendStore, matches MatchStore) *Service {
	return &Service{Friends: friends, Matches: matches}
}

// Recompute rebuilds one friend's aggregate row from stored matches.
func (s *Service) Recompute(ctx context.Context, friendID int64) (Summary, error) {
	matches, err := s.Matches.ListByFriend(ctx, friendID)
	if err != nil {
		return Summary{}, fmt.Errorf("recompute friend %d: %w", friendID, err)
	}
	sum := Summarize(matches, friendID)
	err = s.Friends.UpsertStats(ctx, store.FriendStats{
		FriendID:      friendID,
		GamesTogether: sum.GamesTogether,
		WinsTogether:  sum.WinsTogether,
		AvgKills:      sum.AvgKills,
		AvgDeaths:     sum.AvgDeaths,
		AvgAssists:    sum.AvgAssists,
		SynergyScore:  sum.SynergyScore,
		Confidence:    sum.Confidence,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("recompute friend %d: %w", friendID, err)
	}
	return sum, nil
}

// RecomputeAll rebuilds every friend of a chat, returning the first error.
func (s *Service) RecomputeAll(ctx context.Context, chatID int64) error {
	friends, err := s.Friends.ListByChat(ctx, chatID)
	if err != nil {
		return err
	}
	for _, f := range friends {
		if _, err := s.Recompute(ctx, f.ID); err != nil {
			return err
		}
	}
	return nil
}
