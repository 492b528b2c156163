// Package ingest runs the upload pipeline: recognize the screenshot, parse
// the scoreboard, store the match, and reconcile every parsed player with
// the chat's roster.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"squad-tracker/api/internal/identity"
	"squad-tracker/api/internal/ocr"
	"squad-tracker/api/internal/scoreboard"
	"squad-tracker/api/internal/stats"
	"squad-tracker/api/internal/store"
	"squad-tracker/api/internal/util"
)

// ErrNoMatch means the text contained nothing recognizable as a scoreboard.
var ErrNoMatch = errors.New("no scoreboard found")

// Narrow store views so tests run against in-memory fakes.
type FriendStore interface {
	ListByChat(ctx context.Context, chatID int64) ([]store.Friend, error)
	Create(ctx context.Context, chatID int64, gameUserID, displayName string) (store.Friend, error)
	UpdateDisplayName(ctx context.Context, friendID int64, displayName string) error
}

type MatchStore interface {
	Create(ctx context.Context, m store.Match, players []store.MatchPlayer) (store.MatchWithPlayers, error)
	LinkPlayer(ctx context.Context, playerID, friendID int64) error
	ReassignPlayer(ctx context.Context, playerID, friendID int64, gameUserID string) error
}

type UploadStore interface {
	Insert(ctx context.Context, chatID int64, imageHash, engine, model string) (store.Upload, error)
	MarkProcessed(ctx context.Context, uploadID, matchID int64) error
	SetNotes(ctx context.Context, uploadID int64, notes string) error
	FindByHash(ctx context.Context, imageHash string, maxAge time.Duration) (*store.Upload, error)
}

type Recomputer interface {
	Recompute(ctx context.Context, friendID int64) (stats.Summary, error)
}

// Service wires the pipeline stages together.
type Service struct {
	Engines   *ocr.Manager
	Parser    *scoreboard.Parser
	Friends   FriendStore
	Matches   MatchStore
	Uploads   UploadStore
	Stats     Recomputer
	Threshold float64
}

// Report summarizes one ingested match for the reply message.
type Report struct {
	MatchID       int64
	Result        string
	Mode          string
	PlayersParsed int
	LinkedFriends []string
	NewFriends    []string
	Renamed       []string
}

const dedupWindow = 24 * time.Hour

// ProcessImage recognizes the screenshot with the chat's engine and hands
// the text to ProcessText. Duplicate uploads inside the dedup window are
// rejected without burning an OCR call.
func (s *Service) ProcessImage(ctx context.Context, chatID int64, image []byte) (Report, error) {
	hash := util.SHA256Hex(image)
	if prev, err := s.Uploads.FindByHash(ctx, hash, dedupWindow); err == nil && prev != nil {
		return Report{}, fmt.Errorf("screenshot already processed as upload %d", prev.ID)
	}

	eng := s.Engines.Get(chatID)
	up, err := s.Uploads.Insert(ctx, chatID, hash, eng.Name(), eng.GetModel())
	if err != nil {
		return Report{}, fmt.Errorf("record upload: %w", err)
	}

	text, err := eng.Recognize(ctx, image)
	if err != nil {
		_ = s.Uploads.SetNotes(ctx, up.ID, "recognize failed: "+err.Error())
		return Report{}, fmt.Errorf("recognize: %w", err)
	}

	return s.processText(ctx, chatID, up.ID, text)
}

// ProcessText ingests scoreboard text that arrived without an image, e.g.
// pasted directly into the chat.
func (s *Service) ProcessText(ctx context.Context, chatID int64, text string) (Report, error) {
	return s.processText(ctx, chatID, 0, text)
}

func (s *Service) processText(ctx context.Context, chatID, uploadID int64, text string) (Report, error) {
	parsed := s.Parser.Parse(text)
	if parsed == nil {
		if uploadID != 0 {
			_ = s.Uploads.SetNotes(ctx, uploadID, "no scoreboard recognized")
		}
		return Report{}, ErrNoMatch
	}

	ownerParty := make(map[int]bool, len(parsed.OwnerPartyIndices))
	for _, i := range parsed.OwnerPartyIndices {
		ownerParty[i] = true
	}

	players := make([]store.MatchPlayer, 0, len(parsed.Players))
	for i, p := range parsed.Players {
		gameID := p.GameUserID
		if gameID == "" {
			gameID = fmt.Sprintf("player_%d", i)
		}
		players = append(players, store.MatchPlayer{
			GameUserID:   gameID,
			DisplayName:  p.DisplayName,
			Hero:         p.Hero,
			Kills:        p.K,
			Deaths:       p.D,
			Assists:      p.A,
			GPM:          p.GPM,
			DmgDealt:     p.DmgDealt,
			DmgTaken:     p.DmgTaken,
			IsOwnerParty: ownerParty[i],
		})
	}

	stored, err := s.Matches.Create(ctx, store.Match{
		ChatID:    chatID,
		Result:    parsed.Result,
		Mode:      parsed.Mode,
		PartySize: parsed.PartySize,
	}, players)
	if err != nil {
		return Report{}, fmt.Errorf("store match: %w", err)
	}

	roster, err := s.Friends.ListByChat(ctx, chatID)
	if err != nil {
		return Report{}, fmt.Errorf("load roster: %w", err)
	}

	report := Report{
		MatchID:       stored.ID,
		Result:        stored.Result,
		Mode:          stored.Mode,
		PlayersParsed: len(stored.Players),
	}
	touched := map[int64]bool{}

	// Every parsed player is reconciled, enemy rows included: a corrupted id
	// on the enemy side still gets canonicalized, and an opponent today may
	// be a party member tomorrow. Synergy stats stay owner-party-only.
	for _, p := range stored.Players {
		friendID, err := s.reconcile(ctx, chatID, p, &roster, &report)
		if err != nil {
			return Report{}, err
		}
		touched[friendID] = true
	}

	if uploadID != 0 {
		if err := s.Uploads.MarkProcessed(ctx, uploadID, stored.ID); err != nil {
			log.Printf("mark upload %d processed: %v", uploadID, err)
		}
	}

	for friendID := range touched {
		if _, err := s.Stats.Recompute(ctx, friendID); err != nil {
			log.Printf("recompute friend %d: %v", friendID, err)
		}
	}
	return report, nil
}

// reconcile links one player row to the roster, extending the roster with
// a new friend when nobody matches. The roster slice grows in place so
// players later in the same match can match a friend created for an
// earlier row.
func (s *Service) reconcile(ctx context.Context, chatID int64, p store.MatchPlayer, roster *[]store.Friend, report *Report) (int64, error) {
	candidates := make([]identity.Candidate, len(*roster))
	for i, f := range *roster {
		candidates[i] = identity.Candidate{GameUserID: f.GameUserID, DisplayName: f.DisplayName}
	}

	out := identity.Resolve(p.GameUserID, p.DisplayName, candidates, s.Threshold)
	switch out.Kind {
	case identity.ExactMatch, identity.FuzzyMatch:
		friend := (*roster)[indexOf(candidates, out.Candidate)]
		if out.Kind == identity.ExactMatch {
			if err := s.Matches.LinkPlayer(ctx, p.ID, friend.ID); err != nil {
				return 0, fmt.Errorf("link player: %w", err)
			}
		} else {
			// The parsed id was an OCR corruption; rewrite it to canonical.
			if err := s.Matches.ReassignPlayer(ctx, p.ID, friend.ID, friend.GameUserID); err != nil {
				return 0, fmt.Errorf("reassign player: %w", err)
			}
		}
		if identity.PreferName(p.DisplayName, friend.DisplayName) {
			if err := s.Friends.UpdateDisplayName(ctx, friend.ID, p.DisplayName); err != nil {
				return 0, fmt.Errorf("rename friend: %w", err)
			}
			(*roster)[indexOf(candidates, out.Candidate)].DisplayName = p.DisplayName
			report.Renamed = append(report.Renamed, p.DisplayName)
		}
		report.LinkedFriends = append(report.LinkedFriends, friend.GameUserID)
		return friend.ID, nil

	default:
		friend, err := s.Friends.Create(ctx, chatID, p.GameUserID, p.DisplayName)
		if err != nil {
			return 0, fmt.Errorf("create friend: %w", err)
		}
		if err := s.Matches.LinkPlayer(ctx, p.ID, friend.ID); err != nil {
			return 0, fmt.Errorf("link player: %w", err)
		}
		*roster = append(*roster, friend)
		report.NewFriends = append(report.NewFriends, friend.GameUserID)
		return friend.ID, nil
	}
}

func indexOf(candidates []identity.Candidate, c identity.Candidate) int {
	for i, x := range candidates {
		if x.GameUserID == c.GameUserID {
			return i
		}
	}
	return 0
}
