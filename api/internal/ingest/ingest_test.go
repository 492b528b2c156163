package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squad-tracker/api/internal/scoreboard"
	"squad-tracker/api/internal/stats"
	"squad-tracker/api/internal/store"
)

type fakeFriends struct {
	nextID  int64
	friends []store.Friend
	renames map[int64]string
}

func (f *fakeFriends) ListByChat(_ context.Context, chatID int64) ([]store.Friend, error) {
	var out []store.Friend
	for _, fr := range f.friends {
		if fr.ChatID == chatID {
			out = append(out, fr)
		}
	}
	return out, nil
}

func (f *fakeFriends) Create(_ context.Context, chatID int64, gameUserID, displayName string) (store.Friend, error) {
	f.nextID++
	fr := store.Friend{ID: f.nextID, ChatID: chatID, GameUserID: gameUserID, DisplayName: displayName}
	f.friends = append(f.friends, fr)
	return fr, nil
}

func (f *fakeFriends) UpdateDisplayName(_ context.Context, friendID int64, displayName string) error {
	if f.renames == nil {
		f.renames = map[int64]string{}
	}
	f.renames[friendID] = displayName
	for i := range f.friends {
		if f.friends[i].ID == friendID {
			f.friends[i].DisplayName = displayName
		}
	}
	return nil
}

type fakeMatches struct {
	nextID     int64
	created    []store.MatchWithPlayers
	links      map[int64]int64  // playerID -> friendID
	reassigned map[int64]string // playerID -> rewritten game id
}

func (m *fakeMatches) Create(_ context.Context, match store.Match, players []store.MatchPlayer) (store.MatchWithPlayers, error) {
	m.nextID++
	match.ID = m.nextID
	stored := make([]store.MatchPlayer, len(players))
	for i, p := range players {
		p.ID = m.nextID*100 + int64(i)
		p.MatchID = match.ID
		stored[i] = p
	}
	out := store.MatchWithPlayers{Match: match, Players: stored}
	m.created = append(m.created, out)
	return out, nil
}

func (m *fakeMatches) LinkPlayer(_ context.Context, playerID, friendID int64) error {
	if m.links == nil {
		m.links = map[int64]int64{}
	}
	m.links[playerID] = friendID
	return nil
}

func (m *fakeMatches) ReassignPlayer(_ context.Context, playerID, friendID int64, gameUserID string) error {
	if m.links == nil {
		m.links = map[int64]int64{}
	}
	if m.reassigned == nil {
		m.reassigned = map[int64]string{}
	}
	m.links[playerID] = friendID
	m.reassigned[playerID] = gameUserID
	return nil
}

type fakeUploads struct{}

func (fakeUploads) Insert(_ context.Context, chatID int64, imageHash, engine, model string) (store.Upload, error) {
	return store.Upload{ID: 1}, nil
}
func (fakeUploads) MarkProcessed(_ context.Context, uploadID, matchID int64) error { return nil }
func (fakeUploads) SetNotes(_ context.Context, uploadID int64, notes string) error { return nil }
func (fakeUploads) FindByHash(_ context.Context, _ string, _ time.Duration) (*store.Upload, error) {
	return nil, store.ErrNotFound
}

type fakeStats struct{ recomputed []int64 }

func (s *fakeStats) Recompute(_ context.Context, friendID int64) (stats.Summary, error) {
	s.recomputed = append(s.recomputed, friendID)
	return stats.Summary{}, nil
}

func newTestService() (*Service, *fakeFriends, *fakeMatches, *fakeStats) {
	friends := &fakeFriends{}
	matches := &fakeMatches{}
	st := &fakeStats{}
	svc := &Service{
		Parser:    scoreboard.NewParser(nil),
		Friends:   friends,
		Matches:   matches,
		Uploads:   fakeUploads{},
		Stats:     st,
		Threshold: 0.65,
	}
	return svc, friends, matches, st
}

func TestProcessTextCreatesFriends(t *testing.T) {
	svc, friends, matches, st := newTestService()

	rep, err := svc.ProcessText(context.Background(), 42, "Victory\nAlice 5/2/8\nBob 3/4/7")
	require.NoError(t, err)

	assert.Equal(t, "win", rep.Result)
	assert.Equal(t, 2, rep.PlayersParsed)
	assert.ElementsMatch(t, []string{"alice", "bob"}, rep.NewFriends)
	assert.Empty(t, rep.LinkedFriends)

	require.Len(t, friends.friends, 2)
	assert.Len(t, matches.links, 2)
	assert.ElementsMatch(t, []int64{1, 2}, st.recomputed)
}

func TestProcessTextLinksKnownFriend(t *testing.T) {
	svc, friends, _, _ := newTestService()
	friends.friends = []store.Friend{
		{ID: 10, ChatID: 42, GameUserID: "alice", DisplayName: "Alice"},
	}
	friends.nextID = 10

	rep, err := svc.ProcessText(context.Background(), 42, "Victory\nAlice 5/2/8")
	require.NoError(t, err)

	assert.Equal(t, []string{"alice"}, rep.LinkedFriends)
	assert.Empty(t, rep.NewFriends)
	assert.Len(t, friends.friends, 1)
}

func TestProcessTextFuzzyReassignsCorruptedName(t *testing.T) {
	svc, friends, matches, _ := newTestService()
	friends.friends = []store.Friend{
		{ID: 10, ChatID: 42, GameUserID: "atrs_agatsuma", DisplayName: "ATRS Agatsuma"},
	}
	friends.nextID = 10

	// OCR transposed two letters; resolver should map it back.
	rep, err := svc.ProcessText(context.Background(), 42, "Victory\nATRS Agastuma 5/2/8")
	require.NoError(t, err)

	assert.Equal(t, []string{"atrs_agatsuma"}, rep.LinkedFriends)
	assert.Empty(t, rep.NewFriends)
	require.Len(t, matches.reassigned, 1)
	for _, id := range matches.reassigned {
		assert.Equal(t, "atrs_agatsuma", id)
	}
}

func TestProcessTextRenamesToCleanerName(t *testing.T) {
	svc, friends, _, _ := newTestService()
	friends.friends = []store.Friend{
		{ID: 10, ChatID: 42, GameUserID: "alice", DisplayName: "©@Alice 3"},
	}
	friends.nextID = 10

	rep, err := svc.ProcessText(context.Background(), 42, "Victory\nAlice 5/2/8")
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice"}, rep.Renamed)
	assert.Equal(t, "Alice", friends.renames[10])
}

func TestProcessTextNoScoreboard(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.ProcessText(context.Background(), 42, "hello\nhow are you")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestProcessTextReconcilesAllParsedPlayers(t *testing.T) {
	svc, friends, matches, _ := newTestService()

	// Six players parsed; the first five are the uploader's party, the sixth
	// is an opponent. All six get roster entries and links.
	text := "Victory\n" +
		"Alice 1/2/3 Bob 2/3/4 Carol 3/4/5\n" +
		"Dave 4/5/6 Erin 5/6/7 Frank 6/7/8"
	rep, err := svc.ProcessText(context.Background(), 42, text)
	require.NoError(t, err)

	assert.Equal(t, 6, rep.PlayersParsed)
	assert.Len(t, friends.friends, 6)
	assert.Contains(t, rep.NewFriends, "frank")
	assert.Len(t, matches.links, 6)

	// The stored rows still separate party from opponents.
	require.Len(t, matches.created, 1)
	stored := matches.created[0].Players
	require.Len(t, stored, 6)
	assert.True(t, stored[4].IsOwnerParty)
	assert.False(t, stored[5].IsOwnerParty)
}

func TestProcessTextCanonicalizesEnemyRow(t *testing.T) {
	svc, friends, matches, _ := newTestService()
	friends.friends = []store.Friend{
		{ID: 10, ChatID: 42, GameUserID: "atrs_agatsuma", DisplayName: "ATRS Agatsuma"},
	}
	friends.nextID = 10

	// A known friend shows up on the enemy side with an OCR-garbled id; the
	// row is rewritten to the canonical id like any party row would be.
	text := "Victory\n" +
		"Alice 1/2/3 Bob 2/3/4 Carol 3/4/5\n" +
		"Dave 4/5/6 Erin 5/6/7 ATRS Agastuma 6/7/8"
	rep, err := svc.ProcessText(context.Background(), 42, text)
	require.NoError(t, err)

	assert.Equal(t, []string{"atrs_agatsuma"}, rep.LinkedFriends)
	require.Len(t, matches.reassigned, 1)
	for _, id := range matches.reassigned {
		assert.Equal(t, "atrs_agatsuma", id)
	}
}
