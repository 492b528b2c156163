package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squad-tracker/api/internal/store"
)

func ptr(v int64) *int64 { return &v }

func matchWith(result string, partySize int, players ...store.MatchPlayer) store.MatchWithPlayers {
	return store.MatchWithPlayers{
		Match:   store.Match{Result: result, PartySize: partySize},
		Players: players,
	}
}

func friendPlayer(friendID int64, k, d, a int, owner bool) store.MatchPlayer {
	return store.MatchPlayer{FriendID: ptr(friendID), Kills: k, Deaths: d, Assists: a, IsOwnerParty: owner}
}

func TestSummarize(t *testing.T) {
	matches := []store.MatchWithPlayers{
		matchWith("win", 2, friendPlayer(7, 5, 2, 8, true)),
		matchWith("lose", 2, friendPlayer(7, 3, 6, 4, true)),
		matchWith("win", 2, friendPlayer(7, 4, 1, 6, true)),
	}
	s := Summarize(matches, 7)

	assert.Equal(t, 3, s.GamesTogether)
	assert.Equal(t, 2, s.WinsTogether)
	assert.InDelta(t, 4.0, s.AvgKills, 1e-9)
	assert.InDelta(t, 3.0, s.AvgDeaths, 1e-9)
	assert.InDelta(t, 6.0, s.AvgAssists, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.SynergyScore, 1e-9)
}

func TestSummarizeIgnoresEnemySightings(t *testing.T) {
	matches := []store.MatchWithPlayers{
		matchWith("win", 1, friendPlayer(7, 5, 2, 8, false)),
	}
	s := Summarize(matches, 7)
	assert.Zero(t, s.GamesTogether)
	assert.Zero(t, s.Confidence)
}

func TestSummarizeConfidenceRamp(t *testing.T) {
	one := []store.MatchWithPlayers{matchWith("win", 1, friendPlayer(7, 1, 1, 1, true))}
	s := Summarize(one, 7)
	assert.InDelta(t, 0.2+1.0/50*0.7, s.Confidence, 1e-9)

	var many []store.MatchWithPlayers
	for i := 0; i < 100; i++ {
		many = append(many, matchWith("win", 1, friendPlayer(7, 1, 1, 1, true)))
	}
	s = Summarize(many, 7)
	assert.InDelta(t, 0.9, s.Confidence, 1e-9)
}

func TestFeatures(t *testing.T) {
	sum := Summary{GamesTogether: 10, SynergyScore: 0.6, Confidence: 0.34}
	recent := []store.MatchWithPlayers{
		matchWith("win", 3,
			friendPlayer(7, 6, 2, 6, true),
			store.MatchPlayer{FriendID: ptr(1), Deaths: 4, IsOwnerParty: true},
		),
		matchWith("lose", 3,
			friendPlayer(7, 3, 4, 3, true),
			store.MatchPlayer{FriendID: ptr(1), Deaths: 8, IsOwnerParty: true},
		),
		matchWith("win", 3, friendPlayer(7, 6, 0, 9, true)),
	}
	fv := Features(sum, recent, 7)

	assert.InDelta(t, 0.6, fv.WRTogether, 1e-9)
	assert.Equal(t, 10, fv.GamesTogether)
	assert.InDelta(t, 0.34, fv.StatsConfidence, 1e-9)

	// (k + 0.5a) / max(d,1) / 6 over the last three games:
	// k=15, a=18, d=6 -> (15+9)/6/6 = 0.666...
	assert.InDelta(t, 24.0/6/6, fv.FriendKDALast3, 1e-9)

	assert.InDelta(t, 3.0/5, fv.PartySizeNorm, 1e-9)
	assert.Zero(t, fv.RoleComboScore)
}

func TestFeaturesKDACappedAtOne(t *testing.T) {
	sum := Summary{}
	recent := []store.MatchWithPlayers{
		matchWith("win", 5, friendPlayer(7, 30, 0, 30, true)),
	}
	fv := Features(sum, recent, 7)
	assert.Equal(t, 1.0, fv.FriendKDALast3)
}

func TestFeaturesDefaultPartySize(t *testing.T) {
	fv := Features(Summary{}, nil, 7)
	assert.InDelta(t, 0.6, fv.PartySizeNorm, 1e-9)
}

func TestFeaturesDeathsGapClamped(t *testing.T) {
	recent := []store.MatchWithPlayers{
		matchWith("win", 2,
			friendPlayer(7, 0, 0, 0, true),
			store.MatchPlayer{FriendID: ptr(1), Deaths: 50, IsOwnerParty: true},
		),
	}
	fv := Features(Summary{}, recent, 7)
	assert.Equal(t, 1.0, fv.DeathsGap)
}

func TestFriendRow(t *testing.T) {
	players := []store.MatchPlayer{
		{GameUserID: "a"},
		{FriendID: ptr(9), GameUserID: "b"},
	}
	row, ok := friendRow(players, 9)
	require.True(t, ok)
	assert.Equal(t, "b", row.GameUserID)

	_, ok = friendRow(players, 5)
	assert.False(t, ok)
}
