package scoreboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicWin(t *testing.T) {
	m := Parse("player1\nLayla\n5/2/8 12000 GPM\nVictory")
	require.NotNil(t, m)

	assert.Equal(t, ResultWin, m.Result)
	require.Len(t, m.Players, 1)
	p := m.Players[0]
	assert.Equal(t, "Layla", p.DisplayName)
	assert.Equal(t, "Layla", p.Hero)
	assert.Equal(t, 5, p.K)
	assert.Equal(t, 2, p.D)
	assert.Equal(t, 8, p.A)
	assert.Equal(t, 12000, p.GPM)
}

func TestParseDefeat(t *testing.T) {
	m := Parse("player1\nAlucard\n3/5/2\nDefeat")
	require.NotNil(t, m)
	assert.Equal(t, ResultLose, m.Result)
	require.Len(t, m.Players, 1)
	assert.Equal(t, "Alucard", m.Players[0].Hero)
}

func TestParseRejectsTinyInput(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("Victory"))
	assert.Nil(t, Parse("   \n   "))
}

func TestParseNoPlayersIsNoMatch(t *testing.T) {
	assert.Nil(t, Parse("Victory\nRanked"))
}

func TestParseSymbolNoiseInvariance(t *testing.T) {
	inputs := []string{
		"ATRS Agatsuma\n5/2/8",
		"BATRS Agatsuma\n5/2/8",
		"© ATRS Agatsuma\n5/2/8",
		"ATRSAgatsuma\n5/2/8",
	}
	for _, in := range inputs {
		m := Parse(in)
		require.NotNil(t, m, "input %q", in)
		require.Len(t, m.Players, 1, "input %q", in)
		assert.Equal(t, "atrs_agatsuma", m.Players[0].GameUserID, "input %q", in)
	}
}

func TestParseKDABound(t *testing.T) {
	// Components above 100 are never a kill count.
	assert.Nil(t, Parse("player1\nLayla\n200/2/8"))

	kda, ok := extractKDA("101/2/8")
	assert.False(t, ok, "got %+v", kda)
}

func TestParseOutcomeKeywordPriority(t *testing.T) {
	// A losing score pair on an earlier line must not override the banner.
	m := Parse("26 - 30\nVictory\nAlice 5/2/8")
	require.NotNil(t, m)
	assert.Equal(t, ResultWin, m.Result)
}

func TestParseDefaultsToWinWithoutBanner(t *testing.T) {
	m := Parse("Alice 5/2/8\nBob 1/2/3")
	require.NotNil(t, m)
	assert.Equal(t, ResultWin, m.Result)
}

func TestParseScoredBanner(t *testing.T) {
	m := Parse("26 B 19\nAlice 5/2/8")
	require.NotNil(t, m)
	assert.Equal(t, ResultWin, m.Result)

	m = Parse("19 - 26\nAlice 5/2/8")
	require.NotNil(t, m)
	assert.Equal(t, ResultLose, m.Result)
}

func TestParseModeDetection(t *testing.T) {
	m := Parse("Victory\nRanked Match\nAlice 5/2/8")
	require.NotNil(t, m)
	assert.Equal(t, "ranked", m.Mode)
}

func TestParseMultiplePlayersOnOneLine(t *testing.T) {
	m := Parse("Victory\nAlice 5/2/8 Bob 3/4/7")
	require.NotNil(t, m)
	require.Len(t, m.Players, 2)
	assert.Equal(t, "alice", m.Players[0].GameUserID)
	assert.Equal(t, KDA{5, 2, 8}, KDA{m.Players[0].K, m.Players[0].D, m.Players[0].A})
	assert.Equal(t, "bob", m.Players[1].GameUserID)
	assert.Equal(t, KDA{3, 4, 7}, KDA{m.Players[1].K, m.Players[1].D, m.Players[1].A})
}

func TestParseDuplicateTripleOnOneLineIsSkipped(t *testing.T) {
	m := Parse("Victory\nAlice 5/2/8 Bob 5/2/8")
	require.NotNil(t, m)
	assert.Len(t, m.Players, 1)
}

func TestParseGoldAfterTriple(t *testing.T) {
	m := Parse("Victory\nAlice 5/2/8 12345")
	require.NotNil(t, m)
	require.Len(t, m.Players, 1)
	assert.Equal(t, 12345, m.Players[0].GPM)
}

func TestParseNoisyMultiPlayerScoreboard(t *testing.T) {
	text := "26 VICTORY 19\n" +
		"Duration 14:22\n" +
		"( ri BATRS Agatsuma 5/2/8 . 11876\n" +
		"& ©@BABA garou 3/1/12 . 9543\n" +
		"rating 8.6"
	m := Parse(text)
	require.NotNil(t, m)
	assert.Equal(t, ResultWin, m.Result)
	require.Len(t, m.Players, 2)
	assert.Equal(t, "atrs_agatsuma", m.Players[0].GameUserID)
	assert.Equal(t, "ATRS Agatsuma", m.Players[0].DisplayName)
	assert.Equal(t, 11876, m.Players[0].GPM)
	assert.Equal(t, "baba_garou", m.Players[1].GameUserID)
	assert.Equal(t, 12, m.Players[1].A)
}

func TestOwnerPartyIndices(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, ownerPartyIndices(3))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ownerPartyIndices(10))
	assert.Empty(t, ownerPartyIndices(0))
}

func TestParseOwnerPartyCapsAtFive(t *testing.T) {
	text := "Victory\n" +
		"Alice 1/2/3 Bob 2/3/4 Carol 3/4/5\n" +
		"Dave 4/5/6 Erin 5/6/7 Frank 6/7/8"
	m := Parse(text)
	require.NotNil(t, m)
	require.Len(t, m.Players, 6)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, m.OwnerPartyIndices)
	assert.Equal(t, 5, m.PartySize)
}
