package scoreboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ATRS Agatsuma", "ATRS Agatsuma"},
		{"BATRS Agatsuma", "ATRS Agatsuma"},
		{"© ATRS Agatsuma", "ATRS Agatsuma"},
		{"& ©@ATRS Agatsuma 314", "ATRS Agatsuma"},
		{"ATRSAgatsuma", "ATRS Agatsuma"},
		{"( ri BATRS Agatsuma", "ATRS Agatsuma"},
		{"San d ATRS Agatsuma", "ATRS Agatsuma"},
		{"BABA garou", "BABA garou"},
		{"xXshadowXx", "Xshadow Xx"},
		{"plainname", "plainname"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, normalizeName(c.in), "input %q", c.in)
	}
}

func TestStripStrayAcronymLetter(t *testing.T) {
	// A 5-letter run with a non-recurring first letter loses it.
	assert.Equal(t, "ATRS Agatsuma", stripStrayAcronymLetter("BATRS Agatsuma"))
	// Short tags stay whole.
	assert.Equal(t, "ATRS Agatsuma", stripStrayAcronymLetter("ATRS Agatsuma"))
	// A recurring first letter means the tag is legitimate.
	assert.Equal(t, "BABAB garou", stripStrayAcronymLetter("BABAB garou"))
	assert.Equal(t, "BABA garou", stripStrayAcronymLetter("BABA garou"))
}

func TestDeriveGameID(t *testing.T) {
	assert.Equal(t, "atrs_agatsuma", deriveGameID("ATRS Agatsuma"))
	assert.Equal(t, "baba_garou", deriveGameID("BABA garou"))
	assert.Equal(t, "x99", deriveGameID("©X99™"))
}

func TestDeriveGameIDIdempotent(t *testing.T) {
	for _, s := range []string{"ATRS Agatsuma", "weird  Name 7", "a_b_c", "©Fancy Pants™"} {
		id := deriveGameID(normalizeName(s))
		assert.Equal(t, id, deriveGameID(normalizeName(id)), "input %q", s)
	}
}

func TestExtractPlayerNameSkipsUIText(t *testing.T) {
	for _, line := range []string{
		"Victory",
		"defeat",
		"Duration 14:22",
		"Hero Damage 45%",
		"Ranked",
		"GPM",
		"5/2/8",
		"12000",
		"8k",
	} {
		_, _, ok := extractPlayerName(line)
		assert.False(t, ok, "line %q should be rejected", line)
	}
}

func TestExtractPlayerNameAccepts(t *testing.T) {
	name, id, ok := extractPlayerName("@ ATRS Agatsuma")
	require.True(t, ok)
	assert.Equal(t, "ATRS Agatsuma", name)
	assert.Equal(t, "atrs_agatsuma", id)

	_, _, ok = extractPlayerName("x")
	assert.False(t, ok, "too short")
}
