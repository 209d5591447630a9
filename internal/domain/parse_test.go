package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	m, err := ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	m, err = ParseClock(" 18:30 ")
	require.NoError(t, err)
	assert.Equal(t, 18*60+30, m)

	for _, bad := range []string{"", "24:00", "12:60", "noon", "1:2:3", "-1:00"} {
		_, err := ParseClock(bad)
		assert.ErrorIs(t, err, ErrInvalidClock, bad)
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "00:00", FormatMinutes(0))
	assert.Equal(t, "09:05", FormatMinutes(9*60+5))
	assert.Equal(t, "00:00", FormatMinutes(-5))
}

func TestValidateTZ(t *testing.T) {
	loc, err := ValidateTZ("Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	_, err = ValidateTZ("Mars/Olympus")
	assert.Error(t, err)
	_, err = ValidateTZ(" ")
	assert.Error(t, err)
}

func TestNormalizeHandle(t *testing.T) {
	h, err := NormalizeHandle("  @alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", h)

	h, err = NormalizeHandle("bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", h)

	_, err = NormalizeHandle("   ")
	assert.ErrorIs(t, err, ErrEmptyHandle)
	_, err = NormalizeHandle("@")
	assert.ErrorIs(t, err, ErrEmptyHandle)
}

func TestMention(t *testing.T) {
	assert.Equal(t, "@alice", Mention("alice"))
}
