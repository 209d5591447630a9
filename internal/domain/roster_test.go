package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissing(t *testing.T) {
	got := Missing(Snapshot{
		Tracked:   []string{"A", "B", "C"},
		Exempt:    []string{"C"},
		Submitted: []string{"A"},
	})
	assert.Equal(t, []string{"B"}, got)
}

func TestMissing_ExemptWinsOverTracked(t *testing.T) {
	got := Missing(Snapshot{Tracked: []string{"A"}, Exempt: []string{"A"}})
	assert.Empty(t, got)
}

func TestMissing_DuplicateSubmissionsAndUntrackedSubmitters(t *testing.T) {
	got := Missing(Snapshot{
		Tracked:   []string{"A", "B", "D"},
		Submitted: []string{"A", "A", "Z"},
	})
	assert.Equal(t, []string{"B", "D"}, got)
}

func TestMissing_IgnoresHandleCase(t *testing.T) {
	got := Missing(Snapshot{
		Tracked:   []string{"Alice", "bob", "Dave"},
		Exempt:    []string{"BOB"},
		Submitted: []string{"alice"},
	})
	assert.Equal(t, []string{"Dave"}, got)
}

func TestMissing_Empty(t *testing.T) {
	assert.Empty(t, Missing(Snapshot{}))
}
