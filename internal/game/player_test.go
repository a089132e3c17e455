// internal/game/player_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelUpStopsAtNineWithoutAKill(t *testing.T) {
	p := NewPlayer("alice", nil)
	p.LevelUp(7, false)
	require.Equal(t, 8, p.Level())

	p.LevelUp(3, false)
	assert.Equal(t, 9, p.Level())
	p.LevelUp(1, false)
	assert.Equal(t, 9, p.Level())

	p.level = 8
	p.LevelUp(3, true)
	assert.Equal(t, 11, p.Level())
}

func TestLevelDownFloorsAtOne(t *testing.T) {
	p := NewPlayer("bob", nil)
	p.LevelUp(2, false)
	p.LevelDown(5)
	assert.Equal(t, 1, p.Level())
}
