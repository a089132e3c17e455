package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPotentialMovesTable(t *testing.T) {
	assert.Equal(t, []MoveType{MoveDone, MoveCarry}, PotentialMoves(PhaseSetup))
	assert.Equal(t, []MoveType{MovePlay}, PotentialMoves(PhaseCombat))
	assert.Equal(t, []MoveType{MovePlay, MoveCarry, MoveDone, MoveGive}, PotentialMoves(PhaseCharity))
	assert.Empty(t, PotentialMoves(PhaseEnd))

	// callers may mutate the copy freely
	moves := PotentialMoves(PhaseSetup)
	moves[0] = MoveWait
	assert.Equal(t, MoveDone, PotentialMoves(PhaseSetup)[0])

	assert.False(t, PhaseCombat.Permits(MoveCarry))
	assert.True(t, PhasePostCombat.Permits(MoveDone))
	for _, mt := range MoveTypes {
		assert.False(t, PhaseEnd.Permits(mt), "END permits nothing, got %s", mt)
	}
}

func TestParseMoveType(t *testing.T) {
	mt, err := ParseMoveType("carry")
	require.NoError(t, err)
	assert.Equal(t, MoveCarry, mt)

	_, err = ParseMoveType("teleport")
	assert.Error(t, err)
}

func TestTargetJSON(t *testing.T) {
	cases := map[string]Target{
		`null`:                              NoTarget,
		`{"type":"card","id":7}`:            CardTarget(7),
		`{"type":"player","id":"1"}`:        PlayerTarget(1),
		`{"type":"combat","id":"monsters"}`: CombatTarget(SideMonsters),
		`{"type":"combat","id":"players"}`:  CombatTarget(SidePlayers),
	}
	for raw, want := range cases {
		var got Target
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		assert.Equal(t, want, got, raw)
	}

	for _, bad := range []string{`{"type":"combat","id":"dragons"}`, `{"type":"deck","id":1}`, `{"type":"card","id":"x"}`, `[1]`} {
		var got Target
		assert.Error(t, json.Unmarshal([]byte(bad), &got), bad)
	}

	out, err := json.Marshal(CombatTarget(SidePlayers))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"combat","id":"players"}`, string(out))
	out, err = json.Marshal(NoTarget)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestActionDecode(t *testing.T) {
	var req Request
	raw := `{"type":"ACTION","action":{"move_type":"PLAY","card":12,"player":0,"target":{"type":"combat","id":"players"}}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	require.NotNil(t, req.Action)
	mt, err := req.Action.Move()
	require.NoError(t, err)
	assert.Equal(t, MovePlay, mt)
	id, ok, err := req.Action.CardID()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12, id)
	assert.True(t, req.Action.Target.IsCombatSide())

	var wait Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"WAIT","player":1,"card":null,"target":null}`), &wait))
	_, ok, err = wait.CardID()
	require.NoError(t, err)
	assert.False(t, ok)
}
