package game

import (
	"testing"
	"time"

	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreOpenCreatesOnce(t *testing.T) {
	st := NewSessionStore(testRules(), nil, nil)
	defer st.CloseAll()

	a, created, err := st.Open("dungeon", "")
	require.NoError(t, err)
	assert.True(t, created)

	b, created, err := st.Open("dungeon", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, a, b)

	got, ok := st.Get("dungeon")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestStorePassphrase(t *testing.T) {
	st := NewSessionStore(testRules(), nil, nil)
	defer st.CloseAll()

	s, _, err := st.Open("vault", "secret")
	require.NoError(t, err)
	assert.True(t, s.HasPassphrase())

	_, _, err = st.Open("vault", "guess")
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, _, err = st.Open("vault", "")
	assert.ErrorIs(t, err, ErrWrongPassword)

	again, _, err := st.Open("vault", "secret")
	require.NoError(t, err)
	assert.Same(t, s, again)
}

func TestStoreListAndRemove(t *testing.T) {
	st := NewSessionStore(testRules(), nil, nil)
	defer st.CloseAll()

	b, _, err := st.Open("b", "pw")
	require.NoError(t, err)
	_, _, err = st.Open("a", "")
	require.NoError(t, err)
	_, err = b.Join("alice", &recordingConn{})
	require.NoError(t, err)

	list := st.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.False(t, list[0].Protected)
	assert.Equal(t, "b", list[1].Name)
	assert.True(t, list[1].Protected)
	assert.Equal(t, 1, list[1].Players)
	assert.False(t, list[1].Started)

	require.NoError(t, st.Remove("b"))
	assert.True(t, b.Closed())
	_, ok := st.Get("b")
	assert.False(t, ok)
	assert.NoError(t, st.Remove("missing"))
}

func TestStoreDropsFinishedSession(t *testing.T) {
	rules := testRules()
	rules.DoorDeck = []cards.Entry{{New: cards.NewMrBones, Count: 20}}
	results := &recordingResults{}
	st := NewSessionStore(rules, nil, results)
	defer st.CloseAll()

	s, _, err := st.Open("finale", "")
	require.NoError(t, err)
	var players []*Player
	for _, name := range []string{"alice", "bob"} {
		p, err := s.Join(name, &recordingConn{})
		require.NoError(t, err)
		players = append(players, p)
	}
	waitPhase(t, s, models.PhaseSetup)
	toCombat(t, s, players)

	turn := s.Turn()
	s.Mu.Lock()
	turn.level = 9
	s.Mu.Unlock()
	readyAll(t, s, players)

	require.Eventually(t, s.Closed, time.Second, 5*time.Millisecond)
	_, ok := st.Get("finale")
	assert.False(t, ok)
	require.Eventually(t, func() bool { return len(results.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, turn.Name, results.all()[0].Winner)
}
