package cards

import (
	"testing"

	"github.com/jason-s-yu/munchkin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolder struct {
	level int
	race  string
}

func (f *fakeHolder) Level() int   { return f.level }
func (f *fakeHolder) Race() string { return f.race }
func (f *fakeHolder) LevelUp(count int, monsterKill bool) {
	f.level += count
	if !monsterKill && f.level > 9 {
		f.level = 9
	}
}
func (f *fakeHolder) LevelDown(count int) {
	f.level -= count
	if f.level < 1 {
		f.level = 1
	}
}

func TestBaseNeverPlayable(t *testing.T) {
	c := Hidden(Door, 3)
	c.SetInHand(true)
	for _, phase := range models.Phases {
		for _, mt := range models.MoveTypes {
			assert.False(t, c.CanPlay(mt, models.NoTarget, phase, true))
		}
	}
	info := c.Info(nil)
	assert.Equal(t, Info{ID: 3, Name: "Door Card", Image: ImageRoot + "room_back.png"}, info)
	assert.Equal(t, ImageRoot+"treasure_back.png", Hidden(Treasure, 4).Info(nil).Image)
}

func TestMonsterCanPlay(t *testing.T) {
	m := NewMrBones(1)
	assert.False(t, m.CanPlay(models.MoveFight, models.NoTarget, models.PhaseBegin, true), "not in hand yet")

	m.SetInHand(true)
	assert.True(t, m.CanPlay(models.MoveFight, models.NoTarget, models.PhaseBegin, true))
	assert.False(t, m.CanPlay(models.MoveFight, models.NoTarget, models.PhaseBegin, false), "off turn")
	assert.False(t, m.CanPlay(models.MoveFight, models.CardTarget(2), models.PhaseBegin, true), "monsters are never targeted")
	assert.False(t, m.CanPlay(models.MoveCarry, models.NoTarget, models.PhaseBegin, true))
}

func TestItemCanPlay(t *testing.T) {
	knees := NewSpikyKnees(1)
	knees.SetInHand(true)
	assert.True(t, knees.CanPlay(models.MoveCarry, models.NoTarget, models.PhaseSetup, true))
	assert.False(t, knees.CanPlay(models.MoveCarry, models.PlayerTarget(0), models.PhaseSetup, true))
	assert.False(t, knees.CanPlay(models.MoveCarry, models.NoTarget, models.PhaseSetup, false))
	assert.False(t, knees.CanPlay(models.MovePlay, models.CombatTarget(models.SidePlayers), models.PhaseCombat, true))

	knees.SetInHand(false)
	assert.False(t, knees.CanPlay(models.MoveCarry, models.NoTarget, models.PhaseSetup, true))

	item, ok := knees.(Item)
	require.True(t, ok)
	p := &fakeHolder{level: 1}
	assert.True(t, item.CanEquip(p))
	assert.Equal(t, 1, item.BonusOnPlayer(p))
}

func TestOneShotComposesItemClause(t *testing.T) {
	potion := NewFreezingExplosivePotion(1)
	potion.SetInHand(true)

	// inherited item clause
	assert.True(t, potion.CanPlay(models.MoveCarry, models.NoTarget, models.PhaseBegin, true))
	// own clause, regardless of turn
	assert.True(t, potion.CanPlay(models.MovePlay, models.CombatTarget(models.SideMonsters), models.PhaseCombat, false))
	assert.False(t, potion.CanPlay(models.MovePlay, models.CombatTarget(models.SideMonsters), models.PhaseBegin, true))
	assert.False(t, potion.CanPlay(models.MovePlay, models.CardTarget(4), models.PhaseCombat, true))
	assert.False(t, potion.CanPlay(models.MovePlay, models.NoTarget, models.PhaseCombat, true))

	item := potion.(Item)
	assert.False(t, item.CanEquip(&fakeHolder{level: 1}))

	playable, ok := potion.(Playable)
	require.True(t, ok)
	eff, err := playable.Play(models.CombatTarget(models.SidePlayers))
	require.NoError(t, err)
	assert.Equal(t, Effect{Kind: EffectAttachToCombat, Side: models.SidePlayers}, eff)

	_, err = playable.Play(models.PlayerTarget(1))
	assert.ErrorIs(t, err, ErrBadTarget)
}

func TestMonsterHooks(t *testing.T) {
	bones := NewMrBones(1).(Monster)
	p := &fakeHolder{level: 5}
	assert.Equal(t, 0, bones.Bonus(p))
	assert.True(t, bones.CanFlee(p))
	assert.Equal(t, 1, bones.LevelsGranted())
	bones.BadStuff(p)
	assert.Equal(t, 3, p.Level())
	bones.BadStuff(p)
	assert.Equal(t, 1, p.Level(), "level never drops below 1")

	horse := NewUndeadHorse(2).(Monster)
	assert.Equal(t, 0, horse.Bonus(&fakeHolder{level: 1}))
	assert.Equal(t, 5, horse.Bonus(&fakeHolder{level: 1, race: RaceDwarf}))
	assert.Equal(t, 2, horse.Treasure())

	info := horse.Info(&fakeHolder{level: 1, race: RaceDwarf})
	require.NotNil(t, info.Level)
	require.NotNil(t, info.Bonus)
	assert.Equal(t, 4, *info.Level)
	assert.Equal(t, 5, *info.Bonus)
	assert.Nil(t, horse.Info(nil).Bonus)
}

func TestCatalogCategories(t *testing.T) {
	for _, e := range DoorCatalog {
		assert.Equal(t, Door, e.New(1).Category())
	}
	for _, e := range TreasureCatalog {
		assert.Equal(t, Treasure, e.New(1).Category())
	}
	assert.Equal(t, Treasure, NewMagicMissile(1).Category())
}
