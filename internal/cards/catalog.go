// internal/cards/catalog.go
package cards

// Factory builds one fresh card with the given id.
type Factory func(id int) Card

// Entry is one line of a deck list.
type Entry struct {
	New   Factory
	Count int
}

// RaceDwarf is the only race the default catalog cares about.
const RaceDwarf = "dwarf"

// DoorCatalog is the default door deck.
var DoorCatalog = []Entry{
	{New: NewMrBones, Count: 10},
	{New: NewUndeadHorse, Count: 10},
}

// TreasureCatalog is the default treasure deck.
var TreasureCatalog = []Entry{
	{New: NewFreezingExplosivePotion, Count: 10},
	{New: NewSpikyKnees, Count: 10},
}

func NewMrBones(id int) Card {
	return NewMonster(id, MonsterSpec{
		Name:     "Mr. Bones",
		Image:    "MrBones.jpg",
		Level:    2,
		Treasure: 1,
		Rule:     "His bony touch costs you 2 levels.",
		BadStuff: func(p Holder) { p.LevelDown(2) },
	})
}

func NewUndeadHorse(id int) Card {
	return NewMonster(id, MonsterSpec{
		Name:     "Undead Horse",
		Image:    "Undead_Horse.jpg",
		Level:    4,
		Treasure: 2,
		Rule:     "Kicks, bites, and smells awful. Lose 2 levels.",
		Bonus: func(p Holder) int {
			if p.Race() == RaceDwarf {
				return 5
			}
			return 0
		},
		BadStuff: func(p Holder) { p.LevelDown(2) },
	})
}

func NewSpikyKnees(id int) Card {
	return NewItem(id, ItemSpec{Name: "Spiky Knees", Image: "Spiky_Knees.jpg", Bonus: 1})
}

func NewFreezingExplosivePotion(id int) Card {
	return NewOneShot(id, ItemSpec{Name: "Freezing Explosive Potion", Image: "FreezingExplosivePotion.jpg", Bonus: 3})
}

func NewMagicMissile(id int) Card {
	return NewOneShot(id, ItemSpec{Name: "Magic Missile", Image: "MagicMissile.jpg", Bonus: 5})
}
