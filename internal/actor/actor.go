// Package actor models the single player-controlled entity: stats,
// leveling, the three inventories, and the append-only journal every
// mutating action writes into.
package actor

import "fmt"

// Level tags a journal entry with the kind of action that produced it.
type Level string

const (
	LevelInfo   Level = "info"
	LevelTravel Level = "travel"
	LevelCombat Level = "combat"
	LevelLoot   Level = "loot"
	LevelCraft  Level = "craft"
	LevelQuest  Level = "quest"
	LevelShip   Level = "ship"
	LevelError  Level = "error"
)

// Entry is one journal line. The journal is append-only; the rendering
// layer reads it and never writes it.
type Entry struct {
	Level   Level
	Message string
}

// Experience thresholds and per-level stat growth.
const (
	experiencePerLevel = 100
	healthPerLevel     = 20
	manaPerLevel       = 10
	powerPerLevel      = 2
)

// Actor is the player entity. Created once at voyage start, mutated by
// every subsystem, never destroyed.
type Actor struct {
	Name      string
	Archetype string

	Level      int
	Experience int

	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int
	Power     int

	Region string

	Resources  map[string]int
	Items      map[string]int
	QuestItems map[string]int

	journal []Entry
}

// New creates a level 1 actor with full pools and empty inventories.
func New(name, archetype string) *Actor {
	return &Actor{
		Name:       name,
		Archetype:  archetype,
		Level:      1,
		Health:     100,
		MaxHealth:  100,
		Mana:       50,
		MaxMana:    50,
		Power:      10,
		Resources:  map[string]int{},
		Items:      map[string]int{},
		QuestItems: map[string]int{},
	}
}

// Logf appends a formatted, level-tagged line to the journal.
func (a *Actor) Logf(level Level, format string, args ...any) {
	a.journal = append(a.journal, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Journal returns a copy of the journal entries in append order.
func (a *Actor) Journal() []Entry {
	return append([]Entry(nil), a.journal...)
}

// JournalLen returns the number of journal entries without copying.
func (a *Actor) JournalLen() int {
	return len(a.journal)
}

// AddResource adds amount units of a stackable resource.
func (a *Actor) AddResource(name string, amount int) {
	if amount <= 0 {
		return
	}
	a.Resources[name] += amount
}

// ResourceCount returns the current balance of a resource.
func (a *Actor) ResourceCount(name string) int {
	return a.Resources[name]
}

// SpendResource deducts amount units if the balance allows it and reports
// whether the deduction happened. Balances never go negative.
func (a *Actor) SpendResource(name string, amount int) bool {
	if amount <= 0 {
		return true
	}
	if a.Resources[name] < amount {
		return false
	}
	a.Resources[name] -= amount
	if a.Resources[name] == 0 {
		delete(a.Resources, name)
	}
	return true
}

// AddItem adds one unit of a crafted item.
func (a *Actor) AddItem(name string) {
	a.Items[name]++
}

// AddQuestItem adds one unit of a quest reward item.
func (a *Actor) AddQuestItem(name string) {
	a.QuestItems[name]++
}

// ExperienceToNext returns the experience still needed for the next level.
func (a *Actor) ExperienceToNext() int {
	return a.Level*experiencePerLevel - a.Experience
}

// GainExperience accumulates experience and applies any level-ups it pays
// for, raising pools and power and restoring health and mana at each one.
// It returns the number of levels gained.
func (a *Actor) GainExperience(points int) int {
	if points <= 0 {
		return 0
	}
	a.Experience += points

	levels := 0
	for a.Experience >= a.Level*experiencePerLevel {
		a.Experience -= a.Level * experiencePerLevel
		a.Level++
		a.MaxHealth += healthPerLevel
		a.MaxMana += manaPerLevel
		a.Power += powerPerLevel
		a.Health = a.MaxHealth
		a.Mana = a.MaxMana
		levels++
		a.Logf(LevelInfo, "Niveau %d atteint ! Vos systèmes se renforcent.", a.Level)
	}
	return levels
}

// ApplyDamage lowers health by the given amount, clamped at zero, and
// returns the damage actually absorbed.
func (a *Actor) ApplyDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > a.Health {
		amount = a.Health
	}
	a.Health -= amount
	return amount
}
