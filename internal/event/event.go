// Package event defines the normalized descriptors the caller forwards to
// the quest machine after each engine action. Events represent facts that
// have occurred, not commands.
package event

import "strings"

// Type identifies the kind of a domain event.
type Type string

const (
	// TypeResourceGathered records a successful harvest; TotalAmount
	// carries the actor's cumulative balance, not the per-call yield.
	TypeResourceGathered Type = "world.resource_gathered"
	// TypeEnemyFought records a resolved combat.
	TypeEnemyFought Type = "combat.enemy_fought"
	// TypeItemCrafted records a crafting attempt.
	TypeItemCrafted Type = "crafting.item_crafted"
	// TypeSanctuaryActivated records a sanctuary activation attempt.
	TypeSanctuaryActivated Type = "world.sanctuary_activated"
)

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "world").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// Event is a flat descriptor; only the fields matching its Type are set.
type Event struct {
	Type Type

	Resource    string
	TotalAmount int

	Enemy   string
	Victory bool

	Item string

	Sanctuary string

	Success bool
}

// ResourceGathered builds a gather event carrying the cumulative balance.
func ResourceGathered(resource string, totalAmount int) Event {
	return Event{Type: TypeResourceGathered, Resource: resource, TotalAmount: totalAmount, Success: true}
}

// EnemyFought builds a combat event.
func EnemyFought(enemy string, victory bool) Event {
	return Event{Type: TypeEnemyFought, Enemy: enemy, Victory: victory, Success: victory}
}

// ItemCrafted builds a crafting event.
func ItemCrafted(item string, success bool) Event {
	return Event{Type: TypeItemCrafted, Item: item, Success: success}
}

// SanctuaryActivated builds an activation event.
func SanctuaryActivated(sanctuary string, success bool) Event {
	return Event{Type: TypeSanctuaryActivated, Sanctuary: sanctuary, Success: success}
}
