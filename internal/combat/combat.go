// Package combat resolves turn-based fights between the actor and an
// enemy template from the actor's current region.
//
// Damage draws are uniform over integer ranges whose minimums the content
// validation keeps at 1 or above, so every round shrinks a health pool and
// the loop terminates without a round cap. Templates are never mutated;
// enemy health lives in a local counter.
package combat

import (
	"math/rand"
	"sort"

	"github.com/louisbranch/odyssee/internal/actor"
	"github.com/louisbranch/odyssee/internal/random"
	"github.com/louisbranch/odyssee/internal/world"
)

// Result reports a resolved fight. Drops maps resource names to the
// amounts credited; it stays empty on defeat or failure.
type Result struct {
	Victory    bool
	Rounds     int
	Enemy      string
	Reason     string
	Experience int
	Drops      map[string]int
}

// Fight runs the turn loop against the named enemy in the actor's current
// region. Unknown regions or enemies fail in zero rounds. Defeat retreats
// the actor at 1 health with nothing gained; victory grants the enemy's
// experience and rolls each drop table entry independently.
func Fight(rng *rand.Rand, a *actor.Actor, w *world.World, enemyName string) Result {
	result := Result{Enemy: enemyName, Drops: map[string]int{}}

	region, ok := w.Region(a.Region)
	if !ok {
		a.Logf(actor.LevelError, "Aucune région courante pour engager le combat.")
		result.Reason = world.ReasonUnknownRegion
		return result
	}
	enemy, ok := region.Enemies[enemyName]
	if !ok {
		a.Logf(actor.LevelError, "Aucune trace de %s dans ce secteur.", enemyName)
		result.Reason = world.ReasonUnknownEnemy
		return result
	}

	a.Logf(actor.LevelCombat, "Le combat s'engage contre %s !", enemyName)

	enemyHealth := enemy.Health
	for enemyHealth > 0 && a.Health > 0 {
		result.Rounds++

		dealt := random.RangeInt(rng, a.Power*7/10, a.Power+a.Level*3)
		enemyHealth -= dealt
		if enemyHealth <= 0 {
			break
		}

		suffered := random.RangeInt(rng, enemy.Power*6/10, enemy.Power)
		a.ApplyDamage(suffered)
	}

	if a.Health <= 0 {
		a.Health = 1
		a.Logf(actor.LevelCombat, "Défaite contre %s. Repli d'urgence, systèmes au minimum.", enemyName)
		return result
	}

	result.Victory = true
	result.Experience = enemy.Experience
	a.Logf(actor.LevelCombat, "Victoire contre %s en %d tours.", enemyName, result.Rounds)
	a.GainExperience(enemy.Experience)

	resources := make([]string, 0, len(enemy.Drops))
	for resource := range enemy.Drops {
		resources = append(resources, resource)
	}
	sort.Strings(resources)
	for _, resource := range resources {
		drop := enemy.Drops[resource]
		if !random.Chance(rng, drop.Probability) {
			continue
		}
		a.AddResource(resource, drop.Amount)
		result.Drops[resource] = drop.Amount
		a.Logf(actor.LevelLoot, "Butin : %d × %s.", drop.Amount, resource)
	}

	return result
}
