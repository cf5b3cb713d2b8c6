// Package crafting validates recipes against the actor's resource
// inventory and applies them atomically.
package crafting

import (
	"sort"

	"github.com/louisbranch/odyssee/internal/actor"
	"github.com/louisbranch/odyssee/internal/content"
)

// Failure reasons carried by craft results.
const (
	ReasonUnknownRecipe         = "unknown_recipe"
	ReasonInsufficientResources = "insufficient_resources"
)

// Result reports a craft attempt. Consumed maps resource names to the
// amounts deducted; it stays empty unless the craft succeeded.
type Result struct {
	Success    bool
	Reason     string
	Item       string
	Experience int
	Consumed   map[string]int
}

// Craft checks every required resource before consuming any of them. A
// single shortfall fails the whole attempt with the inventory untouched.
// On success every input is deducted, one unit of the item is added, and
// the recipe's experience is granted.
func Craft(a *actor.Actor, recipes map[string]content.Recipe, recipeName string) Result {
	result := Result{Item: recipeName, Consumed: map[string]int{}}

	recipe, ok := recipes[recipeName]
	if !ok {
		a.Logf(actor.LevelError, "Schéma inconnu : %s.", recipeName)
		result.Reason = ReasonUnknownRecipe
		return result
	}

	inputs := make([]string, 0, len(recipe.Inputs))
	for resource := range recipe.Inputs {
		inputs = append(inputs, resource)
	}
	sort.Strings(inputs)

	for _, resource := range inputs {
		needed := recipe.Inputs[resource]
		if held := a.ResourceCount(resource); held < needed {
			a.Logf(actor.LevelError, "Ressources insuffisantes pour %s : il manque %d × %s.", recipeName, needed-held, resource)
			result.Reason = ReasonInsufficientResources
			return result
		}
	}

	for _, resource := range inputs {
		needed := recipe.Inputs[resource]
		a.SpendResource(resource, needed)
		result.Consumed[resource] = needed
	}

	a.AddItem(recipeName)
	a.Logf(actor.LevelCraft, "Fabrication réussie : %s.", recipeName)
	a.GainExperience(recipe.Experience)

	result.Success = true
	result.Experience = recipe.Experience
	return result
}
