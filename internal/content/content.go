// Package content owns the static catalogs the simulation draws from:
// harvestable resources, enemy templates, vessel module pools, name
// fragments, the hand-seeded regions, crafting recipes, and the quest
// definition. Catalogs are embedded YAML, decoded once by Load, and
// validated against the data-model invariants before the engine sees them.
package content

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/louisbranch/odyssee/internal/errors"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// ResourceSpec describes one harvestable resource.
type ResourceSpec struct {
	Min         int    `yaml:"min"`
	Max         int    `yaml:"max"`
	Experience  int    `yaml:"experience"`
	Description string `yaml:"description"`
}

// Drop describes one entry in an enemy's drop table.
type Drop struct {
	Probability float64 `yaml:"probability"`
	Amount      int     `yaml:"amount"`
}

// EnemyTemplate describes a combat opponent. Templates are read-only;
// combat tracks health on a local counter, never on the template.
type EnemyTemplate struct {
	Health      int             `yaml:"health"`
	Power       int             `yaml:"power"`
	Experience  int             `yaml:"experience"`
	Description string          `yaml:"description"`
	Drops       map[string]Drop `yaml:"drops"`
}

// Region holds the content of a named location. Regions are immutable once
// generated; only the world's table maps names to them.
type Region struct {
	Description string                   `yaml:"description"`
	Resources   map[string]ResourceSpec  `yaml:"resources"`
	Enemies     map[string]EnemyTemplate `yaml:"enemies"`
	Sanctuaries []string                 `yaml:"sanctuaries"`
}

// ModuleTemplate describes a vessel module blueprint within a slot pool.
type ModuleTemplate struct {
	Name        string `yaml:"name"`
	Speed       int    `yaml:"speed"`
	Cargo       int    `yaml:"cargo"`
	Defense     int    `yaml:"defense"`
	Description string `yaml:"description"`
}

// Recipe describes a craftable item and its resource costs.
type Recipe struct {
	Inputs      map[string]int `yaml:"inputs"`
	Experience  int            `yaml:"experience"`
	Description string         `yaml:"description"`
}

// QuestStep is the catalog form of one quest objective. Kind is one of
// gather, defeat, craft, or activate; the matching field carries the target.
type QuestStep struct {
	Kind      string `yaml:"kind"`
	Resource  string `yaml:"resource"`
	Amount    int    `yaml:"amount"`
	Enemy     string `yaml:"enemy"`
	Item      string `yaml:"item"`
	Sanctuary string `yaml:"sanctuary"`
	Objective string `yaml:"objective"`
	Narration string `yaml:"narration"`
}

// QuestReward describes what completing the quest grants.
type QuestReward struct {
	Experience int      `yaml:"experience"`
	Items      []string `yaml:"items"`
}

// QuestDefinition is the catalog form of the scripted quest.
type QuestDefinition struct {
	Name   string      `yaml:"name"`
	Steps  []QuestStep `yaml:"steps"`
	Reward QuestReward `yaml:"reward"`
}

// Names holds the fragments the generator composes identities from.
type Names struct {
	RegionPrefixes     []string `yaml:"region_prefixes"`
	RegionSuffixes     []string `yaml:"region_suffixes"`
	RomanNumerals      []string `yaml:"roman_numerals"`
	RegionDescriptions []string `yaml:"region_descriptions"`
	Sanctuaries        []string `yaml:"sanctuaries"`
	CallSigns          []string `yaml:"call_signs"`
	Codenames          []string `yaml:"codenames"`
	Classes            []string `yaml:"classes"`
	Roles              []string `yaml:"roles"`
	Summaries          []string `yaml:"summaries"`
}

// Catalog bundles every loaded catalog file.
type Catalog struct {
	Resources map[string]ResourceSpec
	Enemies   map[string]EnemyTemplate
	Modules   map[string][]ModuleTemplate
	Names     Names
	Regions   map[string]Region
	Recipes   map[string]Recipe
	Quest     QuestDefinition
}

// Load decodes and validates the embedded catalogs.
func Load() (*Catalog, error) {
	c := &Catalog{}

	if err := decode("resources.yaml", &c.Resources); err != nil {
		return nil, err
	}
	if err := decode("enemies.yaml", &c.Enemies); err != nil {
		return nil, err
	}
	if err := decode("modules.yaml", &c.Modules); err != nil {
		return nil, err
	}
	if err := decode("names.yaml", &c.Names); err != nil {
		return nil, err
	}
	if err := decode("regions.yaml", &c.Regions); err != nil {
		return nil, err
	}
	if err := decode("recipes.yaml", &c.Recipes); err != nil {
		return nil, err
	}
	if err := decode("quest.yaml", &c.Quest); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(name string, target any) error {
	data, err := catalogFS.ReadFile("catalogs/" + name)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return apperrors.Wrap(apperrors.CodeInvariantViolation, fmt.Sprintf("parse catalog %s", name), err)
	}
	return nil
}

// Validate checks every catalog against the data-model invariants. A failed
// check means the content files are malformed, which is fatal.
func (c *Catalog) Validate() error {
	if len(c.Resources) == 0 {
		return apperrors.New(apperrors.CodeInvariantViolation, "resource catalog is empty")
	}
	for name, spec := range c.Resources {
		if err := validateResourceSpec(name, spec); err != nil {
			return err
		}
	}

	if len(c.Enemies) == 0 {
		return apperrors.New(apperrors.CodeInvariantViolation, "enemy catalog is empty")
	}
	for name, tpl := range c.Enemies {
		if err := validateEnemy(name, tpl); err != nil {
			return err
		}
	}

	if len(c.Modules) == 0 {
		return apperrors.New(apperrors.CodeInvariantViolation, "module catalog is empty")
	}
	for slot, pool := range c.Modules {
		if len(pool) == 0 {
			return apperrors.Newf(apperrors.CodeInvariantViolation, "module slot %q has an empty pool", slot)
		}
		for _, tpl := range pool {
			if tpl.Name == "" {
				return apperrors.Newf(apperrors.CodeInvariantViolation, "module slot %q has an unnamed template", slot)
			}
		}
	}

	if err := c.Names.validate(); err != nil {
		return err
	}

	for name, region := range c.Regions {
		if err := c.validateRegion(name, region); err != nil {
			return err
		}
	}

	for name, recipe := range c.Recipes {
		if len(recipe.Inputs) == 0 {
			return apperrors.Newf(apperrors.CodeInvariantViolation, "recipe %q has no inputs", name)
		}
		for input, count := range recipe.Inputs {
			if count < 1 {
				return apperrors.Newf(apperrors.CodeInvariantViolation, "recipe %q requires %d × %q", name, count, input)
			}
			if _, ok := c.Resources[input]; !ok {
				return apperrors.Newf(apperrors.CodeInvariantViolation, "recipe %q requires unknown resource %q", name, input)
			}
		}
	}

	if len(c.Quest.Steps) == 0 {
		return apperrors.New(apperrors.CodeInvariantViolation, "quest has no steps")
	}

	return nil
}

func validateResourceSpec(name string, spec ResourceSpec) error {
	if spec.Min < 1 {
		return apperrors.Newf(apperrors.CodeInvariantViolation, "resource %q has min %d, want >= 1", name, spec.Min)
	}
	if spec.Max < spec.Min {
		return apperrors.Newf(apperrors.CodeInvariantViolation, "resource %q has max %d below min %d", name, spec.Max, spec.Min)
	}
	return nil
}

// validateEnemy rejects templates whose minimum counter-attack damage would
// round to zero; a zero-damage floor makes the combat loop unbounded.
func validateEnemy(name string, tpl EnemyTemplate) error {
	if tpl.Health < 1 {
		return apperrors.Newf(apperrors.CodeInvariantViolation, "enemy %q has health %d, want >= 1", name, tpl.Health)
	}
	if tpl.Power*6/10 < 1 {
		return apperrors.Newf(apperrors.CodeInvariantViolation, "enemy %q has power %d, minimum damage would be 0", name, tpl.Power)
	}
	for resource, drop := range tpl.Drops {
		if drop.Probability < 0 || drop.Probability > 1 {
			return apperrors.Newf(apperrors.CodeInvariantViolation, "enemy %q drop %q has probability %v outside [0, 1]", name, resource, drop.Probability)
		}
		if drop.Amount < 1 {
			return apperrors.Newf(apperrors.CodeInvariantViolation, "enemy %q drop %q has amount %d, want >= 1", name, resource, drop.Amount)
		}
	}
	return nil
}

func (c *Catalog) validateRegion(name string, region Region) error {
	if len(region.Resources) == 0 {
		return apperrors.Newf(apperrors.CodeInvariantViolation, "region %q has no resources", name)
	}
	for resource, spec := range region.Resources {
		if err := validateResourceSpec(resource, spec); err != nil {
			return fmt.Errorf("region %q: %w", name, err)
		}
	}
	for enemy, tpl := range region.Enemies {
		if err := validateEnemy(enemy, tpl); err != nil {
			return fmt.Errorf("region %q: %w", name, err)
		}
	}
	return nil
}

func (n Names) validate() error {
	lists := []struct {
		name   string
		values []string
	}{
		{"region_prefixes", n.RegionPrefixes},
		{"region_suffixes", n.RegionSuffixes},
		{"roman_numerals", n.RomanNumerals},
		{"region_descriptions", n.RegionDescriptions},
		{"sanctuaries", n.Sanctuaries},
		{"call_signs", n.CallSigns},
		{"codenames", n.Codenames},
		{"classes", n.Classes},
		{"roles", n.Roles},
		{"summaries", n.Summaries},
	}
	for _, list := range lists {
		if len(list.values) == 0 {
			return apperrors.Newf(apperrors.CodeInvariantViolation, "name list %q is empty", list.name)
		}
	}
	return nil
}

// ResourceNames returns the catalog's resource names in a stable order.
func (c *Catalog) ResourceNames() []string {
	names := make([]string, 0, len(c.Resources))
	for name := range c.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnemyNames returns the catalog's enemy names in a stable order.
func (c *Catalog) EnemyNames() []string {
	names := make([]string, 0, len(c.Enemies))
	for name := range c.Enemies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
