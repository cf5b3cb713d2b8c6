// Package universe generates regions and vessel blueprints from the
// content catalogs through a seeded pseudo-random process.
//
// Region names combine a prefix picked deterministically from the seed with
// randomly drawn fragments, retrying until the composed name is unused.
// Ship blueprints are fully deterministic for a given seed: every catalog
// pick is a pure function of the seed plus a fixed per-field offset.
package universe

import (
	"fmt"
	"math/rand"

	"github.com/louisbranch/odyssee/internal/content"
	apperrors "github.com/louisbranch/odyssee/internal/errors"
	"github.com/louisbranch/odyssee/internal/random"
	"github.com/louisbranch/odyssee/internal/ship"
)

// nameAttemptCap bounds the unique-name retry loop. Exhausting it means the
// name catalogs are too small for the requested generation volume.
const nameAttemptCap = 100

// ErrNameSpaceExhausted is returned when no unused region name can be
// composed within the attempt cap. This is a fatal content error.
var ErrNameSpaceExhausted = apperrors.New(apperrors.CodeInvariantViolation, "region name space exhausted")

// ErrUnknownSlot is returned when a slot has no module pool in the catalog.
var ErrUnknownSlot = apperrors.New(apperrors.CodeUnknownReference, "no module pool for slot")

// Sector pairs a generated region with its name, in generation order.
type Sector struct {
	Name   string
	Region content.Region
}

// Blueprint describes a vessel before commissioning: identity picks, base
// stats, and one module per slot in canonical slot order.
type Blueprint struct {
	CallSign string
	Codename string
	Class    string
	Role     string
	Summary  string
	Base     ship.Stats
	Modules  []ship.Module
}

// Generator produces regions and blueprints. The used-name set lives on
// the generator value for its whole lifetime; names it has handed out (or
// been told about via MarkUsed) are never produced again.
type Generator struct {
	catalog   *content.Catalog
	rng       *rand.Rand
	used      map[string]bool
	sectorSeq int64
}

// NewGenerator creates a generator drawing from the given catalog and
// random source.
func NewGenerator(catalog *content.Catalog, rng *rand.Rand) *Generator {
	return &Generator{
		catalog: catalog,
		rng:     rng,
		used:    map[string]bool{},
	}
}

// MarkUsed reserves a region name so generation never duplicates it.
// The world registers its hand-seeded regions through this before asking
// for generated sectors.
func (g *Generator) MarkUsed(name string) {
	g.used[name] = true
}

// GenerateRegion composes a unique region name and generates its content.
// The prefix cycles deterministically from the seed while suffix and
// numeral are drawn from the random source; composition retries until the
// name is unused or the attempt cap trips.
func (g *Generator) GenerateRegion(seed int64) (string, content.Region, error) {
	name, err := g.uniqueName(seed)
	if err != nil {
		return "", content.Region{}, err
	}
	return name, g.generateContent(), nil
}

// GenerateSectors generates count regions in order, drawing sequential
// seeds from the generator's internal counter.
func (g *Generator) GenerateSectors(count int) ([]Sector, error) {
	sectors := make([]Sector, 0, count)
	for i := 0; i < count; i++ {
		g.sectorSeq++
		name, region, err := g.GenerateRegion(g.sectorSeq)
		if err != nil {
			return nil, fmt.Errorf("generate sector %d: %w", i+1, err)
		}
		sectors = append(sectors, Sector{Name: name, Region: region})
	}
	return sectors, nil
}

func (g *Generator) uniqueName(seed int64) (string, error) {
	names := g.catalog.Names
	for attempt := 0; attempt < nameAttemptCap; attempt++ {
		prefix := names.RegionPrefixes[mod(seed+int64(attempt), len(names.RegionPrefixes))]
		suffix := names.RegionSuffixes[g.rng.Intn(len(names.RegionSuffixes))]
		numeral := names.RomanNumerals[g.rng.Intn(len(names.RomanNumerals))]
		name := fmt.Sprintf("%s %s %s", prefix, suffix, numeral)
		if g.used[name] {
			continue
		}
		g.used[name] = true
		return name, nil
	}
	return "", fmt.Errorf("compose region name after %d attempts: %w", nameAttemptCap, ErrNameSpaceExhausted)
}

// generateContent picks 1-2 distinct resources, at most one enemy, and
// with even odds a single sanctuary. Selections are independent per region.
func (g *Generator) generateContent() content.Region {
	names := g.catalog.Names
	region := content.Region{
		Description: names.RegionDescriptions[g.rng.Intn(len(names.RegionDescriptions))],
		Resources:   map[string]content.ResourceSpec{},
		Enemies:     map[string]content.EnemyTemplate{},
	}

	resourceNames := g.catalog.ResourceNames()
	wanted := 1 + g.rng.Intn(2)
	if wanted > len(resourceNames) {
		wanted = len(resourceNames)
	}
	for len(region.Resources) < wanted {
		pick := resourceNames[g.rng.Intn(len(resourceNames))]
		if _, ok := region.Resources[pick]; ok {
			continue
		}
		region.Resources[pick] = g.catalog.Resources[pick]
	}

	if random.Chance(g.rng, 0.5) {
		enemyNames := g.catalog.EnemyNames()
		pick := enemyNames[g.rng.Intn(len(enemyNames))]
		region.Enemies[pick] = g.catalog.Enemies[pick]
	}

	if random.Chance(g.rng, 0.5) {
		region.Sanctuaries = []string{names.Sanctuaries[g.rng.Intn(len(names.Sanctuaries))]}
	}

	return region
}

// ShipBlueprint generates a deterministic blueprint for the seed: same
// seed, same vessel, independent of the random source.
func (g *Generator) ShipBlueprint(seed int64) (Blueprint, error) {
	names := g.catalog.Names
	bp := Blueprint{
		CallSign: names.CallSigns[mod(seed+1, len(names.CallSigns))],
		Codename: names.Codenames[mod(seed+2, len(names.Codenames))],
		Class:    names.Classes[mod(seed+3, len(names.Classes))],
		Role:     names.Roles[mod(seed+4, len(names.Roles))],
		Summary:  names.Summaries[mod(seed+5, len(names.Summaries))],
		Base: ship.Stats{
			Speed:   4 + mod(seed, 5),
			Cargo:   8 + mod(seed, 9),
			Defense: 2 + mod(seed, 4),
		},
	}

	for i, slot := range ship.Slots() {
		m, err := g.ModuleAt(slot, seed+int64(6+i))
		if err != nil {
			return Blueprint{}, fmt.Errorf("blueprint %d: %w", seed, err)
		}
		bp.Modules = append(bp.Modules, m)
	}
	return bp, nil
}

// RandomBlueprint generates a blueprint with unconstrained randomness.
func (g *Generator) RandomBlueprint() (Blueprint, error) {
	names := g.catalog.Names
	bp := Blueprint{
		CallSign: names.CallSigns[g.rng.Intn(len(names.CallSigns))],
		Codename: names.Codenames[g.rng.Intn(len(names.Codenames))],
		Class:    names.Classes[g.rng.Intn(len(names.Classes))],
		Role:     names.Roles[g.rng.Intn(len(names.Roles))],
		Summary:  names.Summaries[g.rng.Intn(len(names.Summaries))],
		Base: ship.Stats{
			Speed:   random.RangeInt(g.rng, 4, 8),
			Cargo:   random.RangeInt(g.rng, 8, 16),
			Defense: random.RangeInt(g.rng, 2, 5),
		},
	}

	for _, slot := range ship.Slots() {
		m, err := g.RandomModule(slot)
		if err != nil {
			return Blueprint{}, err
		}
		bp.Modules = append(bp.Modules, m)
	}
	return bp, nil
}

// ModuleAt returns a fresh module instance from the slot's pool, indexed
// by (offset - 1) modulo the pool size.
func (g *Generator) ModuleAt(slot string, offset int64) (ship.Module, error) {
	pool, ok := g.catalog.Modules[slot]
	if !ok {
		return ship.Module{}, fmt.Errorf("module slot %q: %w", slot, ErrUnknownSlot)
	}
	return instantiate(slot, pool[mod(offset-1, len(pool))]), nil
}

// RandomModule returns a fresh module instance drawn uniformly from the
// slot's pool.
func (g *Generator) RandomModule(slot string) (ship.Module, error) {
	pool, ok := g.catalog.Modules[slot]
	if !ok {
		return ship.Module{}, fmt.Errorf("module slot %q: %w", slot, ErrUnknownSlot)
	}
	return instantiate(slot, pool[g.rng.Intn(len(pool))]), nil
}

func instantiate(slot string, tpl content.ModuleTemplate) ship.Module {
	return ship.Module{
		Slot:        slot,
		Name:        tpl.Name,
		Speed:       tpl.Speed,
		Cargo:       tpl.Cargo,
		Defense:     tpl.Defense,
		Description: tpl.Description,
	}
}

// mod reduces v modulo n into [0, n), staying positive for negative seeds.
func mod(v int64, n int) int {
	m := int(v % int64(n))
	if m < 0 {
		m += n
	}
	return m
}
