// Package world owns the mutable simulation state: the region table, the
// roster of commissioned vessels, and the operations that move the actor,
// harvest resources, manage the fleet, and activate sanctuaries.
//
// Lookup failures are ordinary outcomes here. Every operation returns a
// structured result with a Success flag and a machine-readable Reason,
// and logs a line to the actor's journal when an actor is involved; only
// generator failures, which mean broken content, surface as errors.
package world

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/louisbranch/odyssee/internal/actor"
	"github.com/louisbranch/odyssee/internal/content"
	"github.com/louisbranch/odyssee/internal/random"
	"github.com/louisbranch/odyssee/internal/ship"
	"github.com/louisbranch/odyssee/internal/universe"
)

// Failure reasons carried by operation results. These are stable
// machine-readable tokens; journal lines carry the human-readable text.
const (
	ReasonUnknownRegion    = "unknown_region"
	ReasonUnknownResource  = "unknown_resource"
	ReasonUnknownEnemy     = "unknown_enemy"
	ReasonUnknownSanctuary = "unknown_sanctuary"
	ReasonUnknownShip      = "unknown_ship"
	ReasonUnknownSlot      = "unknown_slot"
)

// TravelResult reports a travel attempt.
type TravelResult struct {
	Success     bool
	Reason      string
	Region      string
	Description string
}

// GatherResult reports a single harvest attempt.
type GatherResult struct {
	Success    bool
	Reason     string
	Resource   string
	Amount     int
	Experience int
}

// HarvestResult aggregates an auto-harvest run. Summary lines are
// "name ×amount", ordered by French collation.
type HarvestResult struct {
	Harvested bool
	Reason    string
	Attempts  int
	Totals    map[string]int
	Summary   []string
}

// RefitResult reports a module refit. Replaced names the module the new
// one displaced, if the slot was occupied.
type RefitResult struct {
	Success  bool
	Reason   string
	ShipID   string
	Slot     string
	Module   ship.Module
	Replaced string
}

// MoveResult reports a vessel relocation.
type MoveResult struct {
	Success     bool
	Reason      string
	ShipID      string
	Origin      string
	Destination string
	Distance    int
	TravelTime  int
	Speed       int
}

// ActivateResult reports a sanctuary activation. Activation is a pure
// gate; success carries no state change beyond this report.
type ActivateResult struct {
	Success   bool
	Reason    string
	Sanctuary string
}

// World is the single mutable simulation state. It is not safe for
// concurrent use; the engine runs one synchronous actor.
type World struct {
	catalog *content.Catalog
	gen     *universe.Generator
	rng     *rand.Rand
	col     *collate.Collator
	regions map[string]content.Region
	ships   map[string]*ship.Vessel
	shipSeq int64
}

// New builds a world from the catalog's hand-seeded regions plus sectors
// procedurally generated ones. Hand-seeded names are reserved in the
// generator first so generation cannot collide with them.
func New(catalog *content.Catalog, gen *universe.Generator, rng *rand.Rand, sectors int) (*World, error) {
	w := &World{
		catalog: catalog,
		gen:     gen,
		rng:     rng,
		col:     collate.New(language.French),
		regions: make(map[string]content.Region, len(catalog.Regions)+sectors),
		ships:   map[string]*ship.Vessel{},
	}

	for name, region := range catalog.Regions {
		gen.MarkUsed(name)
		w.regions[name] = region
	}

	generated, err := gen.GenerateSectors(sectors)
	if err != nil {
		return nil, fmt.Errorf("populate world: %w", err)
	}
	for _, sector := range generated {
		w.regions[sector.Name] = sector.Region
	}

	return w, nil
}

// Region looks up a region by name.
func (w *World) Region(name string) (content.Region, bool) {
	region, ok := w.regions[name]
	return region, ok
}

// RegionNames returns every region name in French collation order.
func (w *World) RegionNames() []string {
	names := make([]string, 0, len(w.regions))
	for name := range w.regions {
		names = append(names, name)
	}
	w.col.SortStrings(names)
	return names
}

// Ship looks up a commissioned vessel by identifier.
func (w *World) Ship(id string) (*ship.Vessel, bool) {
	v, ok := w.ships[id]
	return v, ok
}

// ShipIDs returns the commissioned vessel identifiers in a stable order.
func (w *World) ShipIDs() []string {
	ids := make([]string, 0, len(w.ships))
	for id := range w.ships {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Travel relocates the actor to a known region and logs its description.
// Unknown regions fail without moving the actor.
func (w *World) Travel(a *actor.Actor, regionName string) TravelResult {
	region, ok := w.regions[regionName]
	if !ok {
		a.Logf(actor.LevelError, "Région inconnue : %s.", regionName)
		return TravelResult{Reason: ReasonUnknownRegion, Region: regionName}
	}

	a.Region = regionName
	a.Logf(actor.LevelTravel, "Vous arrivez dans %s. %s", regionName, region.Description)
	return TravelResult{Success: true, Region: regionName, Description: region.Description}
}

// GatherResource harvests one draw of the named resource from the actor's
// current region, crediting the inventory and the harvest experience.
func (w *World) GatherResource(a *actor.Actor, resourceName string) GatherResult {
	region, ok := w.regions[a.Region]
	if !ok {
		a.Logf(actor.LevelError, "Aucune région courante pour récolter.")
		return GatherResult{Reason: ReasonUnknownRegion, Resource: resourceName}
	}

	spec, ok := region.Resources[resourceName]
	if !ok {
		a.Logf(actor.LevelError, "Ressource introuvable ici : %s.", resourceName)
		return GatherResult{Reason: ReasonUnknownResource, Resource: resourceName}
	}

	amount := random.RangeInt(w.rng, spec.Min, spec.Max)
	a.AddResource(resourceName, amount)
	a.Logf(actor.LevelLoot, "Vous récoltez %d × %s.", amount, resourceName)
	a.GainExperience(spec.Experience)
	return GatherResult{Success: true, Resource: resourceName, Amount: amount, Experience: spec.Experience}
}

// AutoHarvest travels to the region if the actor is elsewhere, then runs
// attempts harvests cycling through the region's resources in collation
// order. Only the yielded amounts are random; the rotation is fixed.
func (w *World) AutoHarvest(a *actor.Actor, regionName string, attempts int) HarvestResult {
	if _, ok := w.regions[regionName]; !ok {
		a.Logf(actor.LevelError, "Région inconnue : %s.", regionName)
		return HarvestResult{Reason: ReasonUnknownRegion}
	}
	if a.Region != regionName {
		w.Travel(a, regionName)
	}

	region := w.regions[regionName]
	names := make([]string, 0, len(region.Resources))
	for name := range region.Resources {
		names = append(names, name)
	}
	w.col.SortStrings(names)

	totals := map[string]int{}
	result := HarvestResult{Attempts: attempts, Totals: totals}
	if len(names) == 0 {
		return result
	}

	for i := 0; i < attempts; i++ {
		gather := w.GatherResource(a, names[i%len(names)])
		if !gather.Success {
			continue
		}
		result.Harvested = true
		totals[gather.Resource] += gather.Amount
	}

	for _, name := range names {
		if totals[name] > 0 {
			result.Summary = append(result.Summary, fmt.Sprintf("%s ×%d", name, totals[name]))
		}
	}
	if result.Harvested {
		a.Logf(actor.LevelLoot, "Moisson dans %s : %s.", regionName, strings.Join(result.Summary, ", "))
	}
	return result
}

// CommissionShip generates a vessel from the next ship counter, installs
// its blueprint modules through the normal installation path, and
// registers it under a callSign-counter identifier. The spawn region is
// recorded as given; fleet vessels may hold position off the charted map.
func (w *World) CommissionShip(spawnRegion string) (*ship.Vessel, error) {
	w.shipSeq++
	seq := w.shipSeq

	bp, err := w.gen.ShipBlueprint(seq)
	if err != nil {
		return nil, fmt.Errorf("commission vessel %d: %w", seq, err)
	}

	v := ship.New(bp.Codename, bp.CallSign, bp.Class, bp.Role, bp.Summary, bp.Base)
	v.ID = fmt.Sprintf("%s-%d", bp.CallSign, seq)
	v.Region = spawnRegion
	for _, m := range bp.Modules {
		if _, err := v.InstallModule(m); err != nil {
			return nil, fmt.Errorf("commission vessel %s: %w", v.ID, err)
		}
	}

	w.ships[v.ID] = v
	return v, nil
}

// RefitShipByID resolves the vessel by identifier, then refits it.
func (w *World) RefitShipByID(id, slot string) RefitResult {
	v, ok := w.ships[id]
	if !ok {
		return RefitResult{Reason: ReasonUnknownShip, ShipID: id, Slot: slot}
	}
	return w.RefitShip(v, slot)
}

// RefitShip installs a randomly drawn module into the vessel's slot,
// replacing any occupant.
func (w *World) RefitShip(v *ship.Vessel, slot string) RefitResult {
	if v == nil {
		return RefitResult{Reason: ReasonUnknownShip, Slot: slot}
	}

	m, err := w.gen.RandomModule(slot)
	if err != nil {
		return RefitResult{Reason: ReasonUnknownSlot, ShipID: v.ID, Slot: slot}
	}
	record, err := v.InstallModule(m)
	if err != nil {
		return RefitResult{Reason: ReasonUnknownSlot, ShipID: v.ID, Slot: slot}
	}

	return RefitResult{Success: true, ShipID: v.ID, Slot: slot, Module: m, Replaced: record.Replaced}
}

// MoveShipByID resolves the vessel by identifier, then moves it.
func (w *World) MoveShipByID(id, destination string) MoveResult {
	v, ok := w.ships[id]
	if !ok {
		return MoveResult{Reason: ReasonUnknownShip, ShipID: id, Destination: destination}
	}
	return w.MoveShip(v, destination)
}

// MoveShip relocates the vessel to a known region and reports the
// distance covered and the travel time at the vessel's derived speed.
func (w *World) MoveShip(v *ship.Vessel, destination string) MoveResult {
	if v == nil {
		return MoveResult{Reason: ReasonUnknownShip, Destination: destination}
	}
	if _, ok := w.regions[destination]; !ok {
		return MoveResult{Reason: ReasonUnknownRegion, ShipID: v.ID, Destination: destination}
	}

	origin := v.Region
	distance := EstimateRegionDistance(origin, destination)
	travelTime := 0
	if distance > 0 {
		speed := v.Derived.Speed
		if speed < 1 {
			speed = 1
		}
		travelTime = int(math.Round(float64(distance*10) / float64(speed)))
		if travelTime < 1 {
			travelTime = 1
		}
	}

	v.Region = destination
	return MoveResult{
		Success:     true,
		ShipID:      v.ID,
		Origin:      origin,
		Destination: destination,
		Distance:    distance,
		TravelTime:  travelTime,
		Speed:       v.Derived.Speed,
	}
}

// ActivateSanctuary checks that the actor's current region lists the
// sanctuary. Activation is a gate with no further state effect.
func (w *World) ActivateSanctuary(a *actor.Actor, sanctuaryName string) ActivateResult {
	region, ok := w.regions[a.Region]
	if !ok {
		a.Logf(actor.LevelError, "Aucune région courante pour une activation.")
		return ActivateResult{Reason: ReasonUnknownRegion, Sanctuary: sanctuaryName}
	}

	for _, name := range region.Sanctuaries {
		if name == sanctuaryName {
			a.Logf(actor.LevelInfo, "Vous activez %s. Une résonance parcourt le secteur.", sanctuaryName)
			return ActivateResult{Success: true, Sanctuary: sanctuaryName}
		}
	}

	a.Logf(actor.LevelError, "Sanctuaire introuvable ici : %s.", sanctuaryName)
	return ActivateResult{Reason: ReasonUnknownSanctuary, Sanctuary: sanctuaryName}
}

// EstimateRegionDistance hashes two region names into [2, 8] distance
// units. The hash sums the character codes of both names, so distance is
// symmetric and round trips cost the same in either direction. Identical
// or absent names are zero distance.
func EstimateRegionDistance(a, b string) int {
	if a == "" || b == "" || a == b {
		return 0
	}
	sum := 0
	for _, r := range a {
		sum += int(r)
	}
	for _, r := range b {
		sum += int(r)
	}
	return sum%7 + 2
}
