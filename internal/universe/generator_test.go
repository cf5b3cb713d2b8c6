package universe

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/louisbranch/odyssee/internal/content"
	"github.com/louisbranch/odyssee/internal/ship"
)

func newTestGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	catalog, err := content.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return NewGenerator(catalog, rand.New(rand.NewSource(seed)))
}

func TestGenerateSectorsUniqueNames(t *testing.T) {
	g := newTestGenerator(t, 1)

	sectors, err := g.GenerateSectors(100)
	if err != nil {
		t.Fatalf("GenerateSectors(100) error = %v", err)
	}
	if len(sectors) != 100 {
		t.Fatalf("len(sectors) = %d, want 100", len(sectors))
	}

	seen := map[string]bool{}
	for _, sector := range sectors {
		if sector.Name == "" {
			t.Fatal("generated sector has an empty name")
		}
		if seen[sector.Name] {
			t.Fatalf("duplicate region name %q", sector.Name)
		}
		seen[sector.Name] = true
	}
}

func TestGenerateSectorsContent(t *testing.T) {
	g := newTestGenerator(t, 2)
	catalog := g.catalog

	sectors, err := g.GenerateSectors(30)
	if err != nil {
		t.Fatalf("GenerateSectors(30) error = %v", err)
	}

	for _, sector := range sectors {
		region := sector.Region
		if region.Description == "" {
			t.Errorf("region %q has no description", sector.Name)
		}
		if n := len(region.Resources); n < 1 || n > 2 {
			t.Errorf("region %q has %d resources, want 1 or 2", sector.Name, n)
		}
		for name := range region.Resources {
			if _, ok := catalog.Resources[name]; !ok {
				t.Errorf("region %q holds unknown resource %q", sector.Name, name)
			}
		}
		if len(region.Enemies) > 1 {
			t.Errorf("region %q has %d enemies, want at most 1", sector.Name, len(region.Enemies))
		}
		if len(region.Sanctuaries) > 1 {
			t.Errorf("region %q has %d sanctuaries, want at most 1", sector.Name, len(region.Sanctuaries))
		}
	}
}

func TestGenerateRegionSeedSelectsPrefix(t *testing.T) {
	g := newTestGenerator(t, 3)

	name, _, err := g.GenerateRegion(3)
	if err != nil {
		t.Fatalf("GenerateRegion(3) error = %v", err)
	}
	if !strings.HasPrefix(name, "Amas ") {
		t.Fatalf("GenerateRegion(3) name = %q, want prefix %q", name, "Amas")
	}
}

func TestGenerateRegionRetriesPastUsedNames(t *testing.T) {
	g := newTestGenerator(t, 4)
	names := g.catalog.Names

	// Reserve every name the first prefix can compose so the retry loop
	// must advance to the next prefix.
	for _, suffix := range names.RegionSuffixes {
		for _, numeral := range names.RomanNumerals {
			g.MarkUsed(fmt.Sprintf("%s %s %s", names.RegionPrefixes[0], suffix, numeral))
		}
	}

	name, _, err := g.GenerateRegion(0)
	if err != nil {
		t.Fatalf("GenerateRegion(0) error = %v", err)
	}
	if strings.HasPrefix(name, names.RegionPrefixes[0]+" ") {
		t.Fatalf("GenerateRegion(0) reused reserved prefix: %q", name)
	}
}

func TestGenerateRegionNameSpaceExhausted(t *testing.T) {
	g := newTestGenerator(t, 5)
	names := g.catalog.Names

	for _, prefix := range names.RegionPrefixes {
		for _, suffix := range names.RegionSuffixes {
			for _, numeral := range names.RomanNumerals {
				g.MarkUsed(fmt.Sprintf("%s %s %s", prefix, suffix, numeral))
			}
		}
	}

	_, _, err := g.GenerateRegion(0)
	if !errors.Is(err, ErrNameSpaceExhausted) {
		t.Fatalf("GenerateRegion() error = %v, want %v", err, ErrNameSpaceExhausted)
	}
}

func TestShipBlueprintDeterministic(t *testing.T) {
	// Two generators with different random sources must still agree:
	// seeded blueprints never touch the random source.
	a := newTestGenerator(t, 6)
	b := newTestGenerator(t, 7)

	first, err := a.ShipBlueprint(7)
	if err != nil {
		t.Fatalf("ShipBlueprint(7) error = %v", err)
	}
	second, err := b.ShipBlueprint(7)
	if err != nil {
		t.Fatalf("ShipBlueprint(7) error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ShipBlueprint(7) differs across generators:\n%+v\n%+v", first, second)
	}

	if first.CallSign != "AUR" {
		t.Errorf("CallSign = %q, want %q", first.CallSign, "AUR")
	}
	if first.Codename != "Vigilance" {
		t.Errorf("Codename = %q, want %q", first.Codename, "Vigilance")
	}
	want := ship.Stats{Speed: 6, Cargo: 15, Defense: 5}
	if first.Base != want {
		t.Errorf("Base = %+v, want %+v", first.Base, want)
	}

	if len(first.Modules) != len(ship.Slots()) {
		t.Fatalf("len(Modules) = %d, want %d", len(first.Modules), len(ship.Slots()))
	}
	for i, slot := range ship.Slots() {
		if first.Modules[i].Slot != slot {
			t.Errorf("Modules[%d].Slot = %q, want %q", i, first.Modules[i].Slot, slot)
		}
	}
}

func TestShipBlueprintNegativeSeed(t *testing.T) {
	g := newTestGenerator(t, 8)

	bp, err := g.ShipBlueprint(-3)
	if err != nil {
		t.Fatalf("ShipBlueprint(-3) error = %v", err)
	}
	checkBlueprintRanges(t, bp)
}

func TestRandomBlueprintRanges(t *testing.T) {
	g := newTestGenerator(t, 9)

	for i := 0; i < 20; i++ {
		bp, err := g.RandomBlueprint()
		if err != nil {
			t.Fatalf("RandomBlueprint() error = %v", err)
		}
		checkBlueprintRanges(t, bp)
	}
}

func checkBlueprintRanges(t *testing.T, bp Blueprint) {
	t.Helper()
	if bp.CallSign == "" || bp.Codename == "" || bp.Class == "" || bp.Role == "" || bp.Summary == "" {
		t.Fatalf("blueprint has empty identity fields: %+v", bp)
	}
	if bp.Base.Speed < 4 || bp.Base.Speed > 8 {
		t.Errorf("Base.Speed = %d, want in [4, 8]", bp.Base.Speed)
	}
	if bp.Base.Cargo < 8 || bp.Base.Cargo > 16 {
		t.Errorf("Base.Cargo = %d, want in [8, 16]", bp.Base.Cargo)
	}
	if bp.Base.Defense < 2 || bp.Base.Defense > 5 {
		t.Errorf("Base.Defense = %d, want in [2, 5]", bp.Base.Defense)
	}
	if len(bp.Modules) != len(ship.Slots()) {
		t.Fatalf("len(Modules) = %d, want %d", len(bp.Modules), len(ship.Slots()))
	}
	for i, slot := range ship.Slots() {
		if bp.Modules[i].Slot != slot {
			t.Errorf("Modules[%d].Slot = %q, want %q", i, bp.Modules[i].Slot, slot)
		}
	}
}

func TestModuleAtWrapsPool(t *testing.T) {
	g := newTestGenerator(t, 10)
	pool := g.catalog.Modules[ship.SlotPropulsion]

	tests := []struct {
		offset int64
		want   string
	}{
		{1, pool[0].Name},
		{2, pool[1].Name},
		{int64(len(pool)) + 1, pool[0].Name},
	}
	for _, tt := range tests {
		m, err := g.ModuleAt(ship.SlotPropulsion, tt.offset)
		if err != nil {
			t.Fatalf("ModuleAt(%q, %d) error = %v", ship.SlotPropulsion, tt.offset, err)
		}
		if m.Name != tt.want {
			t.Errorf("ModuleAt(%q, %d).Name = %q, want %q", ship.SlotPropulsion, tt.offset, m.Name, tt.want)
		}
		if m.Slot != ship.SlotPropulsion {
			t.Errorf("ModuleAt(%q, %d).Slot = %q, want %q", ship.SlotPropulsion, tt.offset, m.Slot, ship.SlotPropulsion)
		}
	}
}

func TestModuleAtUnknownSlot(t *testing.T) {
	g := newTestGenerator(t, 11)

	if _, err := g.ModuleAt("armement", 1); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("ModuleAt(armement) error = %v, want %v", err, ErrUnknownSlot)
	}
	if _, err := g.RandomModule("armement"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("RandomModule(armement) error = %v, want %v", err, ErrUnknownSlot)
	}
}

func TestRandomModuleDrawsFromPool(t *testing.T) {
	g := newTestGenerator(t, 12)
	known := map[string]bool{}
	for _, tpl := range g.catalog.Modules[ship.SlotUtility] {
		known[tpl.Name] = true
	}

	for i := 0; i < 50; i++ {
		m, err := g.RandomModule(ship.SlotUtility)
		if err != nil {
			t.Fatalf("RandomModule() error = %v", err)
		}
		if !known[m.Name] {
			t.Fatalf("RandomModule() returned %q, not in the %s pool", m.Name, ship.SlotUtility)
		}
	}
}
