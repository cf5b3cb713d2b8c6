package narrative

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/odyssee/internal/actor"
	"github.com/louisbranch/odyssee/internal/chronicle"
	"github.com/louisbranch/odyssee/internal/content"
	apperrors "github.com/louisbranch/odyssee/internal/errors"
	"github.com/louisbranch/odyssee/internal/narrative/script"
	"github.com/louisbranch/odyssee/internal/quest"
	"github.com/louisbranch/odyssee/internal/universe"
	"github.com/louisbranch/odyssee/internal/world"
)

type testEngine struct {
	deps Deps
	out  *bytes.Buffer
}

func newTestEngine(t *testing.T, seed int64, withQuest bool) testEngine {
	t.Helper()

	catalog, err := content.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	rng := rand.New(rand.NewSource(seed))
	w, err := world.New(catalog, universe.NewGenerator(catalog, rng), rng, 3)
	if err != nil {
		t.Fatalf("world.New() error = %v", err)
	}

	var q *quest.Quest
	if withQuest {
		q, err = quest.FromDefinition(catalog.Quest)
		if err != nil {
			t.Fatalf("FromDefinition() error = %v", err)
		}
	}

	out := &bytes.Buffer{}
	return testEngine{
		deps: Deps{
			World:    w,
			Actor:    actor.New("Lyra", "pilote"),
			Quest:    q,
			Catalog:  catalog,
			RNG:      rng,
			Renderer: NewRenderer(out),
		},
		out: out,
	}
}

func TestNewRunnerValidatesDeps(t *testing.T) {
	eng := newTestEngine(t, 1, false)

	tests := []struct {
		name  string
		strip func(d Deps) Deps
	}{
		{"world", func(d Deps) Deps { d.World = nil; return d }},
		{"actor", func(d Deps) Deps { d.Actor = nil; return d }},
		{"catalog", func(d Deps) Deps { d.Catalog = nil; return d }},
		{"rng", func(d Deps) Deps { d.RNG = nil; return d }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRunner(tc.strip(eng.deps), Config{}); err == nil {
				t.Errorf("NewRunner() without %s accepted", tc.name)
			}
		})
	}

	if _, err := NewRunner(eng.deps, Config{}); err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
}

func TestRunDefaultVoyageCompletesQuest(t *testing.T) {
	eng := newTestEngine(t, 11, true)
	r, err := NewRunner(eng.deps, Config{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	voyage, err := script.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if err := r.Run(context.Background(), voyage); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	a := eng.deps.Actor
	if !eng.deps.Quest.Completed() {
		t.Errorf("quest not completed, cursor = %d", eng.deps.Quest.Cursor())
	}
	if got := a.Items["Balise Stellaris"]; got != 1 {
		t.Errorf("Items[Balise Stellaris] = %d, want 1", got)
	}
	for _, item := range []string{"Carte Stellaire Ancienne", "Sceau du Contrôleur"} {
		if got := a.QuestItems[item]; got != 1 {
			t.Errorf("QuestItems[%s] = %d, want 1", item, got)
		}
	}
	if a.Health < 1 {
		t.Errorf("actor health = %d, want >= 1", a.Health)
	}
	if a.Region != "Station Aurore" {
		t.Errorf("actor region = %q, want %q", a.Region, "Station Aurore")
	}

	ids := eng.deps.World.ShipIDs()
	if len(ids) != 1 {
		t.Fatalf("ShipIDs() = %v, want one vessel", ids)
	}
	v, ok := eng.deps.World.Ship(ids[0])
	if !ok {
		t.Fatalf("Ship(%q) missing", ids[0])
	}
	if v.Region != "Ceinture de Kessler" {
		t.Errorf("vessel region = %q, want %q", v.Region, "Ceinture de Kessler")
	}
	if len(v.History) != 4 {
		t.Errorf("vessel history = %d installs, want 4", len(v.History))
	}

	out := eng.out.String()
	for _, want := range []string{
		"=== La Balise du Retour ===",
		"Cap sur Station Aurore.",
		"Victoire contre Pirate des Confins",
		"Fabriqué : Balise Stellaris",
		"Quête accomplie : La Balise du Retour !",
		"Journal de bord",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunResolvesShipHandles(t *testing.T) {
	eng := newTestEngine(t, 3, false)
	r, err := NewRunner(eng.deps, Config{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	voyage := &script.Voyage{Name: "essai", Steps: []script.Step{
		{Kind: "commission", Args: map[string]any{"spawn": "Station Aurore", "as": "nav"}},
		{Kind: "refit", Args: map[string]any{"ship": "nav", "slot": "utility"}},
		{Kind: "move", Args: map[string]any{"ship": "nav", "to": "Ceinture de Kessler"}},
	}}
	if err := r.Run(context.Background(), voyage); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	ids := eng.deps.World.ShipIDs()
	if len(ids) != 1 {
		t.Fatalf("ShipIDs() = %v, want one vessel", ids)
	}
	v, _ := eng.deps.World.Ship(ids[0])
	if v.Region != "Ceinture de Kessler" {
		t.Errorf("vessel region = %q, want %q", v.Region, "Ceinture de Kessler")
	}
	if len(v.History) != 4 {
		t.Errorf("vessel history = %d installs, want 4 (commission fit plus refit)", len(v.History))
	}

	out := eng.out.String()
	if !strings.Contains(out, "Mise en service :") {
		t.Errorf("output missing commission line:\n%s", out)
	}
	if !strings.Contains(out, "Refonte :") {
		t.Errorf("output missing refit line:\n%s", out)
	}
	if !strings.Contains(out, "Transit de "+v.ID) {
		t.Errorf("output missing transit line:\n%s", out)
	}
}

func TestRunRecoversFromUnknownReferences(t *testing.T) {
	eng := newTestEngine(t, 5, false)
	r, err := NewRunner(eng.deps, Config{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	voyage := &script.Voyage{Name: "essai", Steps: []script.Step{
		{Kind: "travel", Args: map[string]any{"region": "Nulle Part"}},
		{Kind: "gather", Args: map[string]any{"resource": "Or Massif"}},
		{Kind: "fight", Args: map[string]any{"enemy": "Léviathan"}},
		{Kind: "craft", Args: map[string]any{"item": "Schéma Perdu"}},
		{Kind: "activate", Args: map[string]any{"sanctuary": "Autel Muet"}},
		{Kind: "refit", Args: map[string]any{"ship": "fantôme", "slot": "utility"}},
		{Kind: "move", Args: map[string]any{"ship": "fantôme", "to": "Station Aurore"}},
	}}
	if err := r.Run(context.Background(), voyage); err != nil {
		t.Fatalf("Run() error = %v, recoverable failures must not abort", err)
	}

	out := eng.out.String()
	for _, want := range []string{
		"Région inconnue : Nulle Part.",
		"Récolte impossible ici.",
		"Aucun adversaire de ce nom ici.",
		"Schéma inconnu : Schéma Perdu.",
		"Rien à activer ici.",
		"Vaisseau introuvable.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunRequiredCraftAborts(t *testing.T) {
	eng := newTestEngine(t, 7, false)
	r, err := NewRunner(eng.deps, Config{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	voyage := &script.Voyage{Name: "essai", Steps: []script.Step{
		{Kind: "craft", Args: map[string]any{"item": "Balise Stellaris", "require": true}},
	}}
	err = r.Run(context.Background(), voyage)
	if err == nil {
		t.Fatal("Run() accepted a required craft without resources")
	}
	if !errors.Is(err, apperrors.New(apperrors.CodeInsufficientResources, "")) {
		t.Errorf("Run() error = %v, want insufficient resources code", err)
	}
	if !strings.Contains(err.Error(), "step 1 (craft)") {
		t.Errorf("Run() error = %v, want step context", err)
	}

	voyage.Steps[0].Args["item"] = "Schéma Perdu"
	err = r.Run(context.Background(), voyage)
	if !errors.Is(err, apperrors.New(apperrors.CodeUnknownReference, "")) {
		t.Errorf("Run() error = %v, want unknown reference code", err)
	}
}

func TestRunRejectsUnknownStepKind(t *testing.T) {
	eng := newTestEngine(t, 9, false)
	r, err := NewRunner(eng.deps, Config{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	voyage := &script.Voyage{Name: "essai", Steps: []script.Step{
		{Kind: "warp", Args: map[string]any{}},
	}}
	err = r.Run(context.Background(), voyage)
	if err == nil || !strings.Contains(err.Error(), `unknown step kind "warp"`) {
		t.Errorf("Run() error = %v, want unknown step kind", err)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	eng := newTestEngine(t, 13, false)
	r, err := NewRunner(eng.deps, Config{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	voyage := &script.Voyage{Name: "essai", Steps: []script.Step{
		{Kind: "travel", Args: map[string]any{"region": "Station Aurore"}},
	}}
	if err := r.Run(ctx, voyage); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if eng.deps.Actor.Region != "" {
		t.Errorf("actor region = %q, want untouched", eng.deps.Actor.Region)
	}
}

func TestRunStreamsJournalToChronicle(t *testing.T) {
	eng := newTestEngine(t, 17, false)

	store, err := chronicle.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	rec, err := chronicle.NewRecorder(ctx, store, 17, "Lyra")
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}
	eng.deps.Recorder = rec

	r, err := NewRunner(eng.deps, Config{})
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	voyage := &script.Voyage{Name: "essai", Steps: []script.Step{
		{Kind: "travel", Args: map[string]any{"region": "Station Aurore"}},
		{Kind: "gather", Args: map[string]any{"resource": "Prisme d'Astéroïde"}},
	}}
	if err := r.Run(ctx, voyage); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := rec.Finish(ctx); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	entries, err := store.Entries(ctx, rec.RunID())
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	journal := eng.deps.Actor.Journal()
	if len(entries) != len(journal) {
		t.Fatalf("chronicle holds %d entries, journal holds %d", len(entries), len(journal))
	}
	for i, entry := range entries {
		if entry.Seq != i {
			t.Errorf("entry %d Seq = %d, want %d", i, entry.Seq, i)
		}
		if entry.Message != journal[i].Message {
			t.Errorf("entry %d message = %q, want %q", i, entry.Message, journal[i].Message)
		}
		if entry.Level != journal[i].Level {
			t.Errorf("entry %d level = %q, want %q", i, entry.Level, journal[i].Level)
		}
	}
}
