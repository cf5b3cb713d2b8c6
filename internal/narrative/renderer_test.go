package narrative

import (
	"bytes"
	"strings"
	"testing"

	"github.com/louisbranch/odyssee/internal/actor"
)

func TestBannerAndScene(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Banner("L'Odyssée d'Essai")
	r.Scene("Réveil à quai", "Les amarres grincent.")
	r.Scene("Sans texte", "")

	out := buf.String()
	if !strings.Contains(out, "=== L'Odyssée d'Essai ===") {
		t.Errorf("output missing banner:\n%s", out)
	}
	if !strings.Contains(out, "--- Réveil à quai ---\nLes amarres grincent.\n") {
		t.Errorf("output missing scene with text:\n%s", out)
	}
	if !strings.Contains(out, "--- Sans texte ---\n") {
		t.Errorf("output missing bare scene:\n%s", out)
	}
}

func TestObjective(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Objective("Récoltez 2 Prismes d'Astéroïde.", true)
	r.Objective("", false)

	out := buf.String()
	if !strings.Contains(out, "Objectif : Récoltez 2 Prismes d'Astéroïde.") {
		t.Errorf("output missing active objective:\n%s", out)
	}
	if !strings.Contains(out, "Objectif : aucun. La quête est accomplie.") {
		t.Errorf("output missing completion notice:\n%s", out)
	}
}

func TestStatusSortsInventoryWithFrenchCollation(t *testing.T) {
	a := actor.New("Lyra", "pilote")
	a.Region = "Station Aurore"
	a.AddResource("Zinc Orbital", 2)
	a.AddResource("Étain Comprimé", 1)

	var buf bytes.Buffer
	NewRenderer(&buf).Status(a)

	out := buf.String()
	if !strings.Contains(out, "--- Lyra (pilote) ---") {
		t.Errorf("output missing header:\n%s", out)
	}
	if !strings.Contains(out, "Niveau 1 · Expérience 0 (100 avant le prochain palier)") {
		t.Errorf("output missing progression line:\n%s", out)
	}
	if !strings.Contains(out, "Intégrité 100/100 · Énergie 50/50 · Puissance 10") {
		t.Errorf("output missing pools line:\n%s", out)
	}
	if !strings.Contains(out, "Région : Station Aurore") {
		t.Errorf("output missing region line:\n%s", out)
	}
	// Byte order would put Zinc before Étain; French collation must not.
	if !strings.Contains(out, "Ressources : Étain Comprimé ×1, Zinc Orbital ×2") {
		t.Errorf("output missing collated resources line:\n%s", out)
	}
}

func TestStatusSkipsEmptyInventories(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Status(actor.New("Lyra", "pilote"))

	out := buf.String()
	for _, label := range []string{"Ressources :", "Objets :", "Objets de quête :"} {
		if strings.Contains(out, label) {
			t.Errorf("output lists empty inventory %q:\n%s", label, out)
		}
	}
}

func TestJournalTail(t *testing.T) {
	a := actor.New("Lyra", "pilote")
	a.Logf(actor.LevelInfo, "première")
	a.Logf(actor.LevelLoot, "deuxième")
	a.Logf(actor.LevelError, "troisième")

	var buf bytes.Buffer
	NewRenderer(&buf).JournalTail(a, 2)

	out := buf.String()
	if !strings.Contains(out, "--- Journal de bord ---") {
		t.Errorf("output missing journal header:\n%s", out)
	}
	if strings.Contains(out, "première") {
		t.Errorf("output includes entry beyond the tail:\n%s", out)
	}
	if !strings.Contains(out, "deuxième") || !strings.Contains(out, "troisième") {
		t.Errorf("output missing tail entries:\n%s", out)
	}

	buf.Reset()
	NewRenderer(&buf).JournalTail(a, 0)
	if got := strings.Count(buf.String(), "["); got != 3 {
		t.Errorf("full tail printed %d entries, want 3", got)
	}
}

func TestNilWriterDiscards(t *testing.T) {
	r := NewRenderer(nil)
	r.Banner("silence")
	r.Status(actor.New("Lyra", "pilote"))
	r.JournalTail(actor.New("Lyra", "pilote"), 5)
}
