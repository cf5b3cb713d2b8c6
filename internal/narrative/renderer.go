// Package narrative drives voyage storylines: it executes script steps
// against the engine, renders the outcomes to a console writer, and
// forwards each action's event to the quest machine in the order the
// actions happened.
package narrative

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/louisbranch/odyssee/internal/actor"
)

// Renderer formats game output for a console. A nil writer discards
// everything, so rendering stays optional in tests.
type Renderer struct {
	out io.Writer
	col *collate.Collator
}

// NewRenderer wraps the writer with French collation; nil means discard.
func NewRenderer(out io.Writer) *Renderer {
	return NewRendererFor(language.French, out)
}

// NewRendererFor wraps the writer, sorting inventory lines with the
// locale's collation rules.
func NewRendererFor(locale language.Tag, out io.Writer) *Renderer {
	if out == nil {
		out = io.Discard
	}
	return &Renderer{out: out, col: collate.New(locale)}
}

// Banner prints the voyage title frame.
func (r *Renderer) Banner(title string) {
	fmt.Fprintf(r.out, "\n=== %s ===\n", title)
}

// Scene prints a scene heading with its introduction text.
func (r *Renderer) Scene(title, text string) {
	fmt.Fprintf(r.out, "\n--- %s ---\n", title)
	if text != "" {
		fmt.Fprintf(r.out, "%s\n", text)
	}
}

// Line prints one formatted output line.
func (r *Renderer) Line(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Objective prints the active quest objective, or the completion notice.
func (r *Renderer) Objective(text string, active bool) {
	if !active {
		r.Line("Objectif : aucun. La quête est accomplie.")
		return
	}
	r.Line("Objectif : %s", text)
}

// Status prints the actor's stats and inventories.
func (r *Renderer) Status(a *actor.Actor) {
	fmt.Fprintf(r.out, "\n--- %s (%s) ---\n", a.Name, a.Archetype)
	fmt.Fprintf(r.out, "Niveau %d · Expérience %d (%d avant le prochain palier)\n", a.Level, a.Experience, a.ExperienceToNext())
	fmt.Fprintf(r.out, "Intégrité %d/%d · Énergie %d/%d · Puissance %d\n", a.Health, a.MaxHealth, a.Mana, a.MaxMana, a.Power)
	if a.Region != "" {
		fmt.Fprintf(r.out, "Région : %s\n", a.Region)
	}
	r.inventoryLine("Ressources", a.Resources)
	r.inventoryLine("Objets", a.Items)
	r.inventoryLine("Objets de quête", a.QuestItems)
}

// JournalTail prints the last entries of the actor's journal; last <= 0
// prints everything.
func (r *Renderer) JournalTail(a *actor.Actor, last int) {
	entries := a.Journal()
	if last > 0 && len(entries) > last {
		entries = entries[len(entries)-last:]
	}
	fmt.Fprintf(r.out, "\n--- Journal de bord ---\n")
	for _, entry := range entries {
		fmt.Fprintf(r.out, "[%s] %s\n", entry.Level, entry.Message)
	}
}

func (r *Renderer) inventoryLine(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	r.col.SortStrings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s ×%d", name, counts[name]))
	}
	fmt.Fprintf(r.out, "%s : %s\n", label, strings.Join(parts, ", "))
}
