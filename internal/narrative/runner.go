package narrative

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/louisbranch/odyssee/internal/actor"
	"github.com/louisbranch/odyssee/internal/chronicle"
	"github.com/louisbranch/odyssee/internal/combat"
	"github.com/louisbranch/odyssee/internal/content"
	"github.com/louisbranch/odyssee/internal/crafting"
	apperrors "github.com/louisbranch/odyssee/internal/errors"
	"github.com/louisbranch/odyssee/internal/event"
	"github.com/louisbranch/odyssee/internal/narrative/script"
	"github.com/louisbranch/odyssee/internal/quest"
	"github.com/louisbranch/odyssee/internal/world"
)

// Deps are the engine pieces a voyage runs against. Quest and Recorder
// are optional; everything else is required.
type Deps struct {
	World    *world.World
	Actor    *actor.Actor
	Quest    *quest.Quest
	Catalog  *content.Catalog
	RNG      *rand.Rand
	Renderer *Renderer
	Recorder *chronicle.Recorder
}

// Config controls voyage execution.
type Config struct {
	Logger  *log.Logger
	Verbose bool
}

// Runner executes voyage steps in order, forwarding each action's event
// to the quest machine before the next step runs, and streaming fresh
// journal entries to the chronicle after every step.
type Runner struct {
	deps        Deps
	logger      *log.Logger
	verbose     bool
	ships       map[string]string
	journalMark int
}

// NewRunner validates dependencies and prepares a runner.
func NewRunner(deps Deps, cfg Config) (*Runner, error) {
	if deps.World == nil {
		return nil, errors.New("world is required")
	}
	if deps.Actor == nil {
		return nil, errors.New("actor is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if deps.RNG == nil {
		return nil, errors.New("random source is required")
	}
	if deps.Renderer == nil {
		deps.Renderer = NewRenderer(nil)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	return &Runner{
		deps:    deps,
		logger:  logger,
		verbose: cfg.Verbose,
		ships:   map[string]string{},
	}, nil
}

// Run walks the voyage's steps to completion. Recoverable engine
// failures render and continue; malformed steps, broken content, and
// chronicle errors abort the voyage.
func (r *Runner) Run(ctx context.Context, voyage *script.Voyage) error {
	if voyage == nil {
		return errors.New("voyage is required")
	}

	r.logf("voyage start: %s (%d steps)", voyage.Name, len(voyage.Steps))
	r.deps.Renderer.Banner(voyage.Name)

	for index, step := range voyage.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logf("step %d/%d: %s", index+1, len(voyage.Steps), step.Kind)
		if err := r.runStep(step); err != nil {
			// The failed step's journal lines still reach the chronicle.
			_ = r.flushJournal(ctx)
			return fmt.Errorf("step %d (%s): %w", index+1, step.Kind, err)
		}
		if err := r.flushJournal(ctx); err != nil {
			return fmt.Errorf("step %d (%s): %w", index+1, step.Kind, err)
		}
	}

	r.logf("voyage done: %s", voyage.Name)
	return nil
}

func (r *Runner) runStep(step script.Step) error {
	switch step.Kind {
	case "scene":
		r.deps.Renderer.Scene(optionalString(step.Args, "title", ""), optionalString(step.Args, "text", ""))
		return nil
	case "narrate":
		r.deps.Renderer.Line("%s", optionalString(step.Args, "text", ""))
		return nil
	case "travel":
		return r.runTravelStep(step)
	case "gather":
		return r.runGatherStep(step)
	case "auto_harvest":
		return r.runAutoHarvestStep(step)
	case "fight":
		return r.runFightStep(step)
	case "craft":
		return r.runCraftStep(step)
	case "activate":
		return r.runActivateStep(step)
	case "commission":
		return r.runCommissionStep(step)
	case "refit":
		return r.runRefitStep(step)
	case "move":
		return r.runMoveStep(step)
	case "status":
		r.deps.Renderer.Status(r.deps.Actor)
		return nil
	case "objective":
		r.runObjectiveStep()
		return nil
	case "journal":
		r.deps.Renderer.JournalTail(r.deps.Actor, optionalInt(step.Args, "last", 0))
		return nil
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runTravelStep(step script.Step) error {
	region := requiredString(step.Args, "region")
	if region == "" {
		return errors.New("travel step needs a region")
	}

	res := r.deps.World.Travel(r.deps.Actor, region)
	if !res.Success {
		r.deps.Renderer.Line("Région inconnue : %s.", region)
		return nil
	}
	r.deps.Renderer.Line("Cap sur %s.", region)
	if res.Description != "" {
		r.deps.Renderer.Line("%s", res.Description)
	}
	return nil
}

func (r *Runner) runGatherStep(step script.Step) error {
	resource := requiredString(step.Args, "resource")
	if resource == "" {
		return errors.New("gather step needs a resource")
	}

	res := r.deps.World.GatherResource(r.deps.Actor, resource)
	if !res.Success {
		r.deps.Renderer.Line("Récolte impossible ici.")
		return nil
	}
	total := r.deps.Actor.ResourceCount(resource)
	r.deps.Renderer.Line("+%d %s (total %d).", res.Amount, resource, total)
	r.notify(event.ResourceGathered(resource, total))
	return nil
}

func (r *Runner) runAutoHarvestStep(step script.Step) error {
	region := requiredString(step.Args, "region")
	if region == "" {
		return errors.New("auto_harvest step needs a region")
	}
	attempts := optionalInt(step.Args, "attempts", 3)

	res := r.deps.World.AutoHarvest(r.deps.Actor, region, attempts)
	if res.Reason == world.ReasonUnknownRegion {
		r.deps.Renderer.Line("Région inconnue : %s.", region)
		return nil
	}
	if !res.Harvested {
		r.deps.Renderer.Line("La moisson n'a rien donné.")
		return nil
	}
	r.deps.Renderer.Line("Moisson (%d tentatives) : %s.", res.Attempts, strings.Join(res.Summary, ", "))

	names := make([]string, 0, len(res.Totals))
	for name := range res.Totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if res.Totals[name] <= 0 {
			continue
		}
		r.notify(event.ResourceGathered(name, r.deps.Actor.ResourceCount(name)))
	}
	return nil
}

func (r *Runner) runFightStep(step script.Step) error {
	enemy := requiredString(step.Args, "enemy")
	if enemy == "" {
		return errors.New("fight step needs an enemy")
	}

	res := combat.Fight(r.deps.RNG, r.deps.Actor, r.deps.World, enemy)
	if res.Reason != "" {
		r.deps.Renderer.Line("Aucun adversaire de ce nom ici.")
		return nil
	}
	if res.Victory {
		r.deps.Renderer.Line("Victoire contre %s en %d tours.", enemy, res.Rounds)
		drops := make([]string, 0, len(res.Drops))
		for name := range res.Drops {
			drops = append(drops, name)
		}
		sort.Strings(drops)
		for _, name := range drops {
			r.deps.Renderer.Line("Butin : %d × %s.", res.Drops[name], name)
		}
	} else {
		r.deps.Renderer.Line("Défaite contre %s. Repli d'urgence.", enemy)
	}
	r.notify(event.EnemyFought(enemy, res.Victory))
	return nil
}

func (r *Runner) runCraftStep(step script.Step) error {
	item := requiredString(step.Args, "item")
	if item == "" {
		return errors.New("craft step needs an item")
	}
	required := optionalBool(step.Args, "require", false)

	res := crafting.Craft(r.deps.Actor, r.deps.Catalog.Recipes, item)
	if !res.Success {
		switch res.Reason {
		case crafting.ReasonUnknownRecipe:
			r.deps.Renderer.Line("Schéma inconnu : %s.", item)
			if required {
				return apperrors.Newf(apperrors.CodeUnknownReference, "required craft %q has no recipe", item)
			}
		default:
			r.deps.Renderer.Line("Ressources insuffisantes pour %s.", item)
			if required {
				return apperrors.Newf(apperrors.CodeInsufficientResources, "required craft %q cannot be paid", item)
			}
		}
		r.notify(event.ItemCrafted(item, false))
		return nil
	}

	r.deps.Renderer.Line("Fabriqué : %s (+%d XP).", item, res.Experience)
	r.notify(event.ItemCrafted(item, true))
	return nil
}

func (r *Runner) runActivateStep(step script.Step) error {
	sanctuary := requiredString(step.Args, "sanctuary")
	if sanctuary == "" {
		return errors.New("activate step needs a sanctuary")
	}

	res := r.deps.World.ActivateSanctuary(r.deps.Actor, sanctuary)
	if !res.Success {
		r.deps.Renderer.Line("Rien à activer ici.")
	} else {
		r.deps.Renderer.Line("%s s'illumine.", sanctuary)
	}
	r.notify(event.SanctuaryActivated(sanctuary, res.Success))
	return nil
}

func (r *Runner) runCommissionStep(step script.Step) error {
	spawn := optionalString(step.Args, "spawn", r.deps.Actor.Region)

	v, err := r.deps.World.CommissionShip(spawn)
	if err != nil {
		return err
	}
	if handle := optionalString(step.Args, "as", ""); handle != "" {
		r.ships[handle] = v.ID
	}

	r.deps.Actor.Logf(actor.LevelShip, "Le %s « %s » (%s) rejoint la flotte.", v.Class, v.Codename, v.ID)
	r.deps.Renderer.Line("Mise en service : %s « %s » (%s), %s.", v.Class, v.Codename, v.ID, v.Role)
	r.deps.Renderer.Line("Vitesse %d · Soute %d · Blindage %d", v.Derived.Speed, v.Derived.Cargo, v.Derived.Defense)
	return nil
}

func (r *Runner) runRefitStep(step script.Step) error {
	slot := requiredString(step.Args, "slot")
	if slot == "" {
		return errors.New("refit step needs a slot")
	}
	id := r.resolveShip(requiredString(step.Args, "ship"))

	res := r.deps.World.RefitShipByID(id, slot)
	if !res.Success {
		switch res.Reason {
		case world.ReasonUnknownSlot:
			r.deps.Actor.Logf(actor.LevelError, "Refonte impossible : emplacement inconnu %s.", slot)
			r.deps.Renderer.Line("Emplacement inconnu : %s.", slot)
		default:
			r.deps.Actor.Logf(actor.LevelError, "Refonte impossible : vaisseau introuvable.")
			r.deps.Renderer.Line("Vaisseau introuvable.")
		}
		return nil
	}

	r.deps.Actor.Logf(actor.LevelShip, "Refonte de %s : %s en emplacement %s.", res.ShipID, res.Module.Name, res.Slot)
	if res.Replaced != "" {
		r.deps.Renderer.Line("Refonte : %s installé (remplace %s).", res.Module.Name, res.Replaced)
	} else {
		r.deps.Renderer.Line("Refonte : %s installé.", res.Module.Name)
	}
	return nil
}

func (r *Runner) runMoveStep(step script.Step) error {
	destination := requiredString(step.Args, "to")
	if destination == "" {
		return errors.New("move step needs a destination")
	}
	id := r.resolveShip(requiredString(step.Args, "ship"))

	res := r.deps.World.MoveShipByID(id, destination)
	if !res.Success {
		switch res.Reason {
		case world.ReasonUnknownRegion:
			r.deps.Actor.Logf(actor.LevelError, "Transit impossible : secteur inconnu %s.", destination)
			r.deps.Renderer.Line("Secteur inconnu : %s.", destination)
		default:
			r.deps.Actor.Logf(actor.LevelError, "Transit impossible : vaisseau introuvable.")
			r.deps.Renderer.Line("Vaisseau introuvable.")
		}
		return nil
	}

	if res.Distance == 0 {
		r.deps.Renderer.Line("%s est déjà à %s.", res.ShipID, res.Destination)
		return nil
	}
	r.deps.Actor.Logf(actor.LevelShip, "%s rejoint %s (distance %d, temps %d).", res.ShipID, res.Destination, res.Distance, res.TravelTime)
	r.deps.Renderer.Line("Transit de %s : %s vers %s (distance %d, temps %d, vitesse %d).",
		res.ShipID, res.Origin, res.Destination, res.Distance, res.TravelTime, res.Speed)
	return nil
}

func (r *Runner) runObjectiveStep() {
	if r.deps.Quest == nil {
		return
	}
	objective, active := r.deps.Quest.CurrentObjective()
	r.deps.Renderer.Objective(objective, active)
}

// notify forwards an event to the quest machine and renders any advance.
func (r *Runner) notify(ev event.Event) {
	if r.deps.Quest == nil {
		return
	}
	res := r.deps.Quest.Notify(r.deps.Actor, ev)
	if !res.Advanced {
		return
	}
	if res.Narration != "" {
		r.deps.Renderer.Line("%s", res.Narration)
	}
	if res.Completed {
		r.deps.Renderer.Line("Quête accomplie : %s !", r.deps.Quest.Name)
		return
	}
	if res.NextObjective != "" {
		r.deps.Renderer.Line("Nouvel objectif : %s", res.NextObjective)
	}
}

// flushJournal streams journal entries written since the last flush.
func (r *Runner) flushJournal(ctx context.Context) error {
	entries := r.deps.Actor.Journal()
	if len(entries) <= r.journalMark {
		return nil
	}
	if err := r.deps.Recorder.Record(ctx, entries[r.journalMark:]); err != nil {
		return fmt.Errorf("record journal: %w", err)
	}
	r.journalMark = len(entries)
	return nil
}

// resolveShip maps a script handle to a vessel identifier, passing raw
// identifiers through untouched.
func (r *Runner) resolveShip(handle string) string {
	if id, ok := r.ships[handle]; ok {
		return id
	}
	return handle
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

func requiredString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return ""
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return fallback
}

func optionalInt(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	switch typed := value.(type) {
	case int:
		return typed
	case float64:
		return int(typed)
	default:
		return fallback
	}
}

func optionalBool(args map[string]any, key string, fallback bool) bool {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	typed, ok := value.(bool)
	if !ok {
		return fallback
	}
	return typed
}
