// Package quest tracks an ordered sequence of typed objectives driven by
// domain events.
//
// The machine only ever evaluates its current step. Events matching a
// future step are ignored until the cursor reaches it, so progress cannot
// skip ahead or earn partial credit. The cursor is 1-based and only moves
// forward; once it passes the last step the quest is complete and the
// reward has been granted, exactly once.
package quest

import (
	"strings"

	"github.com/louisbranch/odyssee/internal/actor"
	"github.com/louisbranch/odyssee/internal/content"
	apperrors "github.com/louisbranch/odyssee/internal/errors"
	"github.com/louisbranch/odyssee/internal/event"
)

// StepKind tags the objective variant a step carries.
type StepKind int

const (
	StepGather StepKind = iota
	StepDefeat
	StepCraft
	StepActivate
)

func (k StepKind) String() string {
	switch k {
	case StepGather:
		return "gather"
	case StepDefeat:
		return "defeat"
	case StepCraft:
		return "craft"
	case StepActivate:
		return "activate"
	}
	return "unknown"
}

// Step is one quest objective. Only the fields matching Kind are set.
type Step struct {
	Kind      StepKind
	Resource  string
	Amount    int
	Enemy     string
	Item      string
	Sanctuary string
	Objective string
	Narration string
}

// Reward is granted once, when the final step completes.
type Reward struct {
	Experience int
	Items      []string
}

// NotifyResult reports what a notification did to the machine.
type NotifyResult struct {
	Advanced      bool
	Completed     bool
	RewardGranted bool
	Narration     string
	NextObjective string
}

// Quest is the state machine over an ordered step list.
type Quest struct {
	Name      string
	steps     []Step
	cursor    int
	completed bool
	reward    Reward
}

// New builds a quest positioned on its first step.
func New(name string, steps []Step, reward Reward) *Quest {
	return &Quest{Name: name, steps: steps, cursor: 1, reward: reward}
}

// FromDefinition converts a catalog quest into a runnable machine,
// rejecting malformed steps as content errors.
func FromDefinition(def content.QuestDefinition) (*Quest, error) {
	steps := make([]Step, 0, len(def.Steps))
	for i, raw := range def.Steps {
		step := Step{
			Resource:  raw.Resource,
			Amount:    raw.Amount,
			Enemy:     raw.Enemy,
			Item:      raw.Item,
			Sanctuary: raw.Sanctuary,
			Objective: raw.Objective,
			Narration: raw.Narration,
		}
		switch raw.Kind {
		case "gather":
			step.Kind = StepGather
			if raw.Resource == "" || raw.Amount < 1 {
				return nil, apperrors.Newf(apperrors.CodeInvariantViolation, "quest %q step %d: gather needs a resource and a positive amount", def.Name, i+1)
			}
		case "defeat":
			step.Kind = StepDefeat
			if raw.Enemy == "" {
				return nil, apperrors.Newf(apperrors.CodeInvariantViolation, "quest %q step %d: defeat needs an enemy", def.Name, i+1)
			}
		case "craft":
			step.Kind = StepCraft
			if raw.Item == "" {
				return nil, apperrors.Newf(apperrors.CodeInvariantViolation, "quest %q step %d: craft needs an item", def.Name, i+1)
			}
		case "activate":
			step.Kind = StepActivate
			if raw.Sanctuary == "" {
				return nil, apperrors.Newf(apperrors.CodeInvariantViolation, "quest %q step %d: activate needs a sanctuary", def.Name, i+1)
			}
		default:
			return nil, apperrors.Newf(apperrors.CodeInvariantViolation, "quest %q step %d: unknown kind %q", def.Name, i+1, raw.Kind)
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, apperrors.Newf(apperrors.CodeInvariantViolation, "quest %q has no steps", def.Name)
	}
	return New(def.Name, steps, Reward{Experience: def.Reward.Experience, Items: def.Reward.Items}), nil
}

// Cursor returns the 1-based position of the active step. It reads
// len(steps)+1 once the quest is complete.
func (q *Quest) Cursor() int { return q.cursor }

// Completed reports whether the final step has been passed.
func (q *Quest) Completed() bool { return q.completed }

// StepCount returns the number of steps.
func (q *Quest) StepCount() int { return len(q.steps) }

// CurrentObjective returns the active step's objective text, or false
// once the quest is complete.
func (q *Quest) CurrentObjective() (string, bool) {
	if q.completed {
		return "", false
	}
	return q.steps[q.cursor-1].Objective, true
}

// Notify evaluates the event against the current step only. A match
// advances the cursor; completing the final step grants the reward. A
// completed quest ignores everything.
func (q *Quest) Notify(a *actor.Actor, ev event.Event) NotifyResult {
	if q.completed {
		return NotifyResult{Completed: true}
	}

	step := q.steps[q.cursor-1]
	if !matches(step, ev) {
		return NotifyResult{}
	}

	q.cursor++
	result := NotifyResult{Advanced: true, Narration: step.Narration}
	if step.Narration != "" {
		a.Logf(actor.LevelQuest, "%s", step.Narration)
	}

	if q.cursor > len(q.steps) {
		q.completed = true
		result.Completed = true
		result.RewardGranted = true
		q.grantReward(a)
		return result
	}

	result.NextObjective = q.steps[q.cursor-1].Objective
	return result
}

func (q *Quest) grantReward(a *actor.Actor) {
	a.Logf(actor.LevelQuest, "Quête accomplie : %s.", q.Name)
	for _, item := range q.reward.Items {
		a.AddQuestItem(item)
	}
	if len(q.reward.Items) > 0 {
		a.Logf(actor.LevelQuest, "Vous recevez : %s.", strings.Join(q.reward.Items, ", "))
	}
	a.GainExperience(q.reward.Experience)
}

// matches compares an event against one step, exhaustively per kind.
func matches(step Step, ev event.Event) bool {
	switch step.Kind {
	case StepGather:
		return ev.Type == event.TypeResourceGathered && ev.Resource == step.Resource && ev.TotalAmount >= step.Amount
	case StepDefeat:
		return ev.Type == event.TypeEnemyFought && ev.Enemy == step.Enemy && ev.Victory
	case StepCraft:
		return ev.Type == event.TypeItemCrafted && ev.Item == step.Item && ev.Success
	case StepActivate:
		return ev.Type == event.TypeSanctuaryActivated && ev.Sanctuary == step.Sanctuary && ev.Success
	}
	return false
}
