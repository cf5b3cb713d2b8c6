// Package odyssee wires the engine into the CLI: it builds a seeded
// world, loads the storyline, and runs the voyage to completion.
package odyssee

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"

	"github.com/louisbranch/odyssee/internal/actor"
	"github.com/louisbranch/odyssee/internal/chronicle"
	"github.com/louisbranch/odyssee/internal/content"
	"github.com/louisbranch/odyssee/internal/narrative"
	"github.com/louisbranch/odyssee/internal/narrative/script"
	"github.com/louisbranch/odyssee/internal/quest"
	"github.com/louisbranch/odyssee/internal/random"
	"github.com/louisbranch/odyssee/internal/universe"
	"github.com/louisbranch/odyssee/internal/world"
)

// Config holds odyssee command configuration. A zero Seed asks the
// engine to draw one; the chosen seed is always printed so a run can be
// replayed.
type Config struct {
	Seed      int64  `env:"ODYSSEE_SEED"`
	Sectors   int    `env:"ODYSSEE_SECTORS"   envDefault:"5"`
	Script    string `env:"ODYSSEE_SCRIPT"`
	Chronicle string `env:"ODYSSEE_CHRONICLE"`
	Actor     string `env:"ODYSSEE_ACTOR"     envDefault:"Lyra Vance"`
	Archetype string `env:"ODYSSEE_ARCHETYPE" envDefault:"pilote"`
	Locale    string `env:"ODYSSEE_LOCALE"    envDefault:"fr"`
	Verbose   bool   `env:"ODYSSEE_VERBOSE"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "universe seed (0 draws a fresh one)")
	fs.IntVar(&cfg.Sectors, "sectors", cfg.Sectors, "generated sectors beyond the seeded regions")
	fs.StringVar(&cfg.Script, "script", cfg.Script, "path to a voyage lua file (empty runs the embedded storyline)")
	fs.StringVar(&cfg.Chronicle, "chronicle", cfg.Chronicle, "path to the sqlite run chronicle (empty disables recording)")
	fs.StringVar(&cfg.Actor, "actor", cfg.Actor, "player name")
	fs.StringVar(&cfg.Archetype, "archetype", cfg.Archetype, "player archetype")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "collation locale for rendered inventories")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the odyssee command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.Actor) == "" {
		return errors.New("actor name is required")
	}
	if cfg.Sectors < 0 {
		return errors.New("sector count must not be negative")
	}
	locale := language.French
	if cfg.Locale != "" {
		parsed, err := language.Parse(cfg.Locale)
		if err != nil {
			return fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
		}
		locale = parsed
	}

	seed := cfg.Seed
	if seed == 0 {
		drawn, err := random.NewSeed()
		if err != nil {
			return err
		}
		seed = drawn
	}

	catalog, err := content.Load()
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	w, err := world.New(catalog, universe.NewGenerator(catalog, rng), rng, cfg.Sectors)
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}

	q, err := quest.FromDefinition(catalog.Quest)
	if err != nil {
		return fmt.Errorf("load quest: %w", err)
	}

	voyage, err := loadVoyage(cfg.Script)
	if err != nil {
		return err
	}

	a := actor.New(strings.TrimSpace(cfg.Actor), cfg.Archetype)

	var recorder *chronicle.Recorder
	if cfg.Chronicle != "" {
		store, err := chronicle.Open(cfg.Chronicle)
		if err != nil {
			return fmt.Errorf("open chronicle: %w", err)
		}
		defer store.Close()

		recorder, err = chronicle.NewRecorder(ctx, store, seed, a.Name)
		if err != nil {
			return fmt.Errorf("begin chronicle run: %w", err)
		}
	}

	runner, err := narrative.NewRunner(narrative.Deps{
		World:    w,
		Actor:    a,
		Quest:    q,
		Catalog:  catalog,
		RNG:      rng,
		Renderer: narrative.NewRendererFor(locale, out),
		Recorder: recorder,
	}, narrative.Config{
		Logger:  log.New(errOut, "", 0),
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Graine de l'univers : %d\n", seed)
	if err := runner.Run(ctx, voyage); err != nil {
		return err
	}
	return recorder.Finish(ctx)
}

// loadVoyage reads the script file, falling back to the embedded
// storyline when no path is configured.
func loadVoyage(path string) (*script.Voyage, error) {
	if path == "" {
		voyage, err := script.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("load embedded voyage: %w", err)
		}
		return voyage, nil
	}
	voyage, err := script.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load voyage %s: %w", path, err)
	}
	return voyage, nil
}
