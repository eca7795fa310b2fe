// internal/config/flags.go
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Parse loads the environment, then lets command line flags override it.
// The result is validated.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg, err := Load()
	if err != nil {
		return cfg, err
	}

	humans := make([]string, len(cfg.Humans))
	for i, id := range cfg.Humans {
		humans[i] = fmt.Sprint(id)
	}

	fs.IntVar(&cfg.Players, "players", cfg.Players, "number of players (2-8)")
	fs.IntVar(&cfg.HandSize, "hand", cfg.HandSize, "initial hand size (5-10)")
	humanList := fs.String("humans", strings.Join(humans, ","), `human seats, e.g. "1,3" or "all"`)
	fs.IntVar(&cfg.Simulations, "n", cfg.Simulations, "number of games to simulate")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "games per batch checkpoint")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent simulation workers")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "master seed, 0 seeds from the clock")
	fs.IntVar(&cfg.MaxExamples, "examples", cfg.MaxExamples, "one-turn games recorded per batch")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory for batch files")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, `serve live stats on this address, e.g. ":8080"`)
	fs.BoolVar(&cfg.Rules.MercyRule, "mercy", cfg.Rules.MercyRule, "enable the mercy rule")
	fs.IntVar(&cfg.Rules.MercyThreshold, "mercy-threshold", cfg.Rules.MercyThreshold, "hand size a player may hold before elimination")
	fs.IntVar(&cfg.Rules.MaxTurns, "max-turns", cfg.Rules.MaxTurns, "turn limit per game")
	rules := fs.String("rules", "", `JSON house rule overrides, e.g. '{"mercyRule":false}'`)
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.Humans, err = ParseHumans(*humanList, cfg.Players); err != nil {
		return cfg, fmt.Errorf("-humans: %w", err)
	}
	if err := cfg.ApplyRules(*rules); err != nil {
		return cfg, fmt.Errorf("-rules: %w", err)
	}
	if *verbose {
		cfg.LogLevel = logrus.DebugLevel
	}
	return cfg, cfg.Validate()
}
