// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/jason-s-yu/nomercy/internal/game"
	"github.com/sirupsen/logrus"
)

const (
	MinPlayers  = 2
	MaxPlayers  = 8
	MinHandSize = 5
	MaxHandSize = 10
)

// Config is the settings shared by the interactive game and the simulator.
type Config struct {
	Players     int
	HandSize    int
	Humans      []int // seat ids controlled by a person, ascending
	Rules       game.HouseRules
	Simulations int
	BatchSize   int
	Workers     int
	Seed        int64
	MaxExamples int
	DataDir     string
	Listen      string // address of the live stats server; empty disables it
	LogLevel    logrus.Level
}

// Load reads NOMERCY_* variables, falling back to defaults for anything unset.
// Values that fail to parse are reported as errors rather than silently defaulted.
func Load() (Config, error) {
	cfg := Config{
		Players:     getEnvInt("NOMERCY_PLAYERS", 6),
		HandSize:    getEnvInt("NOMERCY_HAND_SIZE", 7),
		Rules:       game.DefaultHouseRules(),
		Simulations: getEnvInt("NOMERCY_SIMULATIONS", 100000),
		BatchSize:   getEnvInt("NOMERCY_BATCH_SIZE", 10000),
		Workers:     getEnvInt("NOMERCY_WORKERS", runtime.NumCPU()),
		Seed:        int64(getEnvInt("NOMERCY_SEED", 0)),
		MaxExamples: getEnvInt("NOMERCY_MAX_EXAMPLES", 5),
		DataDir:     getEnv("NOMERCY_DATA_DIR", "simulation_data"),
		Listen:      os.Getenv("NOMERCY_LISTEN"),
		LogLevel:    logrus.InfoLevel,
	}
	cfg.Rules.MercyRule = getEnvBool("NOMERCY_MERCY_RULE", cfg.Rules.MercyRule)
	cfg.Rules.MercyThreshold = getEnvInt("NOMERCY_MERCY_THRESHOLD", cfg.Rules.MercyThreshold)
	cfg.Rules.MaxTurns = getEnvInt("NOMERCY_MAX_TURNS", cfg.Rules.MaxTurns)

	for _, key := range []string{
		"NOMERCY_PLAYERS", "NOMERCY_HAND_SIZE", "NOMERCY_SIMULATIONS", "NOMERCY_BATCH_SIZE",
		"NOMERCY_WORKERS", "NOMERCY_SEED", "NOMERCY_MAX_EXAMPLES",
		"NOMERCY_MERCY_THRESHOLD", "NOMERCY_MAX_TURNS",
	} {
		if v := os.Getenv(key); v != "" {
			if _, err := strconv.Atoi(v); err != nil {
				return cfg, fmt.Errorf("%s: %q is not an integer", key, v)
			}
		}
	}
	if v := os.Getenv("NOMERCY_MERCY_RULE"); v != "" {
		if _, err := strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("NOMERCY_MERCY_RULE: %q is not a boolean", v)
		}
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := logrus.ParseLevel(lvl)
		if err != nil {
			return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = parsed
	}

	humans, err := ParseHumans(os.Getenv("NOMERCY_HUMANS"), cfg.Players)
	if err != nil {
		return cfg, fmt.Errorf("NOMERCY_HUMANS: %w", err)
	}
	cfg.Humans = humans
	return cfg, nil
}

// Validate checks the ranges both binaries rely on.
func (c Config) Validate() error {
	if c.Players < MinPlayers || c.Players > MaxPlayers {
		return fmt.Errorf("players must be between %d and %d, got %d", MinPlayers, MaxPlayers, c.Players)
	}
	if c.HandSize < MinHandSize || c.HandSize > MaxHandSize {
		return fmt.Errorf("hand size must be between %d and %d, got %d", MinHandSize, MaxHandSize, c.HandSize)
	}
	if c.Simulations < 1 {
		return fmt.Errorf("simulations must be at least 1, got %d", c.Simulations)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.Rules.MaxTurns < 1 {
		return fmt.Errorf("max turns must be at least 1, got %d", c.Rules.MaxTurns)
	}
	if c.Rules.MercyThreshold < 1 {
		return fmt.Errorf("mercy threshold must be at least 1, got %d", c.Rules.MercyThreshold)
	}
	if c.MaxExamples < 0 {
		return fmt.Errorf("max examples cannot be negative, got %d", c.MaxExamples)
	}
	for _, id := range c.Humans {
		if id < 1 || id > c.Players {
			return fmt.Errorf("human seat %d is outside 1..%d", id, c.Players)
		}
	}
	return nil
}

// ParseHumans turns "", "all" or a comma separated seat list like "1,3" into
// sorted, de-duplicated seat ids.
func ParseHumans(s string, players int) ([]int, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none":
		return nil, nil
	case "all":
		out := make([]int, players)
		for i := range out {
			out[i] = i + 1
		}
		return out, nil
	}

	seen := make(map[int]bool)
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid seat %q", part)
		}
		if id < 1 || id > players {
			return nil, fmt.Errorf("seat %d is outside 1..%d", id, players)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out, nil
}

// ApplyRules merges a JSON object such as {"mercyRule":false} into the rules.
func (c *Config) ApplyRules(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return fmt.Errorf("rules must be a JSON object: %w", err)
	}
	return c.Rules.Update(m)
}

// Logger builds a text logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
