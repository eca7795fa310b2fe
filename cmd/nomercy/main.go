// cmd/nomercy/main.go plays one interactive game at the terminal.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jason-s-yu/nomercy/internal/config"
	"github.com/jason-s-yu/nomercy/internal/console"
	"github.com/jason-s-yu/nomercy/internal/game"
	_ "github.com/joho/godotenv/autoload"
	"github.com/peterh/liner"
)

func main() {
	fs := flag.NewFlagSet("nomercy", flag.ExitOnError)
	cfg, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(cfg.Humans) == 0 {
		cfg.Humans = []int{1}
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger := cfg.Logger()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	reporter := console.NewReporter(os.Stdout)
	humans := make(map[int]game.Actor, len(cfg.Humans))
	for _, id := range cfg.Humans {
		h := console.NewHuman(line, os.Stdout)
		h.OnAbort = func() {
			line.Close()
			console.C.Info.Println("Goodbye!")
			os.Exit(0)
		}
		humans[id] = h
	}

	logger.WithField("seed", cfg.Seed).Debug("Dealing a new game")
	g := game.NewGame(game.Options{
		Players:     cfg.Players,
		HandSize:    cfg.HandSize,
		Rules:       cfg.Rules,
		Humans:      humans,
		Rand:        rand.New(rand.NewSource(cfg.Seed)),
		BroadcastFn: reporter.Observe,
	})
	reporter.Attach(g)

	res := g.Run()
	reporter.RenderStandings(res)
}
