// Command roll runs an interactive power roll from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Taroc0/draw-steel/internal/journal"
	journalsqlite "github.com/Taroc0/draw-steel/internal/journal/sqlite"
	"github.com/Taroc0/draw-steel/internal/messaging"
	"github.com/Taroc0/draw-steel/internal/platform/config"
	"github.com/Taroc0/draw-steel/internal/platform/i18n/catalog"
	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
	"github.com/Taroc0/draw-steel/internal/rules/roll"
	"github.com/Taroc0/draw-steel/internal/skills"
	"github.com/Taroc0/draw-steel/internal/tui"
)

type envConfig struct {
	Locale      string `env:"DRAW_STEEL_LOCALE" envDefault:"en-US"`
	JournalPath string `env:"DRAW_STEEL_JOURNAL_PATH"`
	UserID      string `env:"DRAW_STEEL_USER_ID" envDefault:"local"`
}

func main() {
	log.SetPrefix("[ROLL] ")

	var cfg envConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("load configuration: %v", err)
	}

	rollType := flag.String("type", "test", "roll type: ability, resistance, or test")
	formula := flag.String("formula", "", "dice formula (default 2d10)")
	edges := flag.Int("edges", 0, "number of edges")
	banes := flag.Int("banes", 0, "number of banes")
	skillIDs := flag.String("skills", "", "comma-separated skill ids to offer on the prompt")
	flavor := flag.String("flavor", "", "flavor text for the roll")
	private := flag.Bool("private", false, "redact the roll in the chat message")
	flag.Parse()

	parsedType, err := powerroll.ParseType(*rollType)
	if err != nil {
		config.Exitf("invalid roll type %q", *rollType)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bundle := catalog.Default()
	if !bundle.HasLocale(cfg.Locale) {
		config.Exitf("locale %s is not available", cfg.Locale)
	}
	localizer := powerroll.LocalizerFunc(func(key string) string {
		return bundle.Localize(cfg.Locale, key)
	})

	var store journal.Store
	if cfg.JournalPath != "" {
		sqliteStore, err := journalsqlite.Open(cfg.JournalPath)
		if err != nil {
			config.Exitf("open roll journal: %v", err)
		}
		defer func() {
			if err := sqliteStore.Close(); err != nil {
				log.Printf("close roll journal: %v", err)
			}
		}()
		store = sqliteStore
	}

	poster := messaging.NewPoster(store, localizer, messaging.Options{Private: *private})

	request := powerroll.PromptRequest{
		Type:       parsedType,
		Evaluation: powerroll.EvaluationMessage,
		Formula:    *formula,
		Skills:     splitSkills(*skillIDs),
		Edges:      *edges,
		Banes:      *banes,
		Flavor:     *flavor,
		UserID:     cfg.UserID,
	}
	deps := powerroll.PromptDeps{
		Prompter:  &tui.Prompter{},
		Skills:    skills.NewResolver(nil, localizer),
		Poster:    poster,
		Localizer: localizer,
	}

	pr, err := powerroll.Prompt(ctx, request, deps)
	if err != nil {
		if errors.Is(err, powerroll.ErrPromptCanceled) {
			fmt.Println("roll canceled")
			return
		}
		config.Exitf("run roll: %v", err)
	}

	rendered, err := pr.Render(ctx, roll.RenderOptions{Private: *private})
	if err != nil {
		config.Exitf("render roll: %v", err)
	}

	fmt.Printf("%s = %s\n", rendered.Formula, rendered.Total)
	if rendered.Tier.Label != "" {
		fmt.Printf("%s\n", rendered.Tier.Label)
	}
	if rendered.Critical != "" {
		fmt.Printf("%s\n", localizer.Localize("powerroll.critical"))
	}
	if rendered.Tooltip != "" {
		fmt.Printf("%s\n", rendered.Tooltip)
	}
}

func splitSkills(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
