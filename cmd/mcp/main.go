// Command mcp starts the power roll MCP server on stdio.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Taroc0/draw-steel/internal/journal"
	journalsqlite "github.com/Taroc0/draw-steel/internal/journal/sqlite"
	"github.com/Taroc0/draw-steel/internal/mcpserver"
	"github.com/Taroc0/draw-steel/internal/messaging"
	"github.com/Taroc0/draw-steel/internal/platform/config"
	"github.com/Taroc0/draw-steel/internal/platform/i18n/catalog"
	"github.com/Taroc0/draw-steel/internal/platform/otel"
	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
)

type envConfig struct {
	Locale      string `env:"DRAW_STEEL_LOCALE" envDefault:"en-US"`
	JournalPath string `env:"DRAW_STEEL_JOURNAL_PATH"`
}

func main() {
	log.SetPrefix("[MCP] ")

	var cfg envConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Setup(ctx, "draw-steel-mcp")
	if err != nil {
		config.Exitf("set up tracing: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("shut down tracing: %v", err)
		}
	}()

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

	bundle := catalog.Default()
	localizer := powerroll.LocalizerFunc(func(key string) string {
		return bundle.Localize(cfg.Locale, key)
	})
	poster := messaging.NewPoster(store, localizer, messaging.Options{})

	server, err := mcpserver.New(mcpserver.Config{
		Locale: cfg.Locale,
		Poster: poster,
	})
	if err != nil {
		config.Exitf("build mcp server: %v", err)
	}

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		config.Exitf("serve mcp: %v", err)
	}
}
