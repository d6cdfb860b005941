// Package mcpserver exposes the power roll engine as MCP tools over a
// stdio transport.
package mcpserver

import (
	"context"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Taroc0/draw-steel/internal/messaging"
	"github.com/Taroc0/draw-steel/internal/platform/i18n/catalog"
	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
	"github.com/Taroc0/draw-steel/internal/skills"
)

const (
	serverName    = "draw-steel"
	serverVersion = "0.1.0"
)

// Config configures the MCP server.
type Config struct {
	// Locale selects the display locale for labels. Defaults to the
	// catalog's base locale.
	Locale string
	// Poster posts rolls to chat and the journal when tools ask for it.
	Poster *messaging.Poster
	// Skills overrides the embedded skill registry.
	Skills *skills.Registry
}

// Server wires the tool handlers into an MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New builds the MCP server and registers every tool.
func New(cfg Config) (*Server, error) {
	locale := cfg.Locale
	if locale == "" {
		locale = catalog.BaseLocale
	}
	bundle := catalog.Default()
	if !bundle.HasLocale(locale) {
		return nil, fmt.Errorf("locale %s is not available", locale)
	}
	localizer := powerroll.LocalizerFunc(func(key string) string {
		return bundle.Localize(locale, key)
	})

	deps := Deps{
		Poster:    cfg.Poster,
		Skills:    cfg.Skills,
		Localizer: localizer,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, PowerRollTool(), PowerRollHandler(deps))
	mcp.AddTool(mcpServer, PowerRollOutcomeTool(), PowerRollOutcomeHandler(deps))
	mcp.AddTool(mcpServer, RollDiceTool(), RollDiceHandler(deps))
	mcp.AddTool(mcpServer, RulesVersionTool(), RulesVersionHandler())
	mcp.AddTool(mcpServer, ListSkillsTool(), ListSkillsHandler(deps))

	return &Server{mcpServer: mcpServer}, nil
}

// Run serves MCP over stdio until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	log.Printf("%s mcp server listening on stdio", serverName)
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
