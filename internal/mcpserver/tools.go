package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Taroc0/draw-steel/internal/messaging"
	"github.com/Taroc0/draw-steel/internal/rules/dice"
	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
	"github.com/Taroc0/draw-steel/internal/rules/roll"
	"github.com/Taroc0/draw-steel/internal/skills"
)

const tracerName = "draw-steel/mcpserver"

// RulesVersion is the semantic version of the implemented ruleset.
const RulesVersion = "1.0.0"

// PowerRollInput represents the MCP tool input for a power roll.
type PowerRollInput struct {
	Type    string         `json:"type,omitempty" jsonschema:"roll type: ability, resistance, or test (default test)"`
	Edges   int            `json:"edges,omitempty" jsonschema:"number of edges, clamped to 0..2"`
	Banes   int            `json:"banes,omitempty" jsonschema:"number of banes, clamped to 0..2"`
	Formula string         `json:"formula,omitempty" jsonschema:"dice formula (default 2d10)"`
	Data    map[string]int `json:"data,omitempty" jsonschema:"named values for @references in the formula"`
	Flavor  string         `json:"flavor,omitempty" jsonschema:"flavor text for the roll"`
	UserID  string         `json:"user_id,omitempty" jsonschema:"owning user identifier"`
	Seed    *int64         `json:"seed,omitempty" jsonschema:"optional seed for deterministic rolls"`
	Post    bool           `json:"post,omitempty" jsonschema:"post the roll to chat and the journal"`
}

// PowerRollResult represents the MCP tool output for a power roll.
type PowerRollResult struct {
	Formula  string `json:"formula" jsonschema:"canonical formula including injected modifiers"`
	Total    int    `json:"total" jsonschema:"evaluated total"`
	Tier     string `json:"tier" jsonschema:"outcome tier name (tier1..tier3)"`
	NetBoon  int    `json:"net_boon" jsonschema:"edges minus banes after clamping"`
	Critical *bool  `json:"critical,omitempty" jsonschema:"critical flag, ability rolls only"`
	Nat20    *bool  `json:"nat20,omitempty" jsonschema:"natural 20 flag, 2d10 rolls only"`
	Tooltip  string `json:"tooltip" jsonschema:"per-term audit of the dice"`
}

// PowerRollOutcomeInput represents the MCP tool input for evaluating an
// outcome from known dice.
type PowerRollOutcomeInput struct {
	Dice              []int  `json:"dice" jsonschema:"the two d10 results"`
	Type              string `json:"type,omitempty" jsonschema:"roll type: ability, resistance, or test (default test)"`
	Edges             int    `json:"edges,omitempty" jsonschema:"number of edges, clamped to 0..2"`
	Banes             int    `json:"banes,omitempty" jsonschema:"number of banes, clamped to 0..2"`
	Modifier          int    `json:"modifier,omitempty" jsonschema:"static modifier added to the dice"`
	CriticalThreshold int    `json:"critical_threshold,omitempty" jsonschema:"override for the critical threshold (default 19)"`
}

// PowerRollOutcomeResult represents the MCP tool output for deterministic
// outcomes.
type PowerRollOutcomeResult = PowerRollResult

// RollDiceInput represents the MCP tool input for rolling an arbitrary
// formula.
type RollDiceInput struct {
	Formula string         `json:"formula" jsonschema:"dice formula, e.g. 3d6 + 2"`
	Data    map[string]int `json:"data,omitempty" jsonschema:"named values for @references in the formula"`
	Seed    *int64         `json:"seed,omitempty" jsonschema:"optional seed for deterministic rolls"`
}

// RollDiceResult represents the MCP tool output for rolling a formula.
type RollDiceResult struct {
	Formula string `json:"formula" jsonschema:"canonical formula"`
	Total   int    `json:"total" jsonschema:"evaluated total"`
	Tooltip string `json:"tooltip" jsonschema:"per-term audit of the dice"`
}

// RulesVersionInput represents the MCP tool input for ruleset metadata.
type RulesVersionInput struct{}

// RulesVersionResult represents the MCP tool output for ruleset metadata.
type RulesVersionResult struct {
	System       string   `json:"system" jsonschema:"game system name"`
	RulesVersion string   `json:"rules_version" jsonschema:"semantic ruleset version"`
	DiceModel    string   `json:"dice_model" jsonschema:"dice model description"`
	TierRule     string   `json:"tier_rule" jsonschema:"tier threshold rule"`
	CritRule     string   `json:"crit_rule" jsonschema:"critical rule"`
	Tiers        []string `json:"tiers" jsonschema:"supported outcome tiers"`
}

// ListSkillsInput represents the MCP tool input for listing skills.
type ListSkillsInput struct {
	Group string `json:"group,omitempty" jsonschema:"filter by skill group"`
}

// SkillEntry represents one skill in the list output.
type SkillEntry struct {
	ID    string `json:"id" jsonschema:"skill identifier"`
	Label string `json:"label" jsonschema:"localized skill label"`
	Group string `json:"group" jsonschema:"skill group"`
}

// ListSkillsResult represents the MCP tool output for listing skills.
type ListSkillsResult struct {
	Skills []SkillEntry `json:"skills" jsonschema:"registered skills"`
}

// PowerRollTool defines the MCP tool schema for power rolls.
func PowerRollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "power_roll",
		Description: "Rolls 2d10 with edges and banes and reports the outcome tier",
	}
}

// PowerRollOutcomeTool defines the MCP tool schema for deterministic
// outcomes.
func PowerRollOutcomeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "power_roll_outcome",
		Description: "Evaluates a power roll outcome from known dice",
	}
}

// RollDiceTool defines the MCP tool schema for rolling formulas.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls an arbitrary dice formula",
	}
}

// RulesVersionTool defines the MCP tool schema for ruleset metadata.
func RulesVersionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "rules_version",
		Description: "Describes the power roll ruleset semantics",
	}
}

// ListSkillsTool defines the MCP tool schema for listing skills.
func ListSkillsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_skills",
		Description: "Lists the registered skills",
	}
}

// Deps are the collaborators the tool handlers need. Poster and Skills are
// optional.
type Deps struct {
	Poster    *messaging.Poster
	Skills    *skills.Registry
	Localizer powerroll.Localizer
	SeedFunc  roll.SeedFunc
}

func startSpan(ctx context.Context, tool string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, tool,
		trace.WithAttributes(attribute.String("mcp.tool", tool)),
	)
}

func (d Deps) seedFunc(seed *int64) roll.SeedFunc {
	if seed != nil {
		value := *seed
		return func() (int64, error) { return value, nil }
	}
	return d.SeedFunc
}

// PowerRollHandler executes a power roll.
func PowerRollHandler(deps Deps) mcp.ToolHandlerFor[PowerRollInput, PowerRollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PowerRollInput) (*mcp.CallToolResult, PowerRollResult, error) {
		ctx, span := startSpan(ctx, "power_roll")
		defer span.End()

		rollType := powerroll.TypeUnspecified
		if input.Type != "" {
			parsed, err := powerroll.ParseType(input.Type)
			if err != nil {
				return nil, PowerRollResult{}, err
			}
			rollType = parsed
		}

		pr, err := powerroll.New(input.Formula, input.Data, powerroll.Options{
			Type:      rollType,
			Edges:     input.Edges,
			Banes:     input.Banes,
			Flavor:    input.Flavor,
			UserID:    input.UserID,
			Localizer: deps.Localizer,
			SeedFunc:  deps.seedFunc(input.Seed),
		})
		if err != nil {
			return nil, PowerRollResult{}, err
		}

		if _, err := pr.Evaluate(ctx); err != nil {
			return nil, PowerRollResult{}, err
		}

		if input.Post && deps.Poster != nil {
			if err := deps.Poster.PostRoll(ctx, pr); err != nil {
				return nil, PowerRollResult{}, fmt.Errorf("post roll: %w", err)
			}
		}

		result := resultFromRoll(pr)
		span.SetAttributes(
			attribute.Int("roll.total", result.Total),
			attribute.String("roll.tier", result.Tier),
		)
		return nil, result, nil
	}
}

// PowerRollOutcomeHandler evaluates an outcome from known dice.
func PowerRollOutcomeHandler(deps Deps) mcp.ToolHandlerFor[PowerRollOutcomeInput, PowerRollOutcomeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PowerRollOutcomeInput) (*mcp.CallToolResult, PowerRollOutcomeResult, error) {
		ctx, span := startSpan(ctx, "power_roll_outcome")
		defer span.End()

		if len(input.Dice) != 2 {
			return nil, PowerRollOutcomeResult{}, fmt.Errorf("exactly two d10 results are required, got %d", len(input.Dice))
		}
		for _, value := range input.Dice {
			if value < 1 || value > 10 {
				return nil, PowerRollOutcomeResult{}, fmt.Errorf("die result %d is outside 1..10", value)
			}
		}

		rollType := powerroll.TypeUnspecified
		if input.Type != "" {
			parsed, err := powerroll.ParseType(input.Type)
			if err != nil {
				return nil, PowerRollOutcomeResult{}, err
			}
			rollType = parsed
		}

		formula := powerroll.DefaultFormula
		data := map[string]int(nil)
		if input.Modifier != 0 {
			formula = fmt.Sprintf("%s + @modifier", powerroll.DefaultFormula)
			data = map[string]int{"modifier": input.Modifier}
		}

		pr, err := powerroll.New(formula, data, powerroll.Options{
			Type:              rollType,
			Edges:             input.Edges,
			Banes:             input.Banes,
			CriticalThreshold: input.CriticalThreshold,
			Localizer:         deps.Localizer,
			SeedFunc:          func() (int64, error) { return 0, nil },
			DieInput: func(ctx context.Context, die *dice.DieTerm) ([]int, error) {
				return input.Dice, nil
			},
		})
		if err != nil {
			return nil, PowerRollOutcomeResult{}, err
		}

		if _, err := pr.Evaluate(ctx); err != nil {
			return nil, PowerRollOutcomeResult{}, err
		}
		return nil, resultFromRoll(pr), nil
	}
}

// RollDiceHandler rolls an arbitrary formula.
func RollDiceHandler(deps Deps) mcp.ToolHandlerFor[RollDiceInput, RollDiceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
		ctx, span := startSpan(ctx, "roll_dice")
		defer span.End()

		r, err := roll.New(input.Formula, input.Data, roll.WithSeedFunc(deps.seedFunc(input.Seed)))
		if err != nil {
			return nil, RollDiceResult{}, err
		}

		rendered, err := r.Render(ctx, roll.RenderOptions{})
		if err != nil {
			return nil, RollDiceResult{}, err
		}
		total, _ := r.Total()
		return nil, RollDiceResult{
			Formula: rendered.Formula,
			Total:   total,
			Tooltip: rendered.Tooltip,
		}, nil
	}
}

// RulesVersionHandler describes the ruleset.
func RulesVersionHandler() mcp.ToolHandlerFor[RulesVersionInput, RulesVersionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ RulesVersionInput) (*mcp.CallToolResult, RulesVersionResult, error) {
		return nil, RulesVersionResult{
			System:       "Draw Steel",
			RulesVersion: RulesVersion,
			DiceModel:    "2d10 plus modifiers",
			TierRule:     "tier2 at 12, tier3 at 17; a double edge or double bane shifts the tier by one",
			CritRule:     "ability rolls crit when the dice alone reach 19",
			Tiers:        []string{powerroll.Tier1.String(), powerroll.Tier2.String(), powerroll.Tier3.String()},
		}, nil
	}
}

// ListSkillsHandler lists the registered skills.
func ListSkillsHandler(deps Deps) mcp.ToolHandlerFor[ListSkillsInput, ListSkillsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListSkillsInput) (*mcp.CallToolResult, ListSkillsResult, error) {
		registry := deps.Skills
		if registry == nil {
			registry = skills.Default()
		}

		var result ListSkillsResult
		for _, skill := range registry.All() {
			if input.Group != "" && skill.Group != input.Group {
				continue
			}
			label := skill.LabelKey
			if deps.Localizer != nil {
				label = deps.Localizer.Localize(skill.LabelKey)
			}
			result.Skills = append(result.Skills, SkillEntry{
				ID:    skill.ID,
				Label: label,
				Group: skill.Group,
			})
		}
		return nil, result, nil
	}
}

func resultFromRoll(pr *powerroll.PowerRoll) PowerRollResult {
	total, _ := pr.Total()
	result := PowerRollResult{
		Formula:  pr.Formula(),
		Total:    total,
		Tier:     pr.TierName(),
		NetBoon:  pr.NetBoon(),
		Critical: pr.Critical(),
		Nat20:    pr.Nat20(),
	}
	result.Tooltip = tooltipFromTerms(pr)
	return result
}

func tooltipFromTerms(pr *powerroll.PowerRoll) string {
	for _, term := range pr.Terms() {
		die, ok := term.(*dice.DieTerm)
		if !ok || !die.Evaluated() {
			continue
		}
		return fmt.Sprintf("%s → %v = %d", die.Expression(), die.Results, die.Total())
	}
	return ""
}
