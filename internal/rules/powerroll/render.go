package powerroll

import (
	"context"

	"github.com/Taroc0/draw-steel/internal/rules/roll"
)

// criticalStyleClass marks critical and natural-20 results for display.
const criticalStyleClass = "critical"

// TierContext carries the localized tier label and its style token.
type TierContext struct {
	Label string
	Class string
}

// ModifierContext describes the net boon for display: its magnitude and the
// localized edge/bane label. Both are zero-valued when the roll is flat.
type ModifierContext struct {
	Number int
	Mod    string
}

// Context extends the uniform roll context with power roll outcomes.
type Context struct {
	roll.Context

	Tier     TierContext
	Modifier ModifierContext
	Critical string
}

// Render prepares the power roll for display, evaluating it first when
// needed. Privacy semantics come from the wrapped roll.
func (p *PowerRoll) Render(ctx context.Context, opts roll.RenderOptions) (Context, error) {
	base, err := p.roll.Render(ctx, opts)
	if err != nil {
		return Context{}, err
	}

	out := Context{Context: base}

	if tier := p.Tier(); tier != TierUnknown {
		out.Tier = TierContext{
			Label: p.localizer.Localize(tier.LabelKey()),
			Class: tier.StyleClass(),
		}
	}

	if label := p.modifierLabel(); label != "" {
		out.Modifier = ModifierContext{
			Number: abs(p.config.NetBoon()),
			Mod:    label,
		}
	}

	if isTrue(p.Critical()) || isTrue(p.Nat20()) {
		out.Critical = criticalStyleClass
	}

	return out, nil
}

func (p *PowerRoll) modifierLabel() string {
	switch p.config.NetBoon() {
	case 2:
		return p.localizer.Localize(keyModifierDoubleEdge)
	case 1:
		return p.localizer.Localize(keyModifierEdge)
	case -1:
		return p.localizer.Localize(keyModifierBane)
	case -2:
		return p.localizer.Localize(keyModifierDoubleBane)
	default:
		return ""
	}
}

func isTrue(value *bool) bool {
	return value != nil && *value
}

func abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
