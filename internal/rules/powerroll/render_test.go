package powerroll

import (
	"context"
	"testing"

	"github.com/Taroc0/draw-steel/internal/rules/roll"
)

func TestRenderPublicContext(t *testing.T) {
	pr := evaluated(t, "", Options{
		Type:   TypeAbility,
		Edges:  1,
		Flavor: "Knife throw",
		UserID: "user-1",
	}, 10, 9)

	rendered, err := pr.Render(context.Background(), roll.RenderOptions{})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if rendered.Formula != "2d10 + 2[Edge]" {
		t.Fatalf("unexpected formula %q", rendered.Formula)
	}
	if rendered.Flavor != "Knife throw" {
		t.Fatalf("unexpected flavor %q", rendered.Flavor)
	}
	if rendered.Total != "21" {
		t.Fatalf("unexpected total %q", rendered.Total)
	}
	if rendered.Tier.Class != "tier3" {
		t.Fatalf("unexpected tier class %q", rendered.Tier.Class)
	}
	if rendered.Tier.Label == "" {
		t.Fatal("expected localized tier label")
	}
	if rendered.Modifier.Number != 1 || rendered.Modifier.Mod != "Edge" {
		t.Fatalf("unexpected modifier context %+v", rendered.Modifier)
	}
	if rendered.Critical != criticalStyleClass {
		t.Fatalf("expected critical style on 19 dice, got %q", rendered.Critical)
	}
	if rendered.Tooltip == "" {
		t.Fatal("expected tooltip for evaluated roll")
	}
}

func TestRenderFlatRollHasNoModifierContext(t *testing.T) {
	pr := evaluated(t, "", Options{}, 6, 5)

	rendered, err := pr.Render(context.Background(), roll.RenderOptions{})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if rendered.Modifier.Number != 0 || rendered.Modifier.Mod != "" {
		t.Fatalf("expected empty modifier context, got %+v", rendered.Modifier)
	}
	if rendered.Critical != "" {
		t.Fatalf("expected no critical style, got %q", rendered.Critical)
	}
}

func TestRenderDoubleBaneModifierContext(t *testing.T) {
	pr := evaluated(t, "", Options{Banes: 2}, 9, 8)

	rendered, err := pr.Render(context.Background(), roll.RenderOptions{})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if rendered.Modifier.Number != 2 || rendered.Modifier.Mod != "Double Bane" {
		t.Fatalf("unexpected modifier context %+v", rendered.Modifier)
	}
	if rendered.Tier.Class != "tier2" {
		t.Fatalf("unexpected tier class %q", rendered.Tier.Class)
	}
}

func TestRenderPrivateRedactsRollContext(t *testing.T) {
	pr := evaluated(t, "", Options{Edges: 1, Flavor: "Secret", UserID: "user-1"}, 10, 10)

	rendered, err := pr.Render(context.Background(), roll.RenderOptions{Private: true})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if rendered.Formula != roll.PrivateFormula {
		t.Fatalf("expected %q formula, got %q", roll.PrivateFormula, rendered.Formula)
	}
	if rendered.Flavor != "" {
		t.Fatalf("expected empty flavor, got %q", rendered.Flavor)
	}
	if rendered.Tooltip != "" {
		t.Fatalf("expected empty tooltip, got %q", rendered.Tooltip)
	}
	if rendered.Total != roll.PrivateTotal {
		t.Fatalf("expected %q total, got %q", roll.PrivateTotal, rendered.Total)
	}
}

func TestRenderEvaluatesLazily(t *testing.T) {
	pr := mustNew(t, "", Options{})
	if pr.Evaluated() {
		t.Fatal("expected unevaluated roll")
	}

	if _, err := pr.Render(context.Background(), roll.RenderOptions{}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !pr.Evaluated() {
		t.Fatal("expected Render to evaluate the roll")
	}
}
