package mcpserver

import (
	"context"
	"testing"

	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
)

func testDeps() Deps {
	return Deps{
		Localizer: powerroll.LocalizerFunc(func(key string) string { return key }),
		SeedFunc:  func() (int64, error) { return 1, nil },
	}
}

func TestPowerRollHandlerDeterministicSeed(t *testing.T) {
	handler := PowerRollHandler(testDeps())
	seed := int64(7)

	_, first, err := handler(context.Background(), nil, PowerRollInput{Seed: &seed})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	_, second, err := handler(context.Background(), nil, PowerRollInput{Seed: &seed})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if first.Total != second.Total {
		t.Fatalf("expected deterministic totals, got %d and %d", first.Total, second.Total)
	}
	if first.Tier == "" {
		t.Fatal("expected tier name in result")
	}
	if first.Nat20 == nil {
		t.Fatal("expected nat20 flag for a 2d10 roll")
	}
}

func TestPowerRollHandlerRejectsUnknownType(t *testing.T) {
	handler := PowerRollHandler(testDeps())

	_, _, err := handler(context.Background(), nil, PowerRollInput{Type: "banana"})
	if err == nil {
		t.Fatal("expected error for unknown roll type")
	}
}

func TestPowerRollOutcomeHandler(t *testing.T) {
	handler := PowerRollOutcomeHandler(testDeps())

	_, result, err := handler(context.Background(), nil, PowerRollOutcomeInput{
		Dice:  []int{10, 9},
		Type:  "ability",
		Edges: 1,
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.Total != 21 {
		t.Fatalf("expected total 21, got %d", result.Total)
	}
	if result.Tier != "tier3" {
		t.Fatalf("expected tier3, got %q", result.Tier)
	}
	if result.Critical == nil || !*result.Critical {
		t.Fatalf("expected critical true, got %v", result.Critical)
	}
	if result.NetBoon != 1 {
		t.Fatalf("expected net boon 1, got %d", result.NetBoon)
	}
}

func TestPowerRollOutcomeHandlerValidatesDice(t *testing.T) {
	handler := PowerRollOutcomeHandler(testDeps())

	cases := [][]int{nil, {5}, {5, 6, 7}, {0, 5}, {11, 5}}
	for _, dice := range cases {
		if _, _, err := handler(context.Background(), nil, PowerRollOutcomeInput{Dice: dice}); err == nil {
			t.Fatalf("expected error for dice %v", dice)
		}
	}
}

func TestPowerRollOutcomeHandlerAppliesModifier(t *testing.T) {
	handler := PowerRollOutcomeHandler(testDeps())

	_, result, err := handler(context.Background(), nil, PowerRollOutcomeInput{
		Dice:     []int{6, 5},
		Modifier: 3,
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.Total != 14 {
		t.Fatalf("expected total 14, got %d", result.Total)
	}
	if result.Tier != "tier2" {
		t.Fatalf("expected tier2, got %q", result.Tier)
	}
}

func TestRollDiceHandler(t *testing.T) {
	handler := RollDiceHandler(testDeps())
	seed := int64(3)

	_, result, err := handler(context.Background(), nil, RollDiceInput{Formula: "3d6 + 2", Seed: &seed})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.Total < 5 || result.Total > 20 {
		t.Fatalf("total %d outside 3d6+2 bounds", result.Total)
	}
	if result.Tooltip == "" {
		t.Fatal("expected tooltip")
	}

	if _, _, err := handler(context.Background(), nil, RollDiceInput{Formula: "banana"}); err == nil {
		t.Fatal("expected error for invalid formula")
	}
}

func TestRulesVersionHandler(t *testing.T) {
	handler := RulesVersionHandler()

	_, result, err := handler(context.Background(), nil, RulesVersionInput{})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.RulesVersion != RulesVersion {
		t.Fatalf("unexpected rules version %q", result.RulesVersion)
	}
	if len(result.Tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %v", result.Tiers)
	}
}

func TestListSkillsHandler(t *testing.T) {
	handler := ListSkillsHandler(testDeps())

	_, result, err := handler(context.Background(), nil, ListSkillsInput{})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(result.Skills) == 0 {
		t.Fatal("expected registered skills")
	}

	_, filtered, err := handler(context.Background(), nil, ListSkillsInput{Group: "intrigue"})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	for _, skill := range filtered.Skills {
		if skill.Group != "intrigue" {
			t.Fatalf("expected intrigue skills only, got %+v", skill)
		}
	}
	if len(filtered.Skills) == 0 || len(filtered.Skills) >= len(result.Skills) {
		t.Fatalf("expected a proper subset, got %d of %d", len(filtered.Skills), len(result.Skills))
	}
}

func TestNewServerRejectsUnknownLocale(t *testing.T) {
	if _, err := New(Config{Locale: "xx-XX"}); err == nil {
		t.Fatal("expected error for unknown locale")
	}

	if _, err := New(Config{}); err != nil {
		t.Fatalf("New returned error: %v", err)
	}
}
