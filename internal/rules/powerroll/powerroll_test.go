package powerroll

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/Taroc0/draw-steel/internal/platform/errors"
	"github.com/Taroc0/draw-steel/internal/rules/dice"
	"github.com/Taroc0/draw-steel/internal/rules/roll"
)

func fixedSeed(seed int64) roll.SeedFunc {
	return func() (int64, error) { return seed, nil }
}

func suppliedDice(results ...int) roll.DieInputFunc {
	return func(ctx context.Context, die *dice.DieTerm) ([]int, error) {
		return results, nil
	}
}

func testLocalizer() Localizer {
	return LocalizerFunc(func(key string) string {
		switch key {
		case keyModifierEdge:
			return "Edge"
		case keyModifierDoubleEdge:
			return "Double Edge"
		case keyModifierBane:
			return "Bane"
		case keyModifierDoubleBane:
			return "Double Bane"
		default:
			return key
		}
	})
}

func mustNew(t *testing.T, formula string, opts Options) *PowerRoll {
	t.Helper()
	if opts.Localizer == nil {
		opts.Localizer = testLocalizer()
	}
	if opts.SeedFunc == nil {
		opts.SeedFunc = fixedSeed(1)
	}
	pr, err := New(formula, nil, opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return pr
}

func evaluated(t *testing.T, formula string, opts Options, results ...int) *PowerRoll {
	t.Helper()
	if len(results) > 0 {
		opts.DieInput = suppliedDice(results...)
	}
	pr := mustNew(t, formula, opts)
	if _, err := pr.Evaluate(context.Background()); err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	return pr
}

func TestNewClampsEdgesAndBanes(t *testing.T) {
	for edges := 0; edges <= 5; edges++ {
		for banes := 0; banes <= 5; banes++ {
			pr := mustNew(t, "", Options{Edges: edges, Banes: banes})
			cfg := pr.Config()
			if cfg.Edges < 0 || cfg.Edges > MaxEdges {
				t.Fatalf("edges=%d clamped to %d, want [0,%d]", edges, cfg.Edges, MaxEdges)
			}
			if cfg.Banes < 0 || cfg.Banes > MaxBanes {
				t.Fatalf("banes=%d clamped to %d, want [0,%d]", banes, cfg.Banes, MaxBanes)
			}
			if net := pr.NetBoon(); net < -MaxBanes || net > MaxEdges {
				t.Fatalf("edges=%d banes=%d net boon %d out of range", edges, banes, net)
			}
		}
	}
}

func TestNewDefaults(t *testing.T) {
	pr := mustNew(t, "", Options{})
	if pr.Formula() != DefaultFormula {
		t.Fatalf("expected default formula %q, got %q", DefaultFormula, pr.Formula())
	}
	if pr.Config().Type != TypeTest {
		t.Fatalf("expected default type test, got %v", pr.Config().Type)
	}
	if pr.Config().CriticalThreshold != DefaultCriticalThreshold {
		t.Fatalf("expected default critical threshold, got %d", pr.Config().CriticalThreshold)
	}
}

func TestNewRejectsInvalidType(t *testing.T) {
	_, err := New("", nil, Options{Type: Type(99)})
	if !errors.Is(err, apperrors.New(apperrors.CodeRollInvalidType, "")) {
		t.Fatalf("New error = %v, want %s", err, apperrors.CodeRollInvalidType)
	}
}

func TestModifierInjectedOnlyAtMagnitudeOne(t *testing.T) {
	cases := []struct {
		edges, banes int
		wantFormula  string
		wantApplied  bool
	}{
		{0, 0, "2d10", false},
		{1, 0, "2d10 + 2[Edge]", true},
		{0, 1, "2d10 - 2[Bane]", true},
		{2, 1, "2d10 + 2[Edge]", true},
		{1, 2, "2d10 - 2[Bane]", true},
		{1, 1, "2d10", false},
		{2, 0, "2d10", false},
		{0, 2, "2d10", false},
		{2, 2, "2d10", false},
	}
	for _, tc := range cases {
		pr := mustNew(t, "", Options{Edges: tc.edges, Banes: tc.banes})
		if pr.Formula() != tc.wantFormula {
			t.Fatalf("edges=%d banes=%d formula = %q, want %q",
				tc.edges, tc.banes, pr.Formula(), tc.wantFormula)
		}
		if pr.Config().ModifierApplied() != tc.wantApplied {
			t.Fatalf("edges=%d banes=%d modifier applied = %v, want %v",
				tc.edges, tc.banes, pr.Config().ModifierApplied(), tc.wantApplied)
		}
	}
}

func TestModifierInjectionSkippedWhenAlreadyApplied(t *testing.T) {
	pr := mustNew(t, "2d10 + 2[Edge]", Options{Edges: 1, AppliedModifier: true})
	if pr.Formula() != "2d10 + 2[Edge]" {
		t.Fatalf("expected formula untouched, got %q", pr.Formula())
	}
}

func TestModifierAffectsTotal(t *testing.T) {
	flat := evaluated(t, "", Options{}, 6, 5)
	edged := evaluated(t, "", Options{Edges: 1}, 6, 5)
	baned := evaluated(t, "", Options{Banes: 1}, 6, 5)

	flatTotal, _ := flat.Total()
	edgedTotal, _ := edged.Total()
	banedTotal, _ := baned.Total()

	if edgedTotal != flatTotal+2 {
		t.Fatalf("edge total = %d, want %d", edgedTotal, flatTotal+2)
	}
	if banedTotal != flatTotal-2 {
		t.Fatalf("bane total = %d, want %d", banedTotal, flatTotal-2)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	pr := evaluated(t, "", Options{Edges: 1}, 7, 5)
	first, _ := pr.Total()
	if _, err := pr.Evaluate(context.Background()); err != nil {
		t.Fatalf("second Evaluate returned error: %v", err)
	}
	second, _ := pr.Total()
	if first != second {
		t.Fatalf("expected stable total, got %d then %d", first, second)
	}
	if !strings.HasPrefix(pr.Formula(), "2d10") {
		t.Fatalf("unexpected formula %q", pr.Formula())
	}
}

func TestTierUnknownBeforeEvaluation(t *testing.T) {
	pr := mustNew(t, "", Options{})
	if pr.Tier() != TierUnknown {
		t.Fatalf("expected TierUnknown before evaluation, got %v", pr.Tier())
	}
	if pr.TierName() != "" {
		t.Fatalf("expected empty tier name, got %q", pr.TierName())
	}
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		name         string
		edges, banes int
		dice         []int
		want         Tier
	}{
		{"total 11 is tier 1", 0, 0, []int{6, 5}, Tier1},
		{"total 12 is tier 2", 0, 0, []int{7, 5}, Tier2},
		{"total 16 is tier 2", 0, 0, []int{8, 8}, Tier2},
		{"total 17 is tier 3", 0, 0, []int{9, 8}, Tier3},
		{"edge pushes 10 to tier 2", 1, 0, []int{5, 5}, Tier2},
		{"bane drags 13 to tier 1", 0, 1, []int{7, 6}, Tier1},
		{"double edge raises the tier", 2, 0, []int{7, 5}, Tier3},
		{"double bane lowers the tier", 0, 2, []int{9, 8}, Tier2},
		{"double bane clamps at tier 1", 0, 2, []int{3, 2}, Tier1},
		{"double edge clamps at tier 3", 2, 0, []int{10, 9}, Tier3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pr := evaluated(t, "", Options{Edges: tc.edges, Banes: tc.banes}, tc.dice...)
			if got := pr.Tier(); got != tc.want {
				total, _ := pr.Total()
				t.Fatalf("tier = %v (total %d), want %v", got, total, tc.want)
			}
		})
	}
}

func TestTierMonotonicInTotal(t *testing.T) {
	for _, netBoon := range []int{-2, -1, 0, 1, 2} {
		previous := Tier1
		for total := 2; total <= 20; total++ {
			tier := tierForTotal(total, netBoon)
			if tier < previous {
				t.Fatalf("net boon %d: tier dropped from %v to %v at total %d",
					netBoon, previous, tier, total)
			}
			previous = tier
		}
	}
}

func TestNat20(t *testing.T) {
	pr := evaluated(t, "", Options{}, 10, 10)
	if got := pr.Nat20(); got == nil || !*got {
		t.Fatalf("expected nat20 true for [10 10], got %v", got)
	}

	pr = evaluated(t, "", Options{}, 10, 9)
	if got := pr.Nat20(); got == nil || *got {
		t.Fatalf("expected nat20 false for [10 9], got %v", got)
	}
}

func TestNat20NilWithoutBaseDice(t *testing.T) {
	pr := evaluated(t, "3d6", Options{})
	if pr.Nat20() != nil {
		t.Fatal("expected nil nat20 for a 3d6 roll")
	}

	unrolled := mustNew(t, "", Options{})
	if unrolled.Nat20() != nil {
		t.Fatal("expected nil nat20 before evaluation")
	}
}

func TestCriticalOnlyForAbilityRolls(t *testing.T) {
	pr := evaluated(t, "", Options{Type: TypeAbility}, 10, 9)
	if got := pr.Critical(); got == nil || !*got {
		t.Fatalf("expected critical true at 19, got %v", got)
	}

	pr = evaluated(t, "", Options{Type: TypeAbility}, 10, 8)
	if got := pr.Critical(); got == nil || *got {
		t.Fatalf("expected critical false at 18, got %v", got)
	}

	for _, rollType := range []Type{TypeTest, TypeResistance} {
		pr = evaluated(t, "", Options{Type: rollType}, 10, 10)
		if pr.Critical() != nil {
			t.Fatalf("expected nil critical for %v roll", rollType)
		}
	}

	unrolled := mustNew(t, "", Options{Type: TypeAbility})
	if unrolled.Critical() != nil {
		t.Fatal("expected nil critical before evaluation")
	}
}

func TestCriticalHonorsCustomThreshold(t *testing.T) {
	pr := evaluated(t, "", Options{Type: TypeAbility, CriticalThreshold: 15}, 8, 7)
	if got := pr.Critical(); got == nil || !*got {
		t.Fatalf("expected critical true at custom threshold, got %v", got)
	}
}

func TestCriticalIgnoresStaticModifiers(t *testing.T) {
	// 17 on the dice plus a +3 modifier totals 20, but the critical check
	// reads the dice alone.
	pr := evaluated(t, "2d10 + 3", Options{Type: TypeAbility}, 9, 8)
	if got := pr.Critical(); got == nil || *got {
		t.Fatalf("expected critical false on 17 dice, got %v", got)
	}
	if got := pr.Nat20(); got == nil || *got {
		t.Fatalf("expected nat20 false on 17 dice, got %v", got)
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	for _, rollType := range []Type{TypeAbility, TypeResistance, TypeTest} {
		parsed, err := ParseType(rollType.String())
		if err != nil {
			t.Fatalf("ParseType(%q) returned error: %v", rollType.String(), err)
		}
		if parsed != rollType {
			t.Fatalf("ParseType(%q) = %v, want %v", rollType.String(), parsed, rollType)
		}
	}

	if _, err := ParseType("banana"); !errors.Is(err, apperrors.New(apperrors.CodeRollInvalidType, "")) {
		t.Fatalf("ParseType error = %v, want %s", err, apperrors.CodeRollInvalidType)
	}
}
