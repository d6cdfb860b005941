// Package powerroll implements the 2d10 power roll: edges and banes, the
// one-time ±2 modifier, tier outcomes, and critical detection.
//
// # Construction
//
// New builds a power roll from a formula and data bindings, clamps edges
// and banes, and injects the net-boon modifier term when the net boon has
// magnitude one. A net boon of magnitude two adjusts the outcome tier
// instead of the total.
//
// # Outcomes
//
// Tier, Critical, and Nat20 derive from the evaluated term sequence. They
// report unknown (or nil) until the roll is evaluated, and Critical and
// Nat20 stay nil when the roll does not qualify for them.
package powerroll

import (
	"context"
	"strings"

	apperrors "github.com/Taroc0/draw-steel/internal/platform/errors"
	"github.com/Taroc0/draw-steel/internal/platform/i18n/catalog"
	"github.com/Taroc0/draw-steel/internal/rules/dice"
	"github.com/Taroc0/draw-steel/internal/rules/roll"
)

const (
	// DefaultFormula is the base power roll formula.
	DefaultFormula = "2d10"
	// MaxEdges and MaxBanes cap how many edges and banes count toward
	// the net boon.
	MaxEdges = 2
	MaxBanes = 2
	// DefaultCriticalThreshold is the first-dice total at which an
	// ability roll becomes a critical.
	DefaultCriticalThreshold = 19

	baseDieCount   = 2
	baseDieFaces   = 10
	nat20Threshold = 20
)

// Localization keys the engine emits. Display text comes from the
// configured Localizer.
const (
	keyModifierEdge       = "powerroll.modifier.edge"
	keyModifierDoubleEdge = "powerroll.modifier.double_edge"
	keyModifierBane       = "powerroll.modifier.bane"
	keyModifierDoubleBane = "powerroll.modifier.double_bane"
	keyCritical           = "powerroll.critical"
)

// Localizer resolves label keys to display text.
type Localizer interface {
	Localize(key string) string
}

// LocalizerFunc adapts a plain function to the Localizer interface.
type LocalizerFunc func(key string) string

// Localize implements Localizer.
func (f LocalizerFunc) Localize(key string) string {
	return f(key)
}

// defaultLocalizer resolves keys against the embedded catalog's base locale.
func defaultLocalizer() Localizer {
	return LocalizerFunc(func(key string) string {
		return catalog.Default().Localize(catalog.BaseLocale, key)
	})
}

// Config is the resolved configuration of a power roll.
type Config struct {
	Type              Type
	Edges             int
	Banes             int
	CriticalThreshold int

	appliedModifier bool
}

// NetBoon returns edges minus banes after clamping.
func (c Config) NetBoon() int {
	return c.Edges - c.Banes
}

// ModifierApplied reports whether the ±2 net-boon modifier term has been
// folded into the formula.
func (c Config) ModifierApplied() bool {
	return c.appliedModifier
}

// Options configures power roll construction.
type Options struct {
	Type  Type
	Edges int
	Banes int
	// CriticalThreshold overrides DefaultCriticalThreshold when positive.
	CriticalThreshold int
	// AppliedModifier marks the net-boon modifier as already present in
	// the formula, suppressing injection.
	AppliedModifier bool

	Flavor    string
	UserID    string
	Localizer Localizer
	SeedFunc  roll.SeedFunc
	DieInput  roll.DieInputFunc
}

// PowerRoll composes a generic roll with power roll semantics.
type PowerRoll struct {
	roll      *roll.Roll
	config    Config
	localizer Localizer
}

// New builds a power roll. An empty formula defaults to DefaultFormula, a
// zero type defaults to TypeTest, and edges and banes are clamped to
// [0, MaxEdges] and [0, MaxBanes]. When the clamped net boon has magnitude
// one, a ±2 annotated modifier term is appended to the formula exactly once.
func New(formula string, data map[string]int, opts Options) (*PowerRoll, error) {
	if strings.TrimSpace(formula) == "" {
		formula = DefaultFormula
	}

	rollType := opts.Type
	if rollType == TypeUnspecified {
		rollType = TypeTest
	}
	if !rollType.Valid() {
		return nil, apperrors.WithMetadata(
			apperrors.CodeRollInvalidType,
			"roll type must be ability, resistance, or test",
			map[string]string{"type": rollType.String()},
		)
	}

	config := Config{
		Type:              rollType,
		Edges:             clamp(opts.Edges, 0, MaxEdges),
		Banes:             clamp(opts.Banes, 0, MaxBanes),
		CriticalThreshold: opts.CriticalThreshold,
		appliedModifier:   opts.AppliedModifier,
	}
	if config.CriticalThreshold <= 0 {
		config.CriticalThreshold = DefaultCriticalThreshold
	}

	localizer := opts.Localizer
	if localizer == nil {
		localizer = defaultLocalizer()
	}

	base, err := roll.New(formula, data,
		roll.WithFlavor(opts.Flavor),
		roll.WithUserID(opts.UserID),
		roll.WithSeedFunc(opts.SeedFunc),
		roll.WithDieInput(opts.DieInput),
	)
	if err != nil {
		return nil, err
	}

	p := &PowerRoll{roll: base, config: config, localizer: localizer}
	if err := p.applyNetBoonModifier(); err != nil {
		return nil, err
	}
	return p, nil
}

// applyNetBoonModifier appends the one-time ±2 term for a net boon of
// magnitude one. Magnitude two is handled at tier derivation instead.
func (p *PowerRoll) applyNetBoonModifier() error {
	if p.config.appliedModifier {
		return nil
	}

	var op dice.Op
	var key string
	switch p.config.NetBoon() {
	case 1:
		op, key = dice.OpPlus, keyModifierEdge
	case -1:
		op, key = dice.OpMinus, keyModifierBane
	default:
		return nil
	}

	err := p.roll.AppendTerms(
		&dice.OperatorTerm{Op: op},
		&dice.NumericTerm{Value: 2, Annotation: p.localizer.Localize(key)},
	)
	if err != nil {
		return err
	}
	p.config.appliedModifier = true
	return nil
}

// Config returns the resolved configuration.
func (p *PowerRoll) Config() Config {
	return p.config
}

// NetBoon returns the clamped net boon.
func (p *PowerRoll) NetBoon() int {
	return p.config.NetBoon()
}

// Formula returns the canonical formula, including any injected modifier.
func (p *PowerRoll) Formula() string {
	return p.roll.Formula()
}

// Flavor returns the roll's flavor text.
func (p *PowerRoll) Flavor() string {
	return p.roll.Flavor()
}

// UserID returns the owning user id.
func (p *PowerRoll) UserID() string {
	return p.roll.UserID()
}

// Terms returns the underlying term sequence.
func (p *PowerRoll) Terms() []dice.Term {
	return p.roll.Terms()
}

// Evaluated reports whether the roll has been resolved to a total.
func (p *PowerRoll) Evaluated() bool {
	return p.roll.Evaluated()
}

// Total returns the evaluated total. The second return is false until the
// roll has been evaluated.
func (p *PowerRoll) Total() (int, bool) {
	return p.roll.Total()
}

// Evaluate resolves the roll to a total. Evaluation is idempotent.
func (p *PowerRoll) Evaluate(ctx context.Context) (int, error) {
	return p.roll.Evaluate(ctx)
}

// ValidPowerRoll reports whether the roll starts with the base 2d10 term.
// Anything else disqualifies natural-20 detection.
func (p *PowerRoll) ValidPowerRoll() bool {
	die, ok := p.firstDieTerm()
	return ok && die.Count == baseDieCount && die.Faces == baseDieFaces
}

// Tier returns the outcome tier, or TierUnknown before evaluation.
func (p *PowerRoll) Tier() Tier {
	total, ok := p.roll.Total()
	if !ok {
		return TierUnknown
	}
	return tierForTotal(total, p.config.NetBoon())
}

// TierName returns the stable tier name ("tier1".."tier3"), or the empty
// string before evaluation.
func (p *PowerRoll) TierName() string {
	return p.Tier().String()
}

// Critical reports whether the roll is a critical. It is nil when the roll
// is not an ability roll, is unevaluated, or has no leading die term.
func (p *PowerRoll) Critical() *bool {
	if p.config.Type != TypeAbility || !p.roll.Evaluated() {
		return nil
	}
	die, ok := p.firstDieTerm()
	if !ok {
		return nil
	}
	critical := die.Total() >= p.config.CriticalThreshold
	return &critical
}

// Nat20 reports whether the base dice came up 20 or higher on their own.
// It is nil when the roll is unevaluated or is not a valid 2d10 power roll.
func (p *PowerRoll) Nat20() *bool {
	if !p.roll.Evaluated() || !p.ValidPowerRoll() {
		return nil
	}
	die, _ := p.firstDieTerm()
	nat20 := die.Total() >= nat20Threshold
	return &nat20
}

func (p *PowerRoll) firstDieTerm() (*dice.DieTerm, bool) {
	terms := p.roll.Terms()
	if len(terms) == 0 {
		return nil, false
	}
	die, ok := terms[0].(*dice.DieTerm)
	return die, ok
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
