// Package roll wraps the dice evaluator with a uniform display-context
// contract, independent of ruleset semantics.
package roll

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Taroc0/draw-steel/internal/platform/random"
	"github.com/Taroc0/draw-steel/internal/rules/dice"
)

// ErrEvaluated indicates a mutation was attempted after evaluation.
var ErrEvaluated = errors.New("roll is already evaluated")

// SeedFunc supplies the seed for an evaluation.
type SeedFunc func() (int64, error)

// DieInputFunc collects interactive die results for a die term. Returning a
// nil slice lets the evaluator roll the term itself.
type DieInputFunc func(ctx context.Context, die *dice.DieTerm) ([]int, error)

// PrivateFormula masks the formula in private render contexts.
const PrivateFormula = "???"

// PrivateTotal masks the total in private render contexts.
const PrivateTotal = "?"

// Roll owns a term sequence and its evaluation state.
type Roll struct {
	terms    []dice.Term
	formula  string
	flavor   string
	userID   string
	seedFunc SeedFunc
	dieInput DieInputFunc

	evaluated bool
	total     int
}

// Option customizes roll construction.
type Option func(*Roll)

// WithFlavor attaches flavor text to the roll.
func WithFlavor(flavor string) Option {
	return func(r *Roll) { r.flavor = flavor }
}

// WithUserID records the owning user.
func WithUserID(userID string) Option {
	return func(r *Roll) { r.userID = userID }
}

// WithSeedFunc overrides the seed source. Tests use this for determinism.
func WithSeedFunc(seedFunc SeedFunc) Option {
	return func(r *Roll) {
		if seedFunc != nil {
			r.seedFunc = seedFunc
		}
	}
}

// WithDieInput supplies the interactive die input capability.
func WithDieInput(input DieInputFunc) Option {
	return func(r *Roll) { r.dieInput = input }
}

// New parses the formula against the data bindings and returns an
// unevaluated roll.
func New(formula string, data map[string]int, opts ...Option) (*Roll, error) {
	terms, err := dice.ParseFormula(formula, data)
	if err != nil {
		return nil, err
	}

	r := &Roll{
		terms:    terms,
		formula:  dice.Render(terms),
		seedFunc: random.NewSeed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Terms returns the roll's term sequence.
func (r *Roll) Terms() []dice.Term {
	return r.terms
}

// Formula returns the canonical formula string.
func (r *Roll) Formula() string {
	return r.formula
}

// Flavor returns the roll's flavor text.
func (r *Roll) Flavor() string {
	return r.flavor
}

// UserID returns the owning user id.
func (r *Roll) UserID() string {
	return r.userID
}

// Evaluated reports whether the roll has been resolved to a total.
func (r *Roll) Evaluated() bool {
	return r.evaluated
}

// Total returns the evaluated total. The second return is false until the
// roll has been evaluated.
func (r *Roll) Total() (int, bool) {
	if !r.evaluated {
		return 0, false
	}
	return r.total, true
}

// AppendTerms appends terms to the sequence and refreshes the formula.
// Appending after evaluation fails with ErrEvaluated.
func (r *Roll) AppendTerms(terms ...dice.Term) error {
	if r.evaluated {
		return ErrEvaluated
	}
	r.terms = append(r.terms, terms...)
	r.formula = dice.Render(r.terms)
	return nil
}

// Evaluate resolves the roll to a total. Evaluation is idempotent: a second
// call returns the recorded total without re-rolling or re-prompting.
func (r *Roll) Evaluate(ctx context.Context) (int, error) {
	return r.evaluate(ctx, true)
}

func (r *Roll) evaluate(ctx context.Context, allowInput bool) (int, error) {
	if r.evaluated {
		return r.total, nil
	}

	if allowInput && r.dieInput != nil {
		for _, term := range r.terms {
			die, ok := term.(*dice.DieTerm)
			if !ok || die.Evaluated() {
				continue
			}
			results, err := r.dieInput(ctx, die)
			if err != nil {
				return 0, fmt.Errorf("collect die input: %w", err)
			}
			if len(results) > 0 {
				die.Results = results
			}
		}
	}

	seed, err := r.seedFunc()
	if err != nil {
		return 0, fmt.Errorf("generate roll seed: %w", err)
	}

	total, err := dice.Evaluate(r.terms, seed)
	if err != nil {
		return 0, err
	}

	r.total = total
	r.evaluated = true
	return total, nil
}

// Context is the uniform display context for a roll.
type Context struct {
	Formula string
	Flavor  string
	UserID  string
	Tooltip string
	Total   string
}

// RenderOptions configures context preparation.
type RenderOptions struct {
	// Flavor overrides the roll's flavor text when non-empty.
	Flavor string
	// Private redacts formula, flavor, tooltip, and total.
	Private bool
}

// Render prepares the roll for display, evaluating it first when needed.
// Private rolls never leak the formula, flavor, tooltip, or total, and
// never trigger interactive die input.
func (r *Roll) Render(ctx context.Context, opts RenderOptions) (Context, error) {
	if _, err := r.evaluate(ctx, !opts.Private); err != nil {
		return Context{}, err
	}

	if opts.Private {
		return Context{
			Formula: PrivateFormula,
			Flavor:  "",
			UserID:  r.userID,
			Tooltip: "",
			Total:   PrivateTotal,
		}, nil
	}

	flavor := r.flavor
	if opts.Flavor != "" {
		flavor = opts.Flavor
	}

	return Context{
		Formula: r.formula,
		Flavor:  flavor,
		UserID:  r.userID,
		Tooltip: r.tooltip(),
		Total:   strconv.Itoa(r.total),
	}, nil
}

// tooltip builds a per-term audit string, e.g. "2d10 → [7 5] = 12".
func (r *Roll) tooltip() string {
	var parts []string
	for _, term := range r.terms {
		die, ok := term.(*dice.DieTerm)
		if !ok || !die.Evaluated() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s → %v = %d", die.Expression(), die.Results, die.Total()))
	}
	return strings.Join(parts, "; ")
}
