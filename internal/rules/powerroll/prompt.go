package powerroll

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	apperrors "github.com/Taroc0/draw-steel/internal/platform/errors"
	"github.com/Taroc0/draw-steel/internal/rules/roll"
)

// ErrPromptCanceled reports that the user dismissed the roll prompt. It is
// an expected outcome, distinct from configuration errors.
var ErrPromptCanceled = errors.New("power roll prompt canceled")

// Evaluation selects what happens to a prompted roll after the user
// confirms it.
type Evaluation int

const (
	EvaluationUnspecified Evaluation = iota
	// EvaluationNone returns the configured roll unevaluated.
	EvaluationNone
	// EvaluationEvaluate resolves the roll to a total.
	EvaluationEvaluate
	// EvaluationMessage resolves the roll and posts it to the messaging
	// surface.
	EvaluationMessage
)

// String returns the wire/config form of the evaluation mode.
func (e Evaluation) String() string {
	switch e {
	case EvaluationNone:
		return "none"
	case EvaluationEvaluate:
		return "evaluate"
	case EvaluationMessage:
		return "message"
	default:
		return "unspecified"
	}
}

// Valid reports whether the evaluation mode is one of the enumerated values.
func (e Evaluation) Valid() bool {
	return e == EvaluationNone || e == EvaluationEvaluate || e == EvaluationMessage
}

// ParseEvaluation maps a config string to an evaluation mode.
func ParseEvaluation(value string) (Evaluation, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none":
		return EvaluationNone, nil
	case "evaluate":
		return EvaluationEvaluate, nil
	case "message":
		return EvaluationMessage, nil
	default:
		return EvaluationUnspecified, apperrors.WithMetadata(
			apperrors.CodeRollInvalidEvaluation,
			"evaluation must be none, evaluate, or message",
			map[string]string{"evaluation": value},
		)
	}
}

// SkillChoice is a skill offered on the roll prompt.
type SkillChoice struct {
	ID    string
	Label string
}

// PromptForm is the state presented to the user for adjustment.
type PromptForm struct {
	Type   Type
	Edges  int
	Banes  int
	Skills []SkillChoice
}

// PromptValues is what the user confirmed on the form.
type PromptValues struct {
	Edges   int
	Banes   int
	SkillID string
}

// Prompter collects roll adjustments from the user. Implementations return
// ErrPromptCanceled when the user dismisses the form.
type Prompter interface {
	PromptRoll(ctx context.Context, form PromptForm) (PromptValues, error)
}

// SkillResolver maps skill ids to display labels.
type SkillResolver interface {
	Resolve(id string) (label string, ok bool)
}

// Poster delivers an evaluated roll to the messaging surface.
type Poster interface {
	PostRoll(ctx context.Context, pr *PowerRoll) error
}

// PromptRequest configures an interactive roll workflow.
type PromptRequest struct {
	Type       Type
	Evaluation Evaluation
	Formula    string
	Data       map[string]int
	Skills     []string
	Edges      int
	Banes      int
	Flavor     string
	UserID     string
}

// PromptDeps are the collaborators the workflow needs. Prompter is
// required; the rest are optional.
type PromptDeps struct {
	Prompter  Prompter
	Skills    SkillResolver
	Poster    Poster
	Localizer Localizer
	SeedFunc  roll.SeedFunc
	DieInput  roll.DieInputFunc
}

// Prompt runs the interactive workflow: present the form, fold the
// confirmed values into a new power roll, then evaluate and post according
// to the requested evaluation mode. Cancellation surfaces as
// ErrPromptCanceled with no roll constructed.
func Prompt(ctx context.Context, req PromptRequest, deps PromptDeps) (*PowerRoll, error) {
	if deps.Prompter == nil {
		return nil, errors.New("prompter is required")
	}

	rollType := req.Type
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

	evaluation := req.Evaluation
	if evaluation == EvaluationUnspecified {
		evaluation = EvaluationNone
	}
	if !evaluation.Valid() {
		return nil, apperrors.WithMetadata(
			apperrors.CodeRollInvalidEvaluation,
			"evaluation must be none, evaluate, or message",
			map[string]string{"evaluation": evaluation.String()},
		)
	}

	form := PromptForm{
		Type:   rollType,
		Edges:  clamp(req.Edges, 0, MaxEdges),
		Banes:  clamp(req.Banes, 0, MaxBanes),
		Skills: resolveSkillChoices(req.Skills, deps.Skills),
	}

	values, err := deps.Prompter.PromptRoll(ctx, form)
	if err != nil {
		return nil, err
	}

	flavor := req.Flavor
	if values.SkillID != "" && deps.Skills != nil {
		if label, ok := deps.Skills.Resolve(values.SkillID); ok && flavor == "" {
			flavor = label
		}
	}

	pr, err := New(req.Formula, req.Data, Options{
		Type:      rollType,
		Edges:     values.Edges,
		Banes:     values.Banes,
		Flavor:    flavor,
		UserID:    req.UserID,
		Localizer: deps.Localizer,
		SeedFunc:  deps.SeedFunc,
		DieInput:  deps.DieInput,
	})
	if err != nil {
		return nil, err
	}

	switch evaluation {
	case EvaluationNone:
		return pr, nil
	case EvaluationEvaluate:
		if _, err := pr.Evaluate(ctx); err != nil {
			return nil, err
		}
		return pr, nil
	default:
		if _, err := pr.Evaluate(ctx); err != nil {
			return nil, err
		}
		if deps.Poster != nil {
			if err := deps.Poster.PostRoll(ctx, pr); err != nil {
				return nil, fmt.Errorf("post roll: %w", err)
			}
		}
		return pr, nil
	}
}

// resolveSkillChoices drops unregistered skill ids with a warning rather
// than failing the prompt.
func resolveSkillChoices(ids []string, resolver SkillResolver) []SkillChoice {
	if len(ids) == 0 || resolver == nil {
		return nil
	}
	var choices []SkillChoice
	for _, id := range ids {
		label, ok := resolver.Resolve(id)
		if !ok {
			log.Printf("skill %q is not registered; dropping from roll prompt", id)
			continue
		}
		choices = append(choices, SkillChoice{ID: id, Label: label})
	}
	return choices
}
