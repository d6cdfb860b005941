// Package dice implements the term model and evaluator for Draw Steel dice
// formulas.
//
// A formula is an ordered sequence of terms: a leading die term, optionally
// followed by operator/numeric pairs. This is intentionally not a general
// dice grammar; it covers exactly the expressions the ruleset produces.
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// ErrEmptyFormula indicates a formula had no terms.
var ErrEmptyFormula = errors.New("formula must contain at least one term")

// ErrInvalidFormula indicates an expression outside the supported grammar.
var ErrInvalidFormula = errors.New("formula is not a supported dice expression")

// ErrInvalidDieTerm indicates a die term with non-positive count or faces.
var ErrInvalidDieTerm = errors.New("die terms must have positive count and faces")

// ErrUnknownReference indicates an @reference with no entry in the data map.
var ErrUnknownReference = errors.New("formula reference has no binding")

// Op is the operator carried by an operator term.
type Op byte

const (
	OpPlus  Op = '+'
	OpMinus Op = '-'
)

// Term is an atomic piece of a dice expression.
type Term interface {
	// Expression returns the canonical string form of the term.
	Expression() string

	isTerm()
}

// DieTerm is a group of identical dice. Results is nil until the term has
// been evaluated; externally supplied results (interactive die input) are
// honored by Evaluate and never re-rolled.
type DieTerm struct {
	Count      int
	Faces      int
	Results    []int
	Annotation string
}

func (t *DieTerm) isTerm() {}

// Expression returns the NdF form, e.g. "2d10".
func (t *DieTerm) Expression() string {
	return fmt.Sprintf("%dd%d%s", t.Count, t.Faces, annotationSuffix(t.Annotation))
}

// Evaluated reports whether the term carries concrete die results.
func (t *DieTerm) Evaluated() bool {
	return t.Results != nil
}

// Total returns the sum of the evaluated die results.
func (t *DieTerm) Total() int {
	total := 0
	for _, result := range t.Results {
		total += result
	}
	return total
}

// OperatorTerm is a single + or - between value terms.
type OperatorTerm struct {
	Op Op
}

func (t *OperatorTerm) isTerm() {}

// Expression returns the operator character.
func (t *OperatorTerm) Expression() string {
	return string(t.Op)
}

// NumericTerm is a literal number, optionally carrying a display annotation
// such as the Edge/Bane label it came from.
type NumericTerm struct {
	Value      int
	Annotation string
}

func (t *NumericTerm) isTerm() {}

// Expression returns the literal, with its annotation in brackets when set.
func (t *NumericTerm) Expression() string {
	return strconv.Itoa(t.Value) + annotationSuffix(t.Annotation)
}

// ParseFormula parses an expression into a term sequence. References of the
// form @name are substituted through the data binding map.
func ParseFormula(expr string, data map[string]int) ([]Term, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, ErrEmptyFormula
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}

	die, err := parseDieToken(tokens[0])
	if err != nil {
		return nil, err
	}

	terms := []Term{die}
	i := 1
	for i < len(tokens) {
		op, err := parseOperatorToken(tokens[i])
		if err != nil {
			return nil, err
		}
		if i+1 >= len(tokens) {
			return nil, fmt.Errorf("%w: dangling operator %q", ErrInvalidFormula, tokens[i])
		}
		numeric, err := parseNumericToken(tokens[i+1], data)
		if err != nil {
			return nil, err
		}
		terms = append(terms, &OperatorTerm{Op: op}, numeric)
		i += 2
	}

	return terms, nil
}

// Render reconstructs the canonical formula string from a term sequence.
func Render(terms []Term) string {
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		parts = append(parts, term.Expression())
	}
	return strings.Join(parts, " ")
}

// Evaluate resolves all die terms with a deterministic seeded RNG and
// returns the formula total.
//
// # Determinism
//
// Evaluate is deterministic with respect to seed: the same seed and the
// same term sequence always produce the same results and total.
//
// # Supplied results
//
// A die term whose Results slice is already populated keeps those results;
// only unresolved die terms consume random values. Terms are resolved in
// sequence order.
func Evaluate(terms []Term, seed int64) (int, error) {
	if len(terms) == 0 {
		return 0, ErrEmptyFormula
	}

	rng := rand.New(rand.NewSource(seed))
	total := 0
	sign := 1

	for _, term := range terms {
		switch t := term.(type) {
		case *DieTerm:
			if t.Count <= 0 || t.Faces <= 0 {
				return 0, ErrInvalidDieTerm
			}
			if t.Results == nil {
				results := make([]int, t.Count)
				for i := range results {
					results[i] = rng.Intn(t.Faces) + 1
				}
				t.Results = results
			}
			total += sign * t.Total()
			sign = 1
		case *OperatorTerm:
			if t.Op == OpMinus {
				sign = -1
			} else {
				sign = 1
			}
		case *NumericTerm:
			total += sign * t.Value
			sign = 1
		}
	}

	return total, nil
}

func annotationSuffix(annotation string) string {
	if annotation == "" {
		return ""
	}
	return "[" + annotation + "]"
}

// tokenize splits an expression into die/operator/value tokens. Bracketed
// annotations bind to the preceding token and never split.
func tokenize(expr string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inAnnotation := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range expr {
		switch {
		case inAnnotation:
			current.WriteRune(r)
			if r == ']' {
				inAnnotation = false
			}
		case r == '[':
			current.WriteRune(r)
			inAnnotation = true
		case r == '+' || r == '-':
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	if inAnnotation {
		return nil, fmt.Errorf("%w: unterminated annotation", ErrInvalidFormula)
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyFormula
	}
	return tokens, nil
}

func parseDieToken(token string) (*DieTerm, error) {
	body, annotation, err := splitAnnotation(token)
	if err != nil {
		return nil, err
	}

	countStr, facesStr, found := strings.Cut(body, "d")
	if !found {
		return nil, fmt.Errorf("%w: expected die term, got %q", ErrInvalidFormula, token)
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return nil, fmt.Errorf("%w: die count in %q", ErrInvalidFormula, token)
	}
	faces, err := strconv.Atoi(facesStr)
	if err != nil {
		return nil, fmt.Errorf("%w: die faces in %q", ErrInvalidFormula, token)
	}
	if count <= 0 || faces <= 0 {
		return nil, ErrInvalidDieTerm
	}

	return &DieTerm{Count: count, Faces: faces, Annotation: annotation}, nil
}

func parseOperatorToken(token string) (Op, error) {
	switch token {
	case "+":
		return OpPlus, nil
	case "-":
		return OpMinus, nil
	default:
		return 0, fmt.Errorf("%w: expected operator, got %q", ErrInvalidFormula, token)
	}
}

func parseNumericToken(token string, data map[string]int) (*NumericTerm, error) {
	body, annotation, err := splitAnnotation(token)
	if err != nil {
		return nil, err
	}

	if name, isRef := strings.CutPrefix(body, "@"); isRef {
		value, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("%w: @%s", ErrUnknownReference, name)
		}
		if annotation == "" {
			annotation = name
		}
		return &NumericTerm{Value: value, Annotation: annotation}, nil
	}

	value, err := strconv.Atoi(body)
	if err != nil {
		return nil, fmt.Errorf("%w: expected number, got %q", ErrInvalidFormula, token)
	}
	return &NumericTerm{Value: value, Annotation: annotation}, nil
}

func splitAnnotation(token string) (body, annotation string, err error) {
	open := strings.IndexByte(token, '[')
	if open == -1 {
		return token, "", nil
	}
	if !strings.HasSuffix(token, "]") {
		return "", "", fmt.Errorf("%w: malformed annotation in %q", ErrInvalidFormula, token)
	}
	return token[:open], token[open+1 : len(token)-1], nil
}
