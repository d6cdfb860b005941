// Package errors provides structured error handling for the rules engine.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Roll configuration errors
	CodeRollInvalidType       Code = "ROLL_INVALID_TYPE"
	CodeRollInvalidEvaluation Code = "ROLL_INVALID_EVALUATION"

	// Formula errors
	CodeFormulaEmpty            Code = "FORMULA_EMPTY"
	CodeFormulaInvalid          Code = "FORMULA_INVALID"
	CodeFormulaUnknownReference Code = "FORMULA_UNKNOWN_REFERENCE"

	// Skill registry errors
	CodeSkillNotFound Code = "SKILL_NOT_FOUND"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Random/seed errors
	CodeSeedUnavailable Code = "SEED_UNAVAILABLE"
)
