package powerroll

import (
	"strings"

	apperrors "github.com/Taroc0/draw-steel/internal/platform/errors"
)

// Type classifies a power roll.
type Type int

const (
	TypeUnspecified Type = iota
	TypeAbility
	TypeResistance
	TypeTest
)

// String returns the wire/config form of the type.
func (t Type) String() string {
	switch t {
	case TypeAbility:
		return "ability"
	case TypeResistance:
		return "resistance"
	case TypeTest:
		return "test"
	default:
		return "unspecified"
	}
}

// LabelKey returns the localization key for the type's display label.
func (t Type) LabelKey() string {
	switch t {
	case TypeAbility:
		return "powerroll.type.ability"
	case TypeResistance:
		return "powerroll.type.resistance"
	case TypeTest:
		return "powerroll.type.test"
	default:
		return ""
	}
}

// Valid reports whether the type is one of the three enumerated values.
func (t Type) Valid() bool {
	return t == TypeAbility || t == TypeResistance || t == TypeTest
}

// ParseType maps a config string to a roll type.
func ParseType(value string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ability":
		return TypeAbility, nil
	case "resistance":
		return TypeResistance, nil
	case "test":
		return TypeTest, nil
	default:
		return TypeUnspecified, apperrors.WithMetadata(
			apperrors.CodeRollInvalidType,
			"roll type must be ability, resistance, or test",
			map[string]string{"type": value},
		)
	}
}
