// Package errors provides structured error handling with message catalogs.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Actor errors
	CodeActorEmptyID               Code = "ACTOR_EMPTY_ID"
	CodeActorEmptyName             Code = "ACTOR_EMPTY_NAME"
	CodeActorNotFound              Code = "ACTOR_NOT_FOUND"
	CodeActorInvalidCharacteristic Code = "ACTOR_INVALID_CHARACTERISTIC"

	// Test errors
	CodeTestEmptyID         Code = "TEST_EMPTY_ID"
	CodeTestInvalidRoll     Code = "TEST_INVALID_ROLL"
	CodeTestInvalidOutcome  Code = "TEST_INVALID_OUTCOME"
	CodeTestAlreadyResolved Code = "TEST_ALREADY_RESOLVED"

	// Reroll errors
	CodeRerollNotFound      Code = "REROLL_NOT_FOUND"
	CodeRerollActorMismatch Code = "REROLL_ACTOR_MISMATCH"

	// Stress errors
	CodeStressInvalidLevel Code = "STRESS_INVALID_LEVEL"

	// Dice/mechanics errors
	CodeDiceMissing     Code = "DICE_MISSING"
	CodeDiceInvalidSpec Code = "DICE_INVALID_SPEC"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// IsInvalidArgument reports whether the code describes caller input that
// can never succeed as sent.
func (c Code) IsInvalidArgument() bool {
	switch c {
	case CodeActorEmptyID,
		CodeActorEmptyName,
		CodeActorInvalidCharacteristic,
		CodeTestEmptyID,
		CodeTestInvalidRoll,
		CodeTestInvalidOutcome,
		CodeStressInvalidLevel,
		CodeDiceMissing,
		CodeDiceInvalidSpec:
		return true
	default:
		return false
	}
}

// IsFailedPrecondition reports whether the code describes a request that is
// well formed but conflicts with stored state.
func (c Code) IsFailedPrecondition() bool {
	switch c {
	case CodeTestAlreadyResolved,
		CodeRerollNotFound,
		CodeRerollActorMismatch:
		return true
	default:
		return false
	}
}
