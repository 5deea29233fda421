package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
const (
	CodeActorEmptyID               = "ACTOR_EMPTY_ID"
	CodeActorEmptyName             = "ACTOR_EMPTY_NAME"
	CodeActorNotFound              = "ACTOR_NOT_FOUND"
	CodeActorInvalidCharacteristic = "ACTOR_INVALID_CHARACTERISTIC"
	CodeTestEmptyID                = "TEST_EMPTY_ID"
	CodeTestInvalidRoll            = "TEST_INVALID_ROLL"
	CodeTestInvalidOutcome         = "TEST_INVALID_OUTCOME"
	CodeTestAlreadyResolved        = "TEST_ALREADY_RESOLVED"
	CodeRerollNotFound             = "REROLL_NOT_FOUND"
	CodeRerollActorMismatch        = "REROLL_ACTOR_MISMATCH"
	CodeStressInvalidLevel         = "STRESS_INVALID_LEVEL"
	CodeDiceMissing                = "DICE_MISSING"
	CodeDiceInvalidSpec            = "DICE_INVALID_SPEC"
	CodeNotFound                   = "NOT_FOUND"
)

var enUSMessages = map[Code]string{
	CodeActorEmptyID:               "actor id is required",
	CodeActorEmptyName:             "actor name is required",
	CodeActorNotFound:              `actor "{{.ActorID}}" was not found`,
	CodeActorInvalidCharacteristic: "{{.Characteristic}} must be between 0 and 200, got {{.Value}}",
	CodeTestEmptyID:                "test id is required",
	CodeTestInvalidRoll:            "roll {{.Roll}} is outside 1-100",
	CodeTestInvalidOutcome:         `outcome "{{.Outcome}}" must be success or failure`,
	CodeTestAlreadyResolved:        `test "{{.TestID}}" was already applied; mark it as a reroll to replace it`,
	CodeRerollNotFound:             `no earlier result for test "{{.TestID}}" to reroll`,
	CodeRerollActorMismatch:        `test "{{.TestID}}" belongs to another actor`,
	CodeStressInvalidLevel:         `stress level "{{.Level}}" must be minor, moderate, or major`,
	CodeDiceMissing:                "at least one die must be provided",
	CodeDiceInvalidSpec:            "dice must have positive sides and count",
	CodeNotFound:                   "record not found",
}
