package dice

import "math/rand"

// Percentile is a d100 roll read from a tens die and a units die, both 0-9.
// A double zero reads as 100.
type Percentile struct {
	Tens  int
	Units int
	Value int
}

// NewPercentile builds a Percentile from its two dice faces.
func NewPercentile(tens, units int) Percentile {
	value := tens*10 + units
	if value == 0 {
		value = 100
	}
	return Percentile{Tens: tens, Units: units, Value: value}
}

// RollPercentile rolls a d100 from rng.
func RollPercentile(rng *rand.Rand) Percentile {
	result, err := RollWithRng(rng, []Spec{{Sides: 10, Count: 2}})
	if err != nil {
		// 2d10 is a fixed, valid request.
		panic(err)
	}
	return NewPercentile(result.Rolls[0].Results[0]-1, result.Rolls[0].Results[1]-1)
}

// RollPercentileSeed rolls a d100 deterministically from seed.
func RollPercentileSeed(seed int64) Percentile {
	return RollPercentile(rand.New(rand.NewSource(seed)))
}
