package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseThreshold_Fahrenheit(t *testing.T) {
	ti := ParseThreshold("Will the highest temperature in London on January 26 be 75°F or higher?")

	assert.True(t, ti.Valid)
	assert.Equal(t, 75.0, ti.Value)
	assert.Equal(t, "F", ti.Unit)
	assert.Empty(t, ti.OriginalUnit)
}

func TestParseThreshold_CelsiusConversion(t *testing.T) {
	ti := ParseThreshold("Will the highest temperature in Seoul on March 3 be -2°C or below?")

	assert.True(t, ti.Valid)
	assert.InDelta(t, 28.4, ti.Value, 0.0001) // -2*9/5 + 32
	assert.Equal(t, "F", ti.Unit)
	assert.Equal(t, -2.0, ti.Original)
	assert.Equal(t, "C", ti.OriginalUnit)
}

func TestParseThreshold_RangeMidpoint(t *testing.T) {
	ti := ParseThreshold("Will the highest temperature in NYC be 59-60°F on March 3?")

	assert.True(t, ti.Valid)
	assert.Equal(t, 59.5, ti.Value)
	assert.Equal(t, "F", ti.Unit)
}

func TestParseThreshold_RangeCelsiusMarker(t *testing.T) {
	// Rango sin unidad en el capture, pero con marcador Celsius en el texto.
	ti := ParseThreshold("Highest temperature between 10 to 20 degrees Celsius?")

	assert.True(t, ti.Valid)
	assert.InDelta(t, 59.0, ti.Value, 0.0001) // midpoint 15°C → 59°F
	assert.Equal(t, 15.0, ti.Original)
	assert.Equal(t, "C", ti.OriginalUnit)
}

func TestParseThreshold_BareNumberAssumesFahrenheit(t *testing.T) {
	ti := ParseThreshold("Will the highest temperature be 82 degrees?")

	assert.True(t, ti.Valid)
	assert.Equal(t, 82.0, ti.Value)
	assert.Equal(t, "F", ti.Unit)
}

func TestParseThreshold_Unparsable(t *testing.T) {
	ti := ParseThreshold("Will it be the hottest day of the year?")

	assert.False(t, ti.Valid)
	assert.Equal(t, 0.0, ti.Value)
	assert.Equal(t, "F", ti.Unit)
}

func TestClassifyQualifier(t *testing.T) {
	cases := []struct {
		question string
		want     Qualifier
	}{
		{"be 75°F or higher?", QualifierAbove},
		{"exceed 30°C?", QualifierAbove},
		{"be above 80°F?", QualifierAbove},
		{"be 40°F or below?", QualifierBelow},
		{"be less than 50°F?", QualifierBelow},
		{"be 75°F on January 26?", QualifierDiscrete},
		{"be 59-60°F on March 3?", QualifierDiscrete},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyQualifier(tc.question), tc.question)
	}
}

func TestQualifier_String(t *testing.T) {
	assert.Equal(t, "ABOVE", QualifierAbove.String())
	assert.Equal(t, "BELOW", QualifierBelow.String())
	assert.Equal(t, "DISCRETE", QualifierDiscrete.String())
}
