package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Qualifier clasifica cómo resuelve un contrato respecto a su umbral.
type Qualifier int

const (
	// QualifierDiscrete es un bucket exacto ("be 75°F on...").
	QualifierDiscrete Qualifier = iota
	// QualifierAbove resuelve YES si la temperatura alcanza o supera el umbral.
	QualifierAbove
	// QualifierBelow resuelve YES si la temperatura queda en o bajo el umbral.
	QualifierBelow
)

func (q Qualifier) String() string {
	switch q {
	case QualifierAbove:
		return "ABOVE"
	case QualifierBelow:
		return "BELOW"
	}
	return "DISCRETE"
}

// ClassifyQualifier determina el qualifier a partir del texto de la pregunta.
// El vocabulario ABOVE/BELOW se comprueba antes de caer a DISCRETE: cualquier
// redacción fuera del vocabulario conocido es DISCRETE por diseño, no un error.
func ClassifyQualifier(question string) Qualifier {
	s := strings.ToLower(question)
	switch {
	case strings.Contains(s, "or higher"),
		strings.Contains(s, "exceed"),
		strings.Contains(s, "above"):
		return QualifierAbove
	case strings.Contains(s, "or below"),
		strings.Contains(s, "below"),
		strings.Contains(s, "less than"):
		return QualifierBelow
	}
	return QualifierDiscrete
}

// ThresholdInfo es el umbral numérico extraído de la pregunta, normalizado
// a Fahrenheit. Se deriva una vez por contrato y es inmutable.
type ThresholdInfo struct {
	Value        float64 // °F
	Unit         string  // siempre "F"
	Original     float64 // valor Celsius original, si aplica
	OriginalUnit string  // "C" si hubo conversión
	Valid        bool    // false si la pregunta no contenía ningún número
}

var (
	// Rango "N1-N2" o "N1 to N2" con marcador de unidad opcional al final.
	reRange = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(?:-|to\s)\s*(-?\d+(?:\.\d+)?)\s*°?\s*([CFcf])?\b`)
	// Número con unidad explícita: "75°F", "-2°C", "28 F".
	reUnit = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*°?\s*([CFcf])\b`)
	// Fallback: cualquier número con signo; se asume Fahrenheit.
	reBare = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	// Marcador Celsius en cualquier parte del texto.
	reCelsiusMark = regexp.MustCompile(`(?i)°\s*c\b|\bcelsius\b`)
)

// ParseThreshold extrae el umbral de temperatura de una pregunta.
//
//	"...75°F or higher?"  → {Value: 75, Unit: "F"}
//	"...-2°C or below?"   → {Value: 28.4, Unit: "F", Original: -2, OriginalUnit: "C"}
//	"...10-20 degrees?"   → {Value: 15, Unit: "F"} (punto medio del rango)
//
// Si no hay ningún número devuelve {Value: 0, Unit: "F", Valid: false}.
// 0°F es un umbral legítimo, así que los callers deben mirar Valid y no el
// valor para decidir si el contrato es puntuable.
func ParseThreshold(question string) ThresholdInfo {
	if m := reRange.FindStringSubmatch(question); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		mid := (lo + hi) / 2

		celsius := strings.EqualFold(m[3], "c")
		if !celsius && m[3] == "" {
			celsius = reCelsiusMark.MatchString(question)
		}
		if celsius {
			return ThresholdInfo{
				Value:        celsiusToFahrenheit(mid),
				Unit:         "F",
				Original:     mid,
				OriginalUnit: "C",
				Valid:        true,
			}
		}
		return ThresholdInfo{Value: mid, Unit: "F", Valid: true}
	}

	if m := reUnit.FindStringSubmatch(question); m != nil {
		val, _ := strconv.ParseFloat(m[1], 64)
		if strings.EqualFold(m[2], "c") {
			return ThresholdInfo{
				Value:        celsiusToFahrenheit(val),
				Unit:         "F",
				Original:     val,
				OriginalUnit: "C",
				Valid:        true,
			}
		}
		return ThresholdInfo{Value: val, Unit: "F", Valid: true}
	}

	if m := reBare.FindString(question); m != "" {
		val, _ := strconv.ParseFloat(m, 64)
		return ThresholdInfo{Value: val, Unit: "F", Valid: true}
	}

	return ThresholdInfo{Value: 0.0, Unit: "F", Valid: false}
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
