package domain

import "math"

// Observation es la temperatura máxima de un día para una ciudad, sea
// observación histórica o pronóstico. El core no distingue la fuente más
// allá de "¿la fecha está en el pasado o en el futuro?".
type Observation struct {
	TempMax      float64 // °F
	ForecastTime string  // hora de captura del pronóstico, si aplica
}

// ProbabilityResult es la estimación heurística de probabilidad para un contrato.
type ProbabilityResult struct {
	Probability float64 // fair price, clavado a [0.01, 0.99]
	ThresholdF  float64
	ActualF     float64
}

// Banda lineal de transición para contratos or-above/or-below: 3 grados
// centrados en el umbral (±1.5°F), pendiente 1/2.5.
const (
	transitionEdge  = 1.5
	transitionSlope = 2.5

	probFloor = 0.01
	probCeil  = 0.99
)

// CalculateProbability convierte temperatura y umbral en un fair price para
// el contrato según su qualifier. El resultado nunca es exactamente 0 ni 1:
// el clavado a [0.01, 0.99] mantiene bien definido el edge aguas abajo.
func CalculateProbability(obs Observation, question string) ProbabilityResult {
	ti := ParseThreshold(question)
	diff := obs.TempMax - ti.Value

	var prob float64
	switch ClassifyQualifier(question) {
	case QualifierBelow:
		switch {
		case diff < -transitionEdge:
			prob = 0.98
		case diff > transitionEdge:
			prob = 0.02
		default:
			prob = 0.5 - diff/transitionSlope
		}
	case QualifierAbove:
		switch {
		case diff > transitionEdge:
			prob = 0.98
		case diff < -transitionEdge:
			prob = 0.02
		default:
			prob = 0.5 + diff/transitionSlope
		}
	default: // bucket discreto: decae en escalones por |diff|
		abs := math.Abs(diff)
		switch {
		case abs < 0.5:
			prob = 0.90
		case abs < 1.0:
			prob = 0.70
		case abs < 1.5:
			prob = 0.30
		case abs < 2.0:
			prob = 0.10
		default:
			prob = 0.02
		}
	}

	return ProbabilityResult{
		Probability: clamp(prob, probFloor, probCeil),
		ThresholdF:  ti.Value,
		ActualF:     obs.TempMax,
	}
}

// Tolerancias de resolución: un bucket discreto resuelve YES dentro de ±1.1°F
// del umbral; los contratos abiertos llevan un margen de 0.1°F en la frontera.
const (
	discreteTolerance = 1.1
	boundaryMargin    = 0.1
)

// DetermineResolution es el oráculo de resolución por clima: devuelve 1.0 si
// el token YES habría resuelto verdadero dada la temperatura observada.
// Es el fallback cuando el cierre oficial del mercado no es concluyente
// (ver Market.OfficialResolution).
func DetermineResolution(obs Observation, question string) float64 {
	ti := ParseThreshold(question)
	actual := obs.TempMax

	switch ClassifyQualifier(question) {
	case QualifierBelow:
		if actual <= ti.Value+boundaryMargin {
			return 1.0
		}
	case QualifierAbove:
		if actual >= ti.Value-boundaryMargin {
			return 1.0
		}
	default:
		if math.Abs(actual-ti.Value) < discreteTolerance {
			return 1.0
		}
	}
	return 0.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
