package prediction

import (
	"math"
	"math/rand"
)

// Estimator defaults. The reference tilt and nominal operating point are
// fleet-level heuristics, not panel datasheet values, so they stay
// configurable on the Estimator.
const (
	DefaultReferenceTiltDeg = 35.0
	DefaultNominalVoltageV  = 35.0
	DefaultNominalCurrentA  = 8.5

	// MaxLossPct is the hard cap on total reported efficiency loss.
	MaxLossPct = 50.0

	stcTemperatureC = 25.0
)

// Estimator combines independent environmental loss factors into a bounded
// efficiency-loss percentage with a categorical status and recommendations.
// Identical input always yields identical output unless jitter is injected.
type Estimator struct {
	ReferenceTiltDeg float64
	NominalVoltageV  float64
	NominalCurrentA  float64

	// jitter, when set, adds uniform noise of +-jitterAmplitudePct to the
	// total loss before clamping. Presentation-only; off by default.
	jitter             *rand.Rand
	jitterAmplitudePct float64
}

// NewEstimator returns an Estimator with the stock heuristic constants and
// no jitter.
func NewEstimator() *Estimator {
	return &Estimator{
		ReferenceTiltDeg: DefaultReferenceTiltDeg,
		NominalVoltageV:  DefaultNominalVoltageV,
		NominalCurrentA:  DefaultNominalCurrentA,
	}
}

// WithJitter enables seedable presentation noise on the total loss. Passing
// a nil source disables it again.
func (e *Estimator) WithJitter(r *rand.Rand, amplitudePct float64) *Estimator {
	e.jitter = r
	e.jitterAmplitudePct = amplitudePct
	return e
}

// Estimate produces an EfficiencyResult for one environment sample and an
// optional panel orientation. It never fails: malformed numeric input is
// sanitized to the nearest physical value rather than rejected.
func (e *Estimator) Estimate(sample EnvironmentSample, orientation *PanelOrientation) EfficiencyResult {
	s := sanitizeSample(sample)

	tempLoss := math.Max(0, (s.TemperatureC-stcTemperatureC)*0.4)

	var tiltMismatchDeg, tiltLoss float64
	if orientation != nil {
		tilt := clampF(orientation.TiltDeg, 0, 90)
		tiltMismatchDeg = math.Abs(tilt - e.ReferenceTiltDeg)
		tiltLoss = tiltMismatchDeg / 90 * 15
	}

	irradianceFactor := 1.0
	switch {
	case s.IrradianceWm2 < 200:
		irradianceFactor = 0.6
	case s.IrradianceWm2 < 500:
		irradianceFactor = 0.85
	}
	irradianceLoss := (1 - irradianceFactor) * 20

	ageLoss := float64(s.DaysSinceInstall) / 365 * 0.5

	humidityLoss := 0.5
	switch {
	case s.HumidityPct > 80:
		humidityLoss = 2.5
	case s.HumidityPct > 60:
		humidityLoss = 1.2
	}

	cloudLoss := s.CloudCoverPct * 0.12
	soilingLoss := s.SoilingPct * 0.8

	electricalLoss := (math.Abs(s.VoltageV-e.NominalVoltageV)/e.NominalVoltageV +
		math.Abs(s.CurrentA-e.NominalCurrentA)/e.NominalCurrentA) * 5

	windBenefit := math.Min(2, s.WindSpeedMs*0.3)

	total := tempLoss + tiltLoss + irradianceLoss + ageLoss +
		humidityLoss + cloudLoss + soilingLoss + electricalLoss - windBenefit

	if e.jitter != nil && e.jitterAmplitudePct > 0 {
		total += (e.jitter.Float64()*2 - 1) * e.jitterAmplitudePct
	}

	total = clampF(total, 0, MaxLossPct)
	predicted := 100 - total
	status := statusForEfficiency(predicted)

	recs := []string{baseRecommendation(status)}
	// Conditional recommendations accumulate in factor evaluation order:
	// temperature, tilt, irradiance, cloud, soiling, electrical.
	if tempLoss > 4 {
		recs = append(recs, "High cell temperature, improve airflow around the array")
	}
	if tiltMismatchDeg > 15 {
		recs = append(recs, "Adjust tilt angle toward the reference optimum")
	}
	if s.IrradianceWm2 < 200 {
		recs = append(recs, "Low-light conditions, reduced output is expected")
	}
	if s.CloudCoverPct > 60 {
		recs = append(recs, "Heavy cloud cover is limiting output")
	}
	if s.SoilingPct > 5 {
		recs = append(recs, "Schedule panel cleaning")
	}
	if electricalLoss > 2 {
		recs = append(recs, "Inspect wiring and connectors for electrical mismatch")
	}

	return EfficiencyResult{
		EfficiencyLossPct:      total,
		PredictedEfficiencyPct: predicted,
		Status:                 status,
		Factors: map[FactorName]float64{
			FactorTemperature:        tempLoss,
			FactorTilt:               tiltLoss,
			FactorIrradiance:         irradianceLoss,
			FactorAge:                ageLoss,
			FactorHumidity:           humidityLoss,
			FactorCloud:              cloudLoss,
			FactorSoiling:            soilingLoss,
			FactorElectricalMismatch: electricalLoss,
			FactorWindBenefit:        windBenefit,
		},
		Recommendations: recs,
		Source:          SourceSimulation,
	}
}

func statusForEfficiency(predictedPct float64) Status {
	switch {
	case predictedPct >= 90:
		return StatusOptimal
	case predictedPct >= 80:
		return StatusGood
	case predictedPct >= 65:
		return StatusFair
	case predictedPct >= 50:
		return StatusPoor
	default:
		return StatusCritical
	}
}

func baseRecommendation(s Status) string {
	switch s {
	case StatusOptimal:
		return "Panel performing optimally"
	case StatusGood:
		return "Minor efficiency loss detected, monitor regularly"
	case StatusFair:
		return "Consider scheduling a maintenance inspection"
	case StatusPoor:
		return "Significant efficiency loss, maintenance recommended"
	default:
		return "Immediate inspection recommended"
	}
}

// sanitizeSample clamps out-of-range or non-finite inputs to the nearest
// physical value. The system prefers a usable estimate over strict
// validation; the HTTP layer reports validation warnings separately.
func sanitizeSample(s EnvironmentSample) EnvironmentSample {
	s.TemperatureC = finiteOr(s.TemperatureC, stcTemperatureC)
	s.HumidityPct = clampF(finiteOr(s.HumidityPct, 0), 0, 100)
	s.WindSpeedMs = math.Max(0, finiteOr(s.WindSpeedMs, 0))
	s.IrradianceWm2 = math.Max(0, finiteOr(s.IrradianceWm2, 0))
	s.VoltageV = math.Max(0, finiteOr(s.VoltageV, 0))
	s.CurrentA = math.Max(0, finiteOr(s.CurrentA, 0))
	if s.DaysSinceInstall < 0 {
		s.DaysSinceInstall = 0
	}
	s.CloudCoverPct = clampF(finiteOr(s.CloudCoverPct, 0), 0, 100)
	s.SoilingPct = clampF(finiteOr(s.SoilingPct, 0), 0, 100)
	return s
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
