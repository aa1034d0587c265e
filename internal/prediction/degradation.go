package prediction

import (
	"fmt"
	"math"
)

// Degradation index weights for the normalized stress terms.
const (
	thermalWeight    = 0.30
	humidityWeight   = 0.20
	electricalWeight = 0.30
	agingWeight      = 0.20

	// expectedLifespanDays normalizes aging stress (~25 years).
	expectedLifespanDays = 25 * 365

	projectionMonths = 12
)

// PredictDegradation computes a composite degradation index in [0,1] from
// normalized thermal, humidity, electrical and aging stress, with a simple
// monthly-rate projection of remaining efficiency.
func PredictDegradation(f StressFactors) DegradationResult {
	thermal := math.Max(0, finiteOr(f.TemperatureC, stcTemperatureC)-stcTemperatureC)
	humidity := clampF(finiteOr(f.HumidityPct, 0), 0, 100) / 100

	electrical := 0.0
	if f.VoltageMaxV > 0 {
		electrical += (f.VoltageMaxV - f.VoltageMinV) / f.VoltageMaxV
	}
	if f.CurrentMaxA > 0 {
		electrical += (f.CurrentMaxA - f.CurrentMinA) / f.CurrentMaxA
	}
	electrical = math.Max(0, electrical)

	days := f.DaysSinceInstall
	if days < 0 {
		days = 0
	}
	aging := math.Min(1, float64(days)/expectedLifespanDays)

	index := clampF(
		thermalWeight*thermal+
			humidityWeight*humidity+
			electricalWeight*electrical+
			agingWeight*aging,
		0, 1)

	status, rec := degradationBand(index)
	rate := monthlyRateFor(index)

	return DegradationResult{
		DegradationIndex: index,
		Status:           status,
		MonthlyRatePct:   rate,
		Recommendation:   rec,
		StressBreakdown: map[string]float64{
			"thermal":    thermal,
			"humidity":   humidity,
			"electrical": electrical,
			"aging":      aging,
		},
		Projections: projectDecline(rate),
		Source:      SourceSimulation,
	}
}

func degradationBand(index float64) (DegradationStatus, string) {
	switch {
	case index < 0.4:
		return DegradationHealthy, "No action required"
	case index < 0.7:
		return DegradationDegrading, "Schedule preventive maintenance"
	default:
		return DegradationCritical, "Immediate inspection required"
	}
}

// monthlyRateFor converts the index into a monthly efficiency decline rate:
// ~0.5 %/year baseline scaling with stress up to ~3.5 %/year at index 1.
func monthlyRateFor(index float64) float64 {
	return 0.04 + 0.25*index
}

func projectDecline(monthlyRatePct float64) []DegradationProjection {
	projections := make([]DegradationProjection, 0, projectionMonths)
	for m := 1; m <= projectionMonths; m++ {
		projections = append(projections, DegradationProjection{
			Month:         m,
			EfficiencyPct: math.Max(0, 100-monthlyRatePct*float64(m)),
		})
	}
	return projections
}

// String implements fmt.Stringer for log lines.
func (r DegradationResult) String() string {
	return fmt.Sprintf("degradation index=%.3f status=%s rate=%.2f%%/mo",
		r.DegradationIndex, r.Status, r.MonthlyRatePct)
}
