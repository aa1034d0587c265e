package prediction

import (
	"math"

	"github.com/solarwatch/panel-insights/internal/solar"
)

// Default tilt sweep bounds and step, matching the range a roof-mounted
// panel can realistically be adjusted through.
const (
	DefaultTiltMinDeg  = 0.0
	DefaultTiltMaxDeg  = 60.0
	DefaultTiltStepDeg = 5.0
)

// TiltSweep bounds the tilt angles explored by the optimizer, inclusive of
// both ends.
type TiltSweep struct {
	MinDeg  float64 `json:"minDeg"`
	MaxDeg  float64 `json:"maxDeg"`
	StepDeg float64 `json:"stepDeg"`
}

// TiltConditions are the sun and weather inputs for one tilt sweep.
type TiltConditions struct {
	GhiWm2       float64 `json:"ghiWm2"`
	LatitudeDeg  float64 `json:"latitudeDeg"`
	HourOfDay    float64 `json:"hourOfDay"`
	DayOfYear    int     `json:"dayOfYear"`
	TemperatureC float64 `json:"temperatureC"`
}

// OptimizeTilt sweeps the tilt range for the angle maximizing net energy
// under the given conditions. The sweep uses a coarse thermal derate rather
// than the full loss model: the optimizer explores geometry, the estimator
// explores environment. Ties go to the lowest tilt. A sun at or below the
// horizon yields a well-formed all-zero curve with zero improvement.
func OptimizeTilt(cond TiltConditions, sweep TiltSweep) TiltOptimizationResult {
	loss := clampF(math.Max(0, (cond.TemperatureC-stcTemperatureC)*0.004)+0.1, 0, 0.3)
	return OptimizeTiltWithLoss(cond, sweep, loss)
}

// OptimizeTiltWithLoss runs the sweep with an externally predicted loss
// fraction, e.g. one returned by the remote model. The fraction is capped
// at 0.8 so a pathological prediction cannot zero the whole curve.
func OptimizeTiltWithLoss(cond TiltConditions, sweep TiltSweep, lossFraction float64) TiltOptimizationResult {
	if sweep.StepDeg <= 0 {
		sweep.StepDeg = DefaultTiltStepDeg
	}
	if sweep.MaxDeg <= sweep.MinDeg {
		sweep.MinDeg = DefaultTiltMinDeg
		sweep.MaxDeg = DefaultTiltMaxDeg
	}

	elev := solar.Elevation(cond.LatitudeDeg, cond.HourOfDay, cond.DayOfYear)

	ghi := math.Max(0, cond.GhiWm2)
	if elev <= 0 {
		ghi = 0
	}

	loss := clampF(lossFraction, 0, 0.8)

	var (
		curve      []TiltCurvePoint
		bestTilt   = sweep.MinDeg
		bestEnergy = math.Inf(-1)
	)
	// Half a step of slack so the inclusive upper bound survives float
	// accumulation.
	for tilt := sweep.MinDeg; tilt <= sweep.MaxDeg+sweep.StepDeg/2; tilt += sweep.StepDeg {
		t := math.Min(tilt, sweep.MaxDeg)
		effIrr := solar.EffectiveIrradiance(ghi, t, elev)
		net := math.Max(0, effIrr*(1-loss))

		curve = append(curve, TiltCurvePoint{
			TiltDeg:                t,
			EffectiveIrradianceWm2: effIrr,
			NetEnergyWm2:           net,
		})

		if net > bestEnergy {
			bestEnergy = net
			bestTilt = t
		}
	}

	// Fixed-tilt rule of thumb: set the panel to the site latitude.
	defaultTilt := math.Round(math.Abs(cond.LatitudeDeg))
	defaultEnergy := bestEnergy * 0.9
	if defaultTilt >= sweep.MinDeg && defaultTilt <= sweep.MaxDeg {
		defaultEnergy = nearestCurveEnergy(curve, defaultTilt)
	}

	improvement := 0.0
	if defaultEnergy > 0 {
		improvement = (bestEnergy - defaultEnergy) / defaultEnergy * 100
	}

	return TiltOptimizationResult{
		OptimalTiltDeg:        bestTilt,
		EstimatedEnergyWm2:    bestEnergy,
		SolarElevationDeg:     elev,
		EfficiencyLossPct:     loss * 100,
		EfficiencyRetainedPct: (1 - loss) * 100,
		DefaultTiltDeg:        defaultTilt,
		ImprovementPct:        improvement,
		TiltCurve:             curve,
		Source:                SourceSimulation,
	}
}

func nearestCurveEnergy(curve []TiltCurvePoint, tilt float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	best := curve[0]
	for _, p := range curve[1:] {
		if math.Abs(p.TiltDeg-tilt) < math.Abs(best.TiltDeg-tilt) {
			best = p
		}
	}
	return best.NetEnergyWm2
}
