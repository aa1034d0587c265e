package solar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclination_SummerSolstice(t *testing.T) {
	// Day 172 is close to the solstice; declination should be near the
	// tropic latitude.
	dec := Declination(172)
	assert.InDelta(t, 23.45, dec, 0.05)
}

func TestDeclination_WinterSolstice(t *testing.T) {
	dec := Declination(355)
	assert.InDelta(t, -23.45, dec, 0.1)
}

func TestHourAngle(t *testing.T) {
	assert.InDelta(t, 0.0, HourAngle(12), 1e-9)
	assert.InDelta(t, -90.0, HourAngle(6), 1e-9)
	assert.InDelta(t, 90.0, HourAngle(18), 1e-9)
}

func TestElevation_SolarNoon(t *testing.T) {
	// At solar noon, elevation = 90 - |latitude - declination|.
	lat := 28.6
	day := 172
	dec := Declination(day)

	elev := Elevation(lat, 12, day)
	assert.InDelta(t, 90-math.Abs(lat-dec), elev, 0.01)
	assert.InDelta(t, 84.85, elev, 0.2, "near overhead at the solstice")
}

func TestElevation_NoonIsDailyMaximum(t *testing.T) {
	lat := 45.0
	day := 100

	noon := Elevation(lat, 12, day)
	for h := 0.0; h < 24; h += 0.5 {
		assert.LessOrEqual(t, Elevation(lat, h, day), noon+1e-9, "hour %v", h)
	}
}

func TestElevation_BelowHorizonAtMidnight(t *testing.T) {
	elev := Elevation(45, 0, 172)
	assert.Less(t, elev, 0.0)
}

func TestElevation_NoDomainErrorAtPoles(t *testing.T) {
	for _, lat := range []float64{90, -90} {
		for h := 0.0; h < 24; h += 3 {
			elev := Elevation(lat, h, 172)
			assert.False(t, math.IsNaN(elev), "lat=%v hour=%v", lat, h)
		}
	}
}

func TestIncidentAngle_PerpendicularSun(t *testing.T) {
	// A flat panel under a zenith sun.
	assert.InDelta(t, 0.0, IncidentAngle(0, 180, 0, 90), 1e-6)

	// A panel tilted toward the equator-facing sun at matching elevation.
	assert.InDelta(t, 0.0, IncidentAngle(30, 180, 180, 60), 1e-6)
}

func TestIncidentAngle_SunBehindPanel(t *testing.T) {
	// Equator-facing panel, pole-facing light near the horizon.
	angle := IncidentAngle(60, 180, 0, 10)
	assert.Greater(t, angle, 90.0)

	eff := GeometricEfficiency(60, 180, 0, 10)
	assert.Equal(t, 0.0, eff)
}

func TestGeometricEfficiency_FullCapture(t *testing.T) {
	eff := GeometricEfficiency(30, 180, 180, 60)
	assert.InDelta(t, 100.0, eff, 1e-6)
}

func TestPanelNormal_AzimuthWraps(t *testing.T) {
	a := PanelNormal(30, -180)
	b := PanelNormal(30, 180)
	assert.InDelta(t, a.X, b.X, 1e-9)
	assert.InDelta(t, a.Y, b.Y, 1e-9)
	assert.InDelta(t, a.Z, b.Z, 1e-9)
}

func TestPanelNormal_TiltClamped(t *testing.T) {
	over := PanelNormal(120, 180)
	vertical := PanelNormal(90, 180)
	assert.InDelta(t, vertical.Y, over.Y, 1e-9)
}

func TestEffectiveIrradiance(t *testing.T) {
	// Tilt matching elevation captures the full GHI.
	assert.InDelta(t, 800.0, EffectiveIrradiance(800, 45, 45), 1e-9)

	// Sun below the horizon contributes nothing.
	assert.Equal(t, 0.0, EffectiveIrradiance(800, 30, -5))
	assert.Equal(t, 0.0, EffectiveIrradiance(800, 30, 0))

	// Larger mismatch, smaller projection.
	near := EffectiveIrradiance(800, 40, 45)
	far := EffectiveIrradiance(800, 0, 45)
	assert.Greater(t, near, far)
}
