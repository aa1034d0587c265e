// Package fleet synthesizes environment samples for the configured demo
// fleet, so the dashboard endpoints have live data without real hardware.
package fleet

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/solarwatch/panel-insights/internal/prediction"
	"github.com/solarwatch/panel-insights/internal/solar"
)

// Panel is one configured fleet member.
type Panel struct {
	ID          string                      `json:"id"`
	LatitudeDeg float64                     `json:"latitudeDeg"`
	Orientation prediction.PanelOrientation `json:"orientation"`
	InstalledAt time.Time                   `json:"installedAt"`
}

// Sampler generates plausible environment samples for fleet panels. All
// randomness comes from one seeded source, so a fixed seed and call
// sequence reproduce the same fleet history exactly.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand

	// soiling accumulates per panel between simulated cleanings.
	soiling map[string]float64
}

// NewSampler creates a Sampler from a seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{
		rng:     rand.New(rand.NewSource(seed)),
		soiling: make(map[string]float64),
	}
}

// SampleAt synthesizes an environment sample for a panel at the given time.
// Irradiance follows the solar elevation with cloud attenuation; temperature
// follows a diurnal curve; soiling accumulates slowly until a simulated
// cleaning resets it.
func (s *Sampler) SampleAt(p Panel, t time.Time) prediction.EnvironmentSample {
	s.mu.Lock()
	defer s.mu.Unlock()

	utc := t.UTC()
	hour := float64(utc.Hour()) + float64(utc.Minute())/60
	elev := solar.Elevation(p.LatitudeDeg, hour, utc.YearDay())

	cloud := clamp(20+s.rng.Float64()*55, 0, 100)

	irradiance := 0.0
	if elev > 0 {
		clearSky := 1050 * math.Sin(elev*math.Pi/180)
		irradiance = math.Max(0, clearSky*(1-0.75*cloud/100))
	}

	temp := 14 + 16*math.Max(0, math.Sin(elev*math.Pi/180)) + (s.rng.Float64()*4 - 2)
	humidity := clamp(85-temp+s.rng.Float64()*10, 20, 100)
	wind := s.rng.Float64() * 8

	voltage := 0.0
	current := 0.0
	if irradiance > 50 {
		voltage = 33.5 + s.rng.Float64()*3
		current = clamp(8.5*irradiance/1000, 0, 10)
	}

	soil := s.soiling[p.ID] + 0.02 + s.rng.Float64()*0.04
	if soil > 8 {
		soil = 0 // cleaning crew came by
	}
	s.soiling[p.ID] = soil

	days := 0
	if !p.InstalledAt.IsZero() && utc.After(p.InstalledAt) {
		days = int(utc.Sub(p.InstalledAt).Hours() / 24)
	}

	return prediction.EnvironmentSample{
		TemperatureC:     temp,
		HumidityPct:      humidity,
		WindSpeedMs:      wind,
		IrradianceWm2:    irradiance,
		VoltageV:         voltage,
		CurrentA:         current,
		DaysSinceInstall: days,
		CloudCoverPct:    cloud,
		SoilingPct:       soil,
	}
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
