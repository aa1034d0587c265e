package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/solarwatch/panel-insights/internal/fleet"
	"github.com/solarwatch/panel-insights/internal/prediction"
)

type AppConfig struct {
	// MLAPIURL is the base URL of the remote efficiency-loss model service.
	MLAPIURL string

	// MLTimeout bounds interactive remote calls; MLBatchTimeout bounds
	// batch and image calls.
	MLTimeout      time.Duration
	MLBatchTimeout time.Duration

	// RefreshInterval controls how often fleet snapshots are refreshed.
	RefreshInterval time.Duration

	// Panels is the simulated demo fleet.
	Panels []fleet.Panel

	// SimSeed seeds the fleet sampler and the stub classifier; 0 means
	// time-seeded.
	SimSeed int64

	// In-memory store retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.MLAPIURL = getenvDefault("ML_API_URL", "http://localhost:5001")

	timeout, err := time.ParseDuration(getenvDefault("ML_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ML_TIMEOUT: %w", err)
	}
	cfg.MLTimeout = timeout

	batchTimeout, err := time.ParseDuration(getenvDefault("ML_BATCH_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ML_BATCH_TIMEOUT: %w", err)
	}
	cfg.MLBatchTimeout = batchTimeout

	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals

	maxAge, err := time.ParseDuration(getenvDefault("STORE_MAX_AGE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.SimSeed = int64(getenvInt("SIM_SEED", 0))
	cfg.Port = getenvDefault("PORT", "8080")

	panels, err := ParseFleetPanels(os.Getenv("FLEET_PANELS"))
	if err != nil {
		return nil, err
	}
	cfg.Panels = panels

	return cfg, nil
}

// ParseFleetPanels parses the FLEET_PANELS value: comma-separated
// "id:latitude:tilt:azimuth" entries, e.g. "roof-a:28.6:30:180,roof-b:52.2:35:170".
// An empty value yields an empty fleet (the scheduler then idles).
func ParseFleetPanels(raw string) ([]fleet.Panel, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	installed := time.Now().UTC().AddDate(-2, 0, 0) // demo fleet is "two years old"

	var panels []fleet.Panel
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("invalid FLEET_PANELS entry %q: want id:latitude:tilt:azimuth", entry)
		}

		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in FLEET_PANELS entry %q: %w", entry, err)
		}
		tilt, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tilt in FLEET_PANELS entry %q: %w", entry, err)
		}
		azimuth, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid azimuth in FLEET_PANELS entry %q: %w", entry, err)
		}

		panels = append(panels, fleet.Panel{
			ID:          parts[0],
			LatitudeDeg: lat,
			Orientation: prediction.PanelOrientation{
				TiltDeg:    tilt,
				AzimuthDeg: azimuth,
			},
			InstalledAt: installed,
		})
	}

	return panels, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
