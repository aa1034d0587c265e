package mlclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarwatch/panel-insights/internal/prediction"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.Client(), srv.URL, 2*time.Second, 5*time.Second)
}

func TestPredictEfficiencyLoss_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict/efficiency-loss", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "temperature")
		assert.Contains(t, body, "wind_speed")
		assert.Contains(t, body, "days_since_installation")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"efficiency_loss": 6.4,
			"status":          "good",
			"recommendation":  "Minor efficiency loss detected, monitor regularly",
		})
	})

	res, err := c.PredictEfficiencyLoss(context.Background(), prediction.EnvironmentSample{
		TemperatureC: 32, HumidityPct: 55, WindSpeedMs: 2, IrradianceWm2: 850,
		VoltageV: 35, CurrentA: 8.2, DaysSinceInstall: 400,
	})

	require.NoError(t, err)
	assert.Equal(t, prediction.SourceMLModel, res.Source)
	assert.InDelta(t, 6.4, res.EfficiencyLossPct, 1e-9)
	assert.InDelta(t, 93.6, res.PredictedEfficiencyPct, 1e-9)
	assert.Contains(t, res.Recommendations, "Minor efficiency loss detected, monitor regularly")
}

func TestPredictEfficiencyLoss_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := c.PredictEfficiencyLoss(context.Background(), prediction.EnvironmentSample{})
	assert.Error(t, err)
}

func TestPredictEfficiencyLoss_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := c.PredictEfficiencyLoss(context.Background(), prediction.EnvironmentSample{})
	assert.Error(t, err)
}

func TestPredictEfficiencyLoss_UnsuccessfulFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false})
	})

	_, err := c.PredictEfficiencyLoss(context.Background(), prediction.EnvironmentSample{})
	assert.Error(t, err)
}

func TestPredictEfficiencyLoss_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.Client(), srv.URL, 20*time.Millisecond, 20*time.Millisecond)
	_, err := c.PredictEfficiencyLoss(context.Background(), prediction.EnvironmentSample{})
	assert.Error(t, err)
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusBadGateway)
	})

	// gobreaker trips after more than five consecutive failures.
	for i := 0; i < 6; i++ {
		_, err := c.PredictEfficiencyLoss(context.Background(), prediction.EnvironmentSample{})
		require.Error(t, err)
	}

	_, err := c.PredictEfficiencyLoss(context.Background(), prediction.EnvironmentSample{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 6, calls, "open circuit skips the outbound request")
}

func TestPredictDegradation_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict/degradation", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":           true,
			"degradation_index": 0.55,
			"status":            "Degrading",
			"recommendation":    "Schedule preventive maintenance",
			"stress_factors":    map[string]float64{"thermal": 5, "humidity": 0.6},
		})
	})

	res, err := c.PredictDegradation(context.Background(), prediction.StressFactors{
		TemperatureC: 30, HumidityPct: 60,
		VoltageMaxV: 36, VoltageMinV: 30, CurrentMaxA: 9, CurrentMinA: 7,
		DaysSinceInstall: 900,
	})

	require.NoError(t, err)
	assert.Equal(t, prediction.SourceMLModel, res.Source)
	assert.InDelta(t, 0.55, res.DegradationIndex, 1e-9)
	assert.Equal(t, prediction.DegradationDegrading, res.Status)
	assert.InDelta(t, 0.6, res.StressBreakdown["humidity"], 1e-9)
}

func TestClassifyImage_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict/image", r.URL.Path)

		var body struct {
			FileName string `json:"file_name"`
			Image    string `json:"image_base64"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "roof.jpg", body.FileName)
		assert.NotEmpty(t, body.Image)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"label":      "dusty",
			"confidence": 0.82,
		})
	})

	res, err := c.ClassifyImage(context.Background(), prediction.ImageInput{
		ID: "p-9", FileName: "roof.jpg", Data: []byte{0xff, 0xd8},
	})

	require.NoError(t, err)
	assert.Equal(t, "p-9", res.ID)
	assert.Equal(t, "dusty", res.Label)
	assert.Equal(t, prediction.SourceMLModel, res.Source)
}

func TestHealthy(t *testing.T) {
	up := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "model_loaded": true})
	})
	assert.True(t, up.Healthy(context.Background()))

	noModel := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "model_loaded": false})
	})
	assert.False(t, noModel.Healthy(context.Background()))

	down := New(&http.Client{}, "http://127.0.0.1:1", 100*time.Millisecond, 100*time.Millisecond)
	assert.False(t, down.Healthy(context.Background()))
}

func TestNon2xxIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.PredictEfficiencyLoss(context.Background(), prediction.EnvironmentSample{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCircuitOpen))
}
