// Package mlclient talks to the external efficiency-loss model service and
// maps its snake_case wire format onto the core prediction types. All
// naming-convention translation lives here, not in the core.
package mlclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/solarwatch/panel-insights/internal/prediction"
)

var (
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	// ErrCircuitOpen is returned without attempting the request when the
	// remote has recently been failing. Callers treat it like any other
	// remote failure and fall back locally, just faster.
	ErrCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// Client is a thin HTTP client for the remote prediction endpoints with a
// circuit breaker acting as the recently-observed-remote-health flag.
// Exactly one outbound attempt is made per call; callers that want a result
// regardless of remote health fall back to the local calculators.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker

	interactiveTimeout time.Duration
	batchTimeout       time.Duration
}

// New creates a Client. interactive bounds single-prediction calls, batch
// bounds batch/image calls; zero values take the 10s/60s defaults.
func New(client *http.Client, baseURL string, interactive, batch time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ml-api",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if interactive <= 0 {
		interactive = 10 * time.Second
	}
	if batch <= 0 {
		batch = 60 * time.Second
	}

	return &Client{
		baseURL:            baseURL,
		httpClient:         client,
		circuit:            cb,
		interactiveTimeout: interactive,
		batchTimeout:       batch,
	}
}

// Healthy reports whether the remote model service is reachable and has its
// model loaded.
func (c *Client) Healthy(ctx context.Context) bool {
	var resp struct {
		Status      string `json:"status"`
		ModelLoaded bool   `json:"model_loaded"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", c.interactiveTimeout, nil, &resp); err != nil {
		return false
	}
	return resp.Status == "ok" && resp.ModelLoaded
}

// efficiencyFeatures is the remote model's feature vector, in its training
// order and naming.
type efficiencyFeatures struct {
	Temperature           float64 `json:"temperature"`
	Humidity              float64 `json:"humidity"`
	WindSpeed             float64 `json:"wind_speed"`
	Irradiance            float64 `json:"irradiance"`
	Voltage               float64 `json:"voltage"`
	Current               float64 `json:"current"`
	DaysSinceInstallation int     `json:"days_since_installation"`
}

// PredictEfficiencyLoss calls POST /predict/efficiency-loss and maps the
// response onto an EfficiencyResult tagged as model output.
func (c *Client) PredictEfficiencyLoss(ctx context.Context, sample prediction.EnvironmentSample) (prediction.EfficiencyResult, error) {
	req := efficiencyFeatures{
		Temperature:           sample.TemperatureC,
		Humidity:              sample.HumidityPct,
		WindSpeed:             sample.WindSpeedMs,
		Irradiance:            sample.IrradianceWm2,
		Voltage:               sample.VoltageV,
		Current:               sample.CurrentA,
		DaysSinceInstallation: sample.DaysSinceInstall,
	}

	var resp struct {
		Success        bool    `json:"success"`
		EfficiencyLoss float64 `json:"efficiency_loss"`
		Status         string  `json:"status"`
		Recommendation string  `json:"recommendation"`
	}
	if err := c.do(ctx, http.MethodPost, "/predict/efficiency-loss", c.interactiveTimeout, req, &resp); err != nil {
		return prediction.EfficiencyResult{}, err
	}
	if !resp.Success {
		return prediction.EfficiencyResult{}, fmt.Errorf("%w: prediction unsuccessful", errUnexpected)
	}

	return prediction.RemoteEfficiencyResult(resp.EfficiencyLoss, resp.Recommendation), nil
}

// PredictDegradation calls POST /predict/degradation and maps the response
// onto a DegradationResult tagged as model output.
func (c *Client) PredictDegradation(ctx context.Context, f prediction.StressFactors) (prediction.DegradationResult, error) {
	req := struct {
		Temperature           float64 `json:"temperature"`
		Humidity              float64 `json:"humidity"`
		VoltageMax            float64 `json:"voltage_max"`
		VoltageMin            float64 `json:"voltage_min"`
		CurrentMax            float64 `json:"current_max"`
		CurrentMin            float64 `json:"current_min"`
		DaysSinceInstallation int     `json:"days_since_installation"`
	}{
		Temperature:           f.TemperatureC,
		Humidity:              f.HumidityPct,
		VoltageMax:            f.VoltageMaxV,
		VoltageMin:            f.VoltageMinV,
		CurrentMax:            f.CurrentMaxA,
		CurrentMin:            f.CurrentMinA,
		DaysSinceInstallation: f.DaysSinceInstall,
	}

	var resp struct {
		Success          bool               `json:"success"`
		DegradationIndex float64            `json:"degradation_index"`
		Status           string             `json:"status"`
		Recommendation   string             `json:"recommendation"`
		StressFactors    map[string]float64 `json:"stress_factors"`
	}
	if err := c.do(ctx, http.MethodPost, "/predict/degradation", c.interactiveTimeout, req, &resp); err != nil {
		return prediction.DegradationResult{}, err
	}
	if !resp.Success {
		return prediction.DegradationResult{}, fmt.Errorf("%w: prediction unsuccessful", errUnexpected)
	}

	return prediction.RemoteDegradationResult(
		resp.DegradationIndex, resp.Status, resp.Recommendation, resp.StressFactors), nil
}

// ClassifyImage calls POST /predict/image with base64-encoded image bytes.
// Uses the longer batch timeout since image payloads are large.
func (c *Client) ClassifyImage(ctx context.Context, in prediction.ImageInput) (prediction.ClassificationResult, error) {
	req := struct {
		FileName string `json:"file_name"`
		Image    string `json:"image_base64"`
	}{
		FileName: in.FileName,
		Image:    base64.StdEncoding.EncodeToString(in.Data),
	}

	var resp struct {
		Success    bool    `json:"success"`
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.do(ctx, http.MethodPost, "/predict/image", c.batchTimeout, req, &resp); err != nil {
		return prediction.ClassificationResult{}, err
	}
	if !resp.Success {
		return prediction.ClassificationResult{}, fmt.Errorf("%w: classification unsuccessful", errUnexpected)
	}

	return prediction.ClassificationResult{
		ID:         in.ID,
		Label:      resp.Label,
		Confidence: resp.Confidence,
		Source:     prediction.SourceMLModel,
	}, nil
}

// do executes a single bounded request through the circuit breaker and
// decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, timeout time.Duration, body, out interface{}) error {
	if c.httpClient == nil {
		return errNoHTTPClient
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		var decoded json.RawMessage
		if decodeErr := json.NewDecoder(resp.Body).Decode(&decoded); decodeErr != nil {
			return nil, fmt.Errorf("malformed response body: %w", decodeErr)
		}
		return decoded, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return err
	}

	raw, ok := result.(json.RawMessage)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
