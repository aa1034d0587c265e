package prediction

// Source tags the provenance of a prediction so downstream presentation can
// distinguish authoritative model output from local estimates.
type Source string

const (
	// SourceMLModel marks results returned verbatim by the remote model service.
	SourceMLModel Source = "ml-model"
	// SourceSimulation marks results computed by the local physics calculators.
	SourceSimulation Source = "simulation"
	// SourceMockFallback is reserved for client-side fallbacks produced when
	// this service itself is unreachable; the server never emits it.
	SourceMockFallback Source = "mock-fallback"
)

// Status is a categorical health band derived from predicted efficiency.
type Status string

const (
	StatusOptimal  Status = "optimal"
	StatusGood     Status = "good"
	StatusFair     Status = "fair"
	StatusPoor     Status = "poor"
	StatusCritical Status = "critical"
)

// DegradationStatus is a categorical band derived from the degradation index.
type DegradationStatus string

const (
	DegradationHealthy   DegradationStatus = "Healthy"
	DegradationDegrading DegradationStatus = "Degrading"
	DegradationCritical  DegradationStatus = "Critical"
)

// EnvironmentSample describes ambient and electrical conditions at a point
// in time. Constructed fresh per prediction request, never mutated, no
// persisted identity. Field names carry their units.
type EnvironmentSample struct {
	TemperatureC     float64 `json:"temperatureC"`
	HumidityPct      float64 `json:"humidityPct"`
	WindSpeedMs      float64 `json:"windSpeedMs"`
	IrradianceWm2    float64 `json:"irradianceWm2"`
	VoltageV         float64 `json:"voltageV"`
	CurrentA         float64 `json:"currentA"`
	DaysSinceInstall int     `json:"daysSinceInstall"`
	CloudCoverPct    float64 `json:"cloudCoverPct"`
	SoilingPct       float64 `json:"soilingPct"`
}

// PanelOrientation is the geometric configuration of one physical panel.
// Azimuth is interpreted modulo 360 (180 = equator-facing); tilt is clamped
// to [0,90] wherever it is consumed.
type PanelOrientation struct {
	TiltDeg    float64 `json:"tiltDeg"`
	AzimuthDeg float64 `json:"azimuthDeg"`
}

// FactorName identifies one independently reported loss factor.
type FactorName string

const (
	FactorTemperature        FactorName = "temperature"
	FactorTilt               FactorName = "tilt"
	FactorIrradiance         FactorName = "irradiance"
	FactorAge                FactorName = "age"
	FactorHumidity           FactorName = "humidity"
	FactorCloud              FactorName = "cloud"
	FactorSoiling            FactorName = "soiling"
	FactorElectricalMismatch FactorName = "electrical-mismatch"
	FactorWindBenefit        FactorName = "wind-benefit"
)

// EfficiencyResult is the output of an efficiency prediction.
// PredictedEfficiencyPct is always 100 - EfficiencyLossPct, and the loss is
// clamped to [0, MaxLossPct] before either is reported.
type EfficiencyResult struct {
	EfficiencyLossPct      float64                `json:"efficiencyLossPct"`
	PredictedEfficiencyPct float64                `json:"predictedEfficiencyPct"`
	Status                 Status                 `json:"status"`
	Factors                map[FactorName]float64 `json:"factors"`
	Recommendations        []string               `json:"recommendations"`
	Source                 Source                 `json:"source"`
}

// TiltCurvePoint is one entry of the swept tilt-vs-energy curve.
type TiltCurvePoint struct {
	TiltDeg                float64 `json:"tiltDeg"`
	EffectiveIrradianceWm2 float64 `json:"effectiveIrradianceWm2"`
	NetEnergyWm2           float64 `json:"netEnergyWm2"`
}

// TiltOptimizationResult is the output of a tilt sweep. OptimalTiltDeg is
// the argmax of net energy over the curve, lowest tilt winning ties.
type TiltOptimizationResult struct {
	OptimalTiltDeg        float64          `json:"optimalTiltDeg"`
	EstimatedEnergyWm2    float64          `json:"estimatedEnergyWm2"`
	SolarElevationDeg     float64          `json:"solarElevationDeg"`
	EfficiencyLossPct     float64          `json:"efficiencyLossPct"`
	EfficiencyRetainedPct float64          `json:"efficiencyRetainedPct"`
	DefaultTiltDeg        float64          `json:"defaultTiltDeg"`
	ImprovementPct        float64          `json:"improvementPct"`
	TiltCurve             []TiltCurvePoint `json:"tiltCurve"`
	Source                Source           `json:"source"`
}

// StressFactors are the inputs to a degradation prediction.
type StressFactors struct {
	TemperatureC     float64 `json:"temperatureC"`
	HumidityPct      float64 `json:"humidityPct"`
	VoltageMaxV      float64 `json:"voltageMaxV"`
	VoltageMinV      float64 `json:"voltageMinV"`
	CurrentMaxA      float64 `json:"currentMaxA"`
	CurrentMinA      float64 `json:"currentMinA"`
	DaysSinceInstall int     `json:"daysSinceInstall"`
}

// DegradationProjection is one point of the projected efficiency decline.
type DegradationProjection struct {
	Month         int     `json:"month"`
	EfficiencyPct float64 `json:"efficiencyPct"`
}

// DegradationResult is the output of a degradation prediction.
type DegradationResult struct {
	DegradationIndex float64                 `json:"degradationIndex"`
	Status           DegradationStatus       `json:"status"`
	MonthlyRatePct   float64                 `json:"monthlyRatePct"`
	Recommendation   string                  `json:"recommendation"`
	StressBreakdown  map[string]float64      `json:"stressBreakdown"`
	Projections      []DegradationProjection `json:"projections"`
	Source           Source                  `json:"source"`
}

// ImageInput identifies one panel image to classify. Data is optional; the
// stub classifier only needs a stable identity to stay deterministic.
type ImageInput struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Data     []byte `json:"data,omitempty"`
}

// ClassificationResult is the output of an image classification.
type ClassificationResult struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}
