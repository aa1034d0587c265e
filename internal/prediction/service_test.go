package prediction

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemoteDown = errors.New("connection refused")

// fakeRemote fails selectively so tests can exercise both paths of the
// façade without a network.
type fakeRemote struct {
	healthy    bool
	failAll    bool
	failImages map[string]bool

	lossPct float64
}

func (f *fakeRemote) Healthy(ctx context.Context) bool { return f.healthy }

func (f *fakeRemote) PredictEfficiencyLoss(ctx context.Context, sample EnvironmentSample) (EfficiencyResult, error) {
	if f.failAll {
		return EfficiencyResult{}, errRemoteDown
	}
	return RemoteEfficiencyResult(f.lossPct, "Panel performing optimally"), nil
}

func (f *fakeRemote) PredictDegradation(ctx context.Context, s StressFactors) (DegradationResult, error) {
	if f.failAll {
		return DegradationResult{}, errRemoteDown
	}
	return RemoteDegradationResult(0.2, "Healthy", "No action required", nil), nil
}

func (f *fakeRemote) ClassifyImage(ctx context.Context, in ImageInput) (ClassificationResult, error) {
	if f.failAll || f.failImages[in.ID] {
		return ClassificationResult{}, errRemoteDown
	}
	return ClassificationResult{ID: in.ID, Label: "clean", Confidence: 0.9, Source: SourceMLModel}, nil
}

func newTestService(remote RemoteModel) *Service {
	return NewService(remote, NewEstimator(), NewClassifier(rand.New(rand.NewSource(1))))
}

func TestPredictEfficiency_RemoteSuccess(t *testing.T) {
	svc := newTestService(&fakeRemote{lossPct: 7.5})

	res := svc.PredictEfficiency(context.Background(), EnvironmentSample{TemperatureC: 30}, nil)
	assert.Equal(t, SourceMLModel, res.Source)
	assert.InDelta(t, 7.5, res.EfficiencyLossPct, 1e-9)
	assert.InDelta(t, 92.5, res.PredictedEfficiencyPct, 1e-9)
	assert.Equal(t, StatusOptimal, res.Status)
}

func TestPredictEfficiency_FallsBackOnRemoteFailure(t *testing.T) {
	svc := newTestService(&fakeRemote{failAll: true})
	sample := EnvironmentSample{TemperatureC: 35, HumidityPct: 50, WindSpeedMs: 3, IrradianceWm2: 900, VoltageV: 35, CurrentA: 8, DaysSinceInstall: 365}

	res := svc.PredictEfficiency(context.Background(), sample, &PanelOrientation{TiltDeg: 30})

	assert.Equal(t, SourceSimulation, res.Source)
	assert.Equal(t, 100-res.EfficiencyLossPct, res.PredictedEfficiencyPct)
	assert.NotEmpty(t, res.Recommendations)
	assert.NotEmpty(t, res.Factors)
}

func TestPredictEfficiency_NilRemoteUsesLocal(t *testing.T) {
	svc := newTestService(nil)
	res := svc.PredictEfficiency(context.Background(), EnvironmentSample{TemperatureC: 30}, nil)
	assert.Equal(t, SourceSimulation, res.Source)
}

func TestPredictDegradation_FallsBackOnRemoteFailure(t *testing.T) {
	svc := newTestService(&fakeRemote{failAll: true})

	res := svc.PredictDegradation(context.Background(), StressFactors{TemperatureC: 30, HumidityPct: 70})
	assert.Equal(t, SourceSimulation, res.Source)
	assert.NotEmpty(t, res.Projections)
}

func TestOptimizeTilt_RemoteLossFractionApplied(t *testing.T) {
	svc := newTestService(&fakeRemote{lossPct: 20})

	res := svc.OptimizeTilt(context.Background(), TiltConditions{
		GhiWm2: 800, LatitudeDeg: 45, HourOfDay: 12, DayOfYear: equinoxDay, TemperatureC: 25,
	}, TiltSweep{})

	assert.Equal(t, SourceMLModel, res.Source)
	assert.InDelta(t, 20.0, res.EfficiencyLossPct, 1e-9)
	assert.InDelta(t, 80.0, res.EfficiencyRetainedPct, 1e-9)
}

func TestOptimizeTilt_FallsBackToLocalDerate(t *testing.T) {
	svc := newTestService(&fakeRemote{failAll: true})

	res := svc.OptimizeTilt(context.Background(), TiltConditions{
		GhiWm2: 800, LatitudeDeg: 45, HourOfDay: 12, DayOfYear: equinoxDay, TemperatureC: 25,
	}, TiltSweep{})

	assert.Equal(t, SourceSimulation, res.Source)
	assert.InDelta(t, 10.0, res.EfficiencyLossPct, 1e-9)
}

func TestFallbackShapeMatchesRemoteShape(t *testing.T) {
	cond := TiltConditions{GhiWm2: 800, LatitudeDeg: 45, HourOfDay: 12, DayOfYear: equinoxDay, TemperatureC: 25}

	remote := newTestService(&fakeRemote{lossPct: 10}).OptimizeTilt(context.Background(), cond, TiltSweep{})
	local := newTestService(&fakeRemote{failAll: true}).OptimizeTilt(context.Background(), cond, TiltSweep{})

	assert.Len(t, local.TiltCurve, len(remote.TiltCurve))
	assert.Equal(t, remote.OptimalTiltDeg, local.OptimalTiltDeg, "same geometry regardless of provenance")
}

func TestClassifyImage_FallsBackToStub(t *testing.T) {
	svc := newTestService(&fakeRemote{failAll: true})

	res := svc.ClassifyImage(context.Background(), ImageInput{ID: "p-1", FileName: "roof.jpg"})
	assert.Equal(t, SourceSimulation, res.Source)
	assert.Equal(t, "p-1", res.ID)
	assert.Contains(t, conditionLabels, res.Label)
	assert.GreaterOrEqual(t, res.Confidence, 0.55)
	assert.LessOrEqual(t, res.Confidence, 0.95)
}

func TestClassifyImageBatch_PartialFailureIsolated(t *testing.T) {
	remote := &fakeRemote{failImages: map[string]bool{"b": true, "d": true}}
	svc := newTestService(remote)

	inputs := []ImageInput{
		{ID: "a", FileName: "a.jpg"},
		{ID: "b", FileName: "b.jpg"},
		{ID: "c", FileName: "c.jpg"},
		{ID: "d", FileName: "d.jpg"},
	}
	results := svc.ClassifyImageBatch(context.Background(), inputs)

	require.Len(t, results, 4)
	assert.Equal(t, SourceMLModel, results[0].Source)
	assert.Equal(t, SourceSimulation, results[1].Source)
	assert.Equal(t, SourceMLModel, results[2].Source)
	assert.Equal(t, SourceSimulation, results[3].Source)

	for i, in := range inputs {
		assert.Equal(t, in.ID, results[i].ID, "results keep input order")
	}
}

func TestClassifier_SeedDeterminism(t *testing.T) {
	a := NewClassifier(rand.New(rand.NewSource(42)))
	b := NewClassifier(rand.New(rand.NewSource(42)))

	for i := 0; i < 10; i++ {
		in := ImageInput{ID: "x", FileName: "x.jpg"}
		assert.Equal(t, a.Classify(in), b.Classify(in))
	}
}

func TestRemoteHealthy(t *testing.T) {
	assert.True(t, newTestService(&fakeRemote{healthy: true}).RemoteHealthy(context.Background()))
	assert.False(t, newTestService(&fakeRemote{}).RemoteHealthy(context.Background()))
	assert.False(t, newTestService(nil).RemoteHealthy(context.Background()))
}
