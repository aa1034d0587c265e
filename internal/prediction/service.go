package prediction

import (
	"context"
	"log"
	"sync"
)

// RemoteModel abstracts the external prediction service. Implementations
// perform exactly one outbound attempt per call and return an error on any
// failure (network, timeout, non-2xx, malformed body, open circuit).
type RemoteModel interface {
	Healthy(ctx context.Context) bool
	PredictEfficiencyLoss(ctx context.Context, sample EnvironmentSample) (EfficiencyResult, error)
	PredictDegradation(ctx context.Context, f StressFactors) (DegradationResult, error)
	ClassifyImage(ctx context.Context, in ImageInput) (ClassificationResult, error)
}

// Service is the prediction façade: it attempts the remote model first and
// falls back to the local calculators on any failure, so every well-formed
// request gets a usable result. Provenance is carried in each result's
// Source field; remote failures are never surfaced as errors.
type Service struct {
	remote     RemoteModel
	estimator  *Estimator
	classifier *Classifier
}

// NewService creates a Service. remote may be nil, in which case every
// prediction is computed locally.
func NewService(remote RemoteModel, estimator *Estimator, classifier *Classifier) *Service {
	return &Service{
		remote:     remote,
		estimator:  estimator,
		classifier: classifier,
	}
}

// PredictEfficiency returns an efficiency prediction for one sample and an
// optional panel orientation.
func (s *Service) PredictEfficiency(ctx context.Context, sample EnvironmentSample, orientation *PanelOrientation) EfficiencyResult {
	if s.remote != nil {
		res, err := s.remote.PredictEfficiencyLoss(ctx, sample)
		if err == nil {
			return res
		}
		log.Printf("remote efficiency prediction failed, using local estimator: %v", err)
	}
	return s.estimator.Estimate(sample, orientation)
}

// PredictDegradation returns a degradation prediction for the given stress
// factors.
func (s *Service) PredictDegradation(ctx context.Context, f StressFactors) DegradationResult {
	if s.remote != nil {
		res, err := s.remote.PredictDegradation(ctx, f)
		if err == nil {
			return res
		}
		log.Printf("remote degradation prediction failed, using local predictor: %v", err)
	}
	return PredictDegradation(f)
}

// OptimizeTilt sweeps the tilt range for the best angle. The remote model
// contributes only the loss fraction applied across the sweep; the geometry
// is always computed locally.
func (s *Service) OptimizeTilt(ctx context.Context, cond TiltConditions, sweep TiltSweep) TiltOptimizationResult {
	if s.remote != nil {
		res, err := s.remote.PredictEfficiencyLoss(ctx, sampleForSweep(cond))
		if err == nil {
			out := OptimizeTiltWithLoss(cond, sweep, res.EfficiencyLossPct/100)
			out.Source = SourceMLModel
			return out
		}
		log.Printf("remote loss prediction failed, using local derate for tilt sweep: %v", err)
	}
	return OptimizeTilt(cond, sweep)
}

// ClassifyImage classifies one panel image.
func (s *Service) ClassifyImage(ctx context.Context, in ImageInput) ClassificationResult {
	if s.remote != nil {
		res, err := s.remote.ClassifyImage(ctx, in)
		if err == nil {
			return res
		}
		log.Printf("remote classification failed for %q, using stub classifier: %v", in.FileName, err)
	}
	return s.classifier.Classify(in)
}

// ClassifyImageBatch classifies a batch of images, one remote call per item.
// A failed item falls back to the stub classifier individually; one failure
// never aborts the batch. Results keep the input order.
func (s *Service) ClassifyImageBatch(ctx context.Context, ins []ImageInput) []ClassificationResult {
	results := make([]ClassificationResult, len(ins))

	var wg sync.WaitGroup
	for i, in := range ins {
		i, in := i, in
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.ClassifyImage(ctx, in)
		}()
	}
	wg.Wait()

	return results
}

// RemoteHealthy reports whether the remote model currently answers health
// checks. Purely informational; predictions work either way.
func (s *Service) RemoteHealthy(ctx context.Context) bool {
	if s.remote == nil {
		return false
	}
	return s.remote.Healthy(ctx)
}

// sampleForSweep builds the remote feature vector for a tilt sweep from the
// sweep conditions, with nominal defaults for the fields a sweep request
// does not carry.
func sampleForSweep(cond TiltConditions) EnvironmentSample {
	return EnvironmentSample{
		TemperatureC:     cond.TemperatureC,
		HumidityPct:      50,
		WindSpeedMs:      2,
		IrradianceWm2:    cond.GhiWm2,
		VoltageV:         38,
		CurrentA:         8,
		DaysSinceInstall: 365,
	}
}
