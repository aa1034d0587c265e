package prediction

// Constructors for results whose numbers came from the remote model. They
// keep remote output structurally identical to the locally computed case so
// callers never branch on provenance for anything but presentation.

// RemoteEfficiencyResult shapes a remote efficiency-loss prediction. The
// loss is clamped to the same [0, MaxLossPct] band the local estimator
// guarantees, and the status bands are applied to the resulting efficiency.
func RemoteEfficiencyResult(lossPct float64, recommendation string) EfficiencyResult {
	loss := clampF(lossPct, 0, MaxLossPct)
	predicted := 100 - loss

	var recs []string
	if recommendation != "" {
		recs = []string{recommendation}
	}

	return EfficiencyResult{
		EfficiencyLossPct:      loss,
		PredictedEfficiencyPct: predicted,
		Status:                 statusForEfficiency(predicted),
		Recommendations:        recs,
		Source:                 SourceMLModel,
	}
}

// RemoteDegradationResult shapes a remote degradation prediction. The rate
// and projections are derived from the index with the same formula the
// local predictor uses, so both paths produce the same curve for the same
// index. An unrecognized remote status falls back to the local bands.
func RemoteDegradationResult(index float64, status, recommendation string, stress map[string]float64) DegradationResult {
	idx := clampF(index, 0, 1)

	st := DegradationStatus(status)
	switch st {
	case DegradationHealthy, DegradationDegrading, DegradationCritical:
	default:
		st, _ = degradationBand(idx)
	}

	rate := monthlyRateFor(idx)

	return DegradationResult{
		DegradationIndex: idx,
		Status:           st,
		MonthlyRatePct:   rate,
		Recommendation:   recommendation,
		StressBreakdown:  stress,
		Projections:      projectDecline(rate),
		Source:           SourceMLModel,
	}
}
