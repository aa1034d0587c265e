package prediction

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

// conditionLabels are the classes the stub classifier chooses between.
// There is no local vision model; this keeps the classification endpoint
// behaviorally consistent when the remote model is unavailable.
var conditionLabels = []string{"clean", "dusty", "cracked", "shaded", "discolored"}

// Classifier is the local fallback for image classification. All randomness
// comes from the injected source, so a fixed seed gives a fixed sequence.
// Safe for concurrent use; batch fallbacks may arrive from several goroutines.
type Classifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewClassifier creates a stub classifier drawing from the given source.
func NewClassifier(rng *rand.Rand) *Classifier {
	return &Classifier{rng: rng}
}

// Classify assigns a condition label with a confidence in [0.55, 0.95].
// Inputs without an ID are assigned one so batch callers can correlate
// results with their items.
func (c *Classifier) Classify(in ImageInput) ClassificationResult {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	c.mu.Lock()
	label := conditionLabels[c.rng.Intn(len(conditionLabels))]
	confidence := 0.55 + c.rng.Float64()*0.40
	c.mu.Unlock()

	return ClassificationResult{
		ID:         id,
		Label:      label,
		Confidence: confidence,
		Source:     SourceSimulation,
	}
}
