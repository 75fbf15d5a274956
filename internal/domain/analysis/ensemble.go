package analysis

import (
	"math"

	"github.com/mehrguard/url-security/internal/config"
)

// EnsembleScorer applies the fixed logistic-regression model to a feature
// vector and scales the resulting probability into the ensemble's point
// budget. Inference only; the model is trained offline and shipped as
// calibration data.
type EnsembleScorer struct {
	weights [FeatureVectorSize]float64
	bias    float64
	budget  int
}

// NewEnsembleScorer builds a scorer from the calibration's model parameters
func NewEnsembleScorer(model config.ModelConfig, weights config.WeightConfig) *EnsembleScorer {
	return &EnsembleScorer{
		weights: model.Weights,
		bias:    model.Bias,
		budget:  weights.EnsembleBudget,
	}
}

// Probability returns the model's phishing probability for a vector
func (s *EnsembleScorer) Probability(v FeatureVector) float64 {
	z := s.bias
	for i, w := range s.weights {
		z += w * v[i]
	}
	return sigmoid(z)
}

// Score maps the probability onto the ensemble budget, rounded to the
// nearest point. Bounded by construction: probability is in (0,1).
func (s *EnsembleScorer) Score(v FeatureVector) int {
	return int(math.Round(s.Probability(v) * float64(s.budget)))
}
