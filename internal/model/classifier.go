package model

// Classifier scores a preprocessed tensor against the label set. Index i of the
// returned vector belongs to LabelAt(i).
type Classifier interface {
	Predict(t *Tensor) (Probabilities, error)
}

// Brightness bands of the heuristic, ascending. Each band is half-open: a mean
// equal to a threshold belongs to the band above it.
const (
	darkThreshold   = 0.25
	dimThreshold    = 0.45
	mediumThreshold = 0.65
)

// Heuristic stands in for a trained model. It looks only at the mean
// brightness of the tensor and maps it to a fixed two-label split.
type Heuristic struct{}

// NewHeuristic returns the brightness fallback classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Predict never fails.
func (h *Heuristic) Predict(t *Tensor) (Probabilities, error) {
	return PredictMean(t.Mean()), nil
}

// PredictMean returns the heuristic scores for a mean brightness in [0, 1].
func PredictMean(mean float64) Probabilities {
	var p Probabilities
	switch {
	case mean < darkThreshold:
		p[0] = 0.5 // Angry
		p[4] = 0.5 // Sad
	case mean < dimThreshold:
		p[2] = 0.4 // Fear
		p[4] = 0.6 // Sad
	case mean < mediumThreshold:
		p[6] = 0.5 // Neutral
		p[5] = 0.5 // Surprise
	default:
		p[3] = 0.85 // Happy
		p[5] = 0.15 // Surprise
	}
	return p
}
