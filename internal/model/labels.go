package model

// Label is one of the seven emotion categories.
type Label string

const (
	Angry    Label = "Angry"
	Disgust  Label = "Disgust"
	Fear     Label = "Fear"
	Happy    Label = "Happy"
	Sad      Label = "Sad"
	Surprise Label = "Surprise"
	Neutral  Label = "Neutral"
)

// NumLabels is the width of every probability vector.
const NumLabels = 7

// labels is the index-to-label mapping used after arg-max. Order matters.
var labels = [NumLabels]Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// Labels returns the ordered label set.
func Labels() [NumLabels]Label {
	return labels
}

// LabelAt returns the label for index i.
func LabelAt(i int) Label {
	return labels[i]
}

// IndexOf returns the position of l in the label set, or -1.
func IndexOf(l Label) int {
	for i, candidate := range labels {
		if candidate == l {
			return i
		}
	}
	return -1
}

// ArgMax returns the index of the highest score. Ties resolve to the lowest
// index, so {Angry: 0.5, Sad: 0.5} is Angry and {Surprise: 0.5, Neutral: 0.5}
// is Surprise.
func ArgMax(p Probabilities) int {
	maxIdx := 0
	maxVal := p[0]
	for i := 1; i < NumLabels; i++ {
		if p[i] > maxVal {
			maxVal = p[i]
			maxIdx = i
		}
	}
	return maxIdx
}

// Classify runs c on t and reduces the output to a single label.
func Classify(c Classifier, t *Tensor) (*Result, error) {
	probs, err := c.Predict(t)
	if err != nil {
		return nil, err
	}

	idx := ArgMax(probs)
	predictions := make(map[string]float32, NumLabels)
	for i, l := range labels {
		predictions[string(l)] = probs[i]
	}

	return &Result{
		Label:       labels[idx],
		Confidence:  probs[idx],
		Predictions: predictions,
	}, nil
}
