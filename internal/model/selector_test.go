package model

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedClassifier struct {
	probs Probabilities
}

func (f *fixedClassifier) Predict(*Tensor) (Probabilities, error) {
	return f.probs, nil
}

func TestSelector_FallsBackOnLoadError(t *testing.T) {
	loadErr := &LoadError{Path: "missing.onnx", Reason: ReasonMissingArtifact, Err: errors.New("no such file")}
	attempts := 0
	selector := NewSelector(func() (Classifier, error) {
		attempts++
		return nil, loadErr
	}, testLogger())

	assert.Equal(t, StateUninitialized, selector.State())

	selection := selector.Select()
	assert.Equal(t, StateFallbackActive, selection.State)
	assert.Equal(t, StateFallbackActive, selector.State())
	assert.IsType(t, &Heuristic{}, selection.Classifier)

	var le *LoadError
	require.ErrorAs(t, selection.LoadErr, &le)
	assert.Equal(t, ReasonMissingArtifact, le.Reason)

	for i := 0; i < 5; i++ {
		again := selector.Select()
		assert.Same(t, selection.Classifier, again.Classifier)
		assert.Equal(t, StateFallbackActive, again.State)
	}
	assert.Equal(t, 1, attempts)
}

func TestSelector_UsesRealModel(t *testing.T) {
	trained := &fixedClassifier{probs: Probabilities{0, 0, 0, 0, 0, 0, 1}}
	selector := NewSelector(func() (Classifier, error) {
		return trained, nil
	}, testLogger())

	selection := selector.Select()
	assert.Equal(t, StateRealModelActive, selection.State)
	assert.NoError(t, selection.LoadErr)
	assert.Same(t, trained, selection.Classifier)

	result, err := Classify(selection.Classifier, filledTensor(0))
	require.NoError(t, err)
	assert.Equal(t, Neutral, result.Label)
}

func TestSelector_ConcurrentSelectLoadsOnce(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	selector := NewSelector(func() (Classifier, error) {
		mu.Lock()
		attempts++
		mu.Unlock()
		return nil, errors.New("runtime unavailable")
	}, testLogger())

	var wg sync.WaitGroup
	results := make([]Selection, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = selector.Select()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, attempts)
	for _, r := range results {
		assert.Same(t, results[0].Classifier, r.Classifier)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "trying_real_model", StateTryingRealModel.String())
	assert.Equal(t, "real_model_active", StateRealModelActive.String())
	assert.Equal(t, "fallback_active", StateFallbackActive.String())
}
