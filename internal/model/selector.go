package model

import (
	"log/slog"
	"sync"
)

// State is the progress of classifier selection.
type State int

const (
	StateUninitialized State = iota
	StateTryingRealModel
	StateRealModelActive
	StateFallbackActive
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateTryingRealModel:
		return "trying_real_model"
	case StateRealModelActive:
		return "real_model_active"
	case StateFallbackActive:
		return "fallback_active"
	default:
		return "unknown"
	}
}

// Loader produces the real classifier or reports why it cannot.
type Loader func() (Classifier, error)

// ONNXLoader adapts LoadONNX to a Loader.
func ONNXLoader(cfg ONNXConfig) Loader {
	return func() (Classifier, error) {
		c, err := LoadONNX(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Selection is the outcome of startup selection. LoadErr is set only when the
// fallback is active.
type Selection struct {
	Classifier Classifier
	State      State
	LoadErr    error
}

// Selector picks the process classifier exactly once.
type Selector struct {
	load   Loader
	logger *slog.Logger

	once      sync.Once
	mu        sync.RWMutex
	state     State
	selection Selection
}

func NewSelector(load Loader, logger *slog.Logger) *Selector {
	return &Selector{
		load:   load,
		logger: logger,
		state:  StateUninitialized,
	}
}

// Select runs the loader on the first call and returns the same Selection on
// every later call. A load error is logged and replaced by the Heuristic.
func (s *Selector) Select() Selection {
	s.once.Do(func() {
		s.setState(StateTryingRealModel)

		classifier, err := s.load()
		switch {
		case err == nil && classifier != nil:
			s.selection = Selection{Classifier: classifier, State: StateRealModelActive}
			s.logger.Info("loaded real model")
		default:
			s.selection = Selection{Classifier: NewHeuristic(), State: StateFallbackActive, LoadErr: err}
			s.logger.Info("could not load real model, using fallback predictor",
				slog.Any("error", err),
			)
		}

		s.setState(s.selection.State)
	})
	return s.selection
}

// State reports where selection currently stands.
func (s *Selector) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Selector) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
