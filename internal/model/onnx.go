package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// LoadReason classifies why a model artifact could not be used.
type LoadReason string

const (
	ReasonMissingArtifact    LoadReason = "missing_artifact"
	ReasonIncompatibleFormat LoadReason = "incompatible_format"
	ReasonRuntimeUnavailable LoadReason = "runtime_unavailable"
)

// LoadError is returned by LoadONNX for every failure.
type LoadError struct {
	Path   string
	Reason LoadReason
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s (%s): %v", e.Path, e.Reason, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ONNXConfig locates the artifact and, optionally, the onnxruntime shared library.
type ONNXConfig struct {
	ModelPath         string
	MetadataPath      string
	SharedLibraryPath string
}

// ONNXClassifier runs a trained network through onnxruntime.
type ONNXClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	Metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// LoadONNX opens the artifact at cfg.ModelPath. It is meant to be called once
// per process.
func LoadONNX(cfg ONNXConfig) (*ONNXClassifier, error) {
	fail := func(reason LoadReason, err error) (*ONNXClassifier, error) {
		return nil, &LoadError{Path: cfg.ModelPath, Reason: reason, Err: err}
	}

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return fail(ReasonMissingArtifact, err)
	}

	metadata, err := readMetadata(cfg.MetadataPath)
	if err != nil {
		return fail(ReasonIncompatibleFormat, err)
	}
	if err := metadata.validate(); err != nil {
		return fail(ReasonIncompatibleFormat, err)
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fail(ReasonRuntimeUnavailable, fmt.Errorf("failed to initialize ONNX environment: %w", err))
		}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		return fail(ReasonRuntimeUnavailable, fmt.Errorf("failed to create input tensor: %w", err))
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return fail(ReasonRuntimeUnavailable, fmt.Errorf("failed to create output tensor: %w", err))
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return fail(ReasonIncompatibleFormat, fmt.Errorf("failed to create ONNX session: %w", err))
	}

	return &ONNXClassifier{
		session:      session,
		Metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Predict copies t into the session input and runs inference. The session
// owns a single pair of I/O tensors, so calls are serialized.
func (c *ONNXClassifier) Predict(t *Tensor) (Probabilities, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.inputTensor.GetData(), t[:])

	if err := c.session.Run(); err != nil {
		return Probabilities{}, fmt.Errorf("inference failed: %w", err)
	}

	var p Probabilities
	copy(p[:], c.outputTensor.GetData())
	return p, nil
}

func (c *ONNXClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	ort.DestroyEnvironment()
}

// DefaultMetadata describes an artifact that follows the tensor contract with
// tensors named "input" and "output".
func DefaultMetadata() Metadata {
	names := make([]string, NumLabels)
	for i, l := range labels {
		names[i] = string(l)
	}
	return Metadata{
		InputName:   "input",
		OutputName:  "output",
		InputShape:  []int64{TensorBatch, TensorHeight, TensorWidth, TensorChannels},
		OutputShape: []int64{1, NumLabels},
		Classes:     names,
		ImageSize:   TensorHeight,
	}
}

// readMetadata overlays the JSON file at path on DefaultMetadata. An empty or
// absent path yields the defaults.
func readMetadata(path string) (Metadata, error) {
	metadata := DefaultMetadata()
	if path == "" {
		return metadata, nil
	}

	metaFile, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return metadata, nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return metadata, nil
}

func (m Metadata) validate() error {
	want := DefaultMetadata()
	if !slices.Equal(m.InputShape, want.InputShape) {
		return fmt.Errorf("input shape %v, want %v", m.InputShape, want.InputShape)
	}
	if !slices.Equal(m.OutputShape, want.OutputShape) {
		return fmt.Errorf("output shape %v, want %v", m.OutputShape, want.OutputShape)
	}
	if !slices.Equal(m.Classes, want.Classes) {
		return fmt.Errorf("classes %v, want %v", m.Classes, want.Classes)
	}
	if m.InputName == "" || m.OutputName == "" {
		return errors.New("tensor names must not be empty")
	}
	return nil
}
