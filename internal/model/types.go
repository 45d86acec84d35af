package model

// Tensor geometry shared by the preprocessor and every classifier (NHWC).
const (
	TensorBatch    = 1
	TensorHeight   = 48
	TensorWidth    = 48
	TensorChannels = 1
	TensorSize     = TensorBatch * TensorHeight * TensorWidth * TensorChannels
)

// Tensor is a (1, 48, 48, 1) grayscale image with values in [0, 1], stored row-major.
type Tensor [TensorSize]float32

// Shape returns the tensor dimensions in NHWC order.
func (t *Tensor) Shape() []int64 {
	return []int64{TensorBatch, TensorHeight, TensorWidth, TensorChannels}
}

// At returns the value at row y, column x of the single image in the batch.
func (t *Tensor) At(y, x int) float32 {
	return t[y*TensorWidth+x]
}

// Set stores v at row y, column x.
func (t *Tensor) Set(y, x int, v float32) {
	t[y*TensorWidth+x] = v
}

// Mean is the arithmetic mean of all values, accumulated in index order so the
// result is identical for identical contents.
func (t *Tensor) Mean() float64 {
	var sum float64
	for _, v := range t {
		sum += float64(v)
	}
	return sum / TensorSize
}

// Probabilities is a (1, 7) score vector indexed like Labels. Scores are not
// required to sum to one.
type Probabilities [NumLabels]float32

// Shape returns the vector dimensions (batch, labels).
func (p *Probabilities) Shape() []int64 {
	return []int64{1, NumLabels}
}

// Metadata describes an ONNX artifact. It is read from a JSON file next to the
// model; missing fields fall back to the tensor contract above.
type Metadata struct {
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// Result is a classified tensor.
type Result struct {
	Label       Label              `json:"class"`
	Confidence  float32            `json:"confidence"`
	Predictions map[string]float32 `json:"predictions"`
}
