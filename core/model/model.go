// Package model defines the inference capability surface the rest of the
// system depends on. The worker treats the classifier as opaque: anything
// that can be constructed from verified weight bytes and score a tensor
// satisfies it.
package model

// Tensor is a dense float32 buffer with an explicit shape. The preprocessor
// produces CHW layout.
type Tensor struct {
	Data  []float32
	Shape []int
}

// Len returns the number of elements implied by the shape.
func (t Tensor) Len() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Model is a constructed, weight-loaded classifier. Infer returns one raw
// score per known class. Implementations are not assumed re-entrant; the
// worker serializes calls.
type Model interface {
	Infer(t Tensor) ([]float32, error)
	Name() string
	Version() string
}

// Preprocessor turns an image path into an input tensor.
type Preprocessor interface {
	Preprocess(path string) (Tensor, error)
}

// Constructor builds a Model from verified plaintext weight bytes. The
// secure loader zeroes the buffer immediately after the call returns, so
// implementations must copy what they keep.
type Constructor func(weights []byte) (Model, error)
