package model

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Linear weight format: "CSW1" magic, uint32 class count, uint32 feature
// dimension (little-endian), then classes*features weight float32s followed
// by one bias float32 per class.
const linearMagic = "CSW1"

const linearHeaderSize = 4 + 4 + 4

// Linear is the reference Model implementation: a weight-loaded linear
// scorer over preprocessed image tensors. It stands in for the external
// neural network capability and keeps the pipeline fully executable.
type Linear struct {
	classes  int
	features int
	weights  []float32
	bias     []float32
}

// NewLinear builds a Linear from an in-memory weight matrix, one row per
// class. Used by tests and offline tooling.
func NewLinear(weights [][]float32, bias []float32) (*Linear, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("weight matrix is empty")
	}
	if len(bias) != len(weights) {
		return nil, fmt.Errorf("bias length %d does not match %d classes", len(bias), len(weights))
	}
	features := len(weights[0])
	if features == 0 {
		return nil, fmt.Errorf("feature dimension is zero")
	}
	flat := make([]float32, 0, len(weights)*features)
	for i, row := range weights {
		if len(row) != features {
			return nil, fmt.Errorf("weight row %d has %d features, want %d", i, len(row), features)
		}
		flat = append(flat, row...)
	}
	return &Linear{
		classes:  len(weights),
		features: features,
		weights:  flat,
		bias:     append([]float32(nil), bias...),
	}, nil
}

// LoadLinear parses serialized linear weights. All values are copied out of
// raw, which the caller may zero immediately afterward.
func LoadLinear(raw []byte) (*Linear, error) {
	if len(raw) < linearHeaderSize {
		return nil, fmt.Errorf("weight payload too short: %d bytes", len(raw))
	}
	if string(raw[:4]) != linearMagic {
		return nil, fmt.Errorf("unrecognized weight magic")
	}
	classes := int(binary.LittleEndian.Uint32(raw[4:8]))
	features := int(binary.LittleEndian.Uint32(raw[8:12]))
	if classes <= 0 || features <= 0 {
		return nil, fmt.Errorf("invalid weight dimensions: %dx%d", classes, features)
	}
	want := linearHeaderSize + 4*(classes*features+classes)
	if len(raw) != want {
		return nil, fmt.Errorf("weight payload size %d does not match dimensions (want %d)", len(raw), want)
	}
	m := &Linear{
		classes:  classes,
		features: features,
		weights:  make([]float32, classes*features),
		bias:     make([]float32, classes),
	}
	offset := linearHeaderSize
	for i := range m.weights {
		m.weights[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[offset:]))
		offset += 4
	}
	for i := range m.bias {
		m.bias[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[offset:]))
		offset += 4
	}
	return m, nil
}

// ConstructLinear is the Constructor the commands wire into the secure
// loader.
func ConstructLinear(weights []byte) (Model, error) {
	return LoadLinear(weights)
}

// Marshal serializes the model in the linear weight format.
func (m *Linear) Marshal() []byte {
	out := make([]byte, linearHeaderSize, linearHeaderSize+4*(len(m.weights)+len(m.bias)))
	copy(out[:4], linearMagic)
	binary.LittleEndian.PutUint32(out[4:8], uint32(m.classes))
	binary.LittleEndian.PutUint32(out[8:12], uint32(m.features))
	var scratch [4]byte
	for _, w := range m.weights {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(w))
		out = append(out, scratch[:]...)
	}
	for _, b := range m.bias {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(b))
		out = append(out, scratch[:]...)
	}
	return out
}

func (m *Linear) Infer(t Tensor) ([]float32, error) {
	if len(t.Data) != m.features {
		return nil, fmt.Errorf("tensor has %d elements, model expects %d", len(t.Data), m.features)
	}
	scores := make([]float32, m.classes)
	for c := 0; c < m.classes; c++ {
		sum := m.bias[c]
		row := m.weights[c*m.features : (c+1)*m.features]
		for i, v := range t.Data {
			sum += row[i] * v
		}
		scores[c] = sum
	}
	return scores, nil
}

func (m *Linear) Name() string { return "cropsight_linear" }

func (m *Linear) Version() string { return "v1.0.0" }
