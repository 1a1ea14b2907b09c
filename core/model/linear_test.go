package model

import (
	"math"
	"testing"
)

func testLinear(t *testing.T) *Linear {
	t.Helper()
	m, err := NewLinear([][]float32{
		{0.5, -1.0, 2.0},
		{1.5, 0.25, -0.75},
	}, []float32{0.1, -0.2})
	if err != nil {
		t.Fatalf("new linear: %v", err)
	}
	return m
}

func TestLinearMarshalLoadRoundTrip(t *testing.T) {
	m := testLinear(t)
	raw := m.Marshal()
	loaded, err := LoadLinear(raw)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	input := Tensor{Data: []float32{1, 2, 3}, Shape: []int{3}}
	want, err := m.Infer(input)
	if err != nil {
		t.Fatalf("infer original: %v", err)
	}
	got, err := loaded.Infer(input)
	if err != nil {
		t.Fatalf("infer loaded: %v", err)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("score %d mismatch: %v vs %v", i, want[i], got[i])
		}
	}
}

func TestLoadLinearCopiesOutOfRawBuffer(t *testing.T) {
	m := testLinear(t)
	raw := m.Marshal()
	loaded, err := LoadLinear(raw)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := range raw {
		raw[i] = 0
	}
	input := Tensor{Data: []float32{1, 2, 3}, Shape: []int{3}}
	got, err := loaded.Infer(input)
	if err != nil {
		t.Fatalf("infer after zeroing: %v", err)
	}
	want := []float32{0.5*1 - 1.0*2 + 2.0*3 + 0.1, 1.5*1 + 0.25*2 - 0.75*3 - 0.2}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("score %d mismatch after buffer zeroing: %v vs %v", i, got[i], want[i])
		}
	}
}

func TestLinearInferDeterministic(t *testing.T) {
	m := testLinear(t)
	input := Tensor{Data: []float32{0.25, -0.5, 0.75}, Shape: []int{3}}
	first, err := m.Infer(input)
	if err != nil {
		t.Fatalf("first infer: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := m.Infer(input)
		if err != nil {
			t.Fatalf("infer %d: %v", i, err)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("nondeterministic score at %d", j)
			}
		}
	}
}

func TestLinearInferRejectsWrongDimension(t *testing.T) {
	m := testLinear(t)
	if _, err := m.Infer(Tensor{Data: []float32{1, 2}, Shape: []int{2}}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestLoadLinearRejectsCorruptPayloads(t *testing.T) {
	m := testLinear(t)
	valid := m.Marshal()

	cases := []struct {
		name string
		raw  []byte
	}{
		{name: "empty", raw: nil},
		{name: "short", raw: valid[:8]},
		{name: "bad magic", raw: append([]byte("XXXX"), valid[4:]...)},
		{name: "truncated body", raw: valid[:len(valid)-4]},
		{name: "trailing bytes", raw: append(append([]byte{}, valid...), 0, 0, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadLinear(tc.raw); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestNewLinearValidatesShape(t *testing.T) {
	if _, err := NewLinear(nil, nil); err == nil {
		t.Fatal("expected error for empty matrix")
	}
	if _, err := NewLinear([][]float32{{1, 2}, {3}}, []float32{0, 0}); err == nil {
		t.Fatal("expected error for ragged rows")
	}
	if _, err := NewLinear([][]float32{{1, 2}}, []float32{0, 0}); err == nil {
		t.Fatal("expected error for bias length mismatch")
	}
}
