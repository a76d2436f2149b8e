// Package sparse stores weighted document vectors as ascending (index, value) pairs.
//
// Values are rounded to Precision decimal digits with math.Round semantics
// (half away from zero). Entries that round to zero are not stored, so
// Decode(Encode(x)) equals Round(x) coordinate by coordinate.
package sparse

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
)

// Precision is the number of decimal digits kept for stored values and scores.
const Precision = 3

var scale = math.Pow10(Precision)

// ErrIndexOutOfRange is returned when a pair addresses a coordinate outside the vocabulary.
var ErrIndexOutOfRange = errors.New("sparse index out of range")

// Vector is a sparse row. Indices are strictly ascending and Values has the same length.
type Vector struct {
	Indices []int
	Values  []float64
}

// Round rounds v to Precision digits, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*scale) / scale
}

// Encode keeps the non-zero rounded coordinates of dense in ascending index order.
func Encode(dense []float64) Vector {
	v := Vector{Indices: []int{}, Values: []float64{}}
	for i, x := range dense {
		r := Round(x)
		if r == 0 {
			continue
		}
		v.Indices = append(v.Indices, i)
		v.Values = append(v.Values, r)
	}
	return v
}

// Decode scatters v into a zero vector of length size.
func Decode(v Vector, size int) ([]float64, error) {
	if len(v.Indices) != len(v.Values) {
		return nil, fmt.Errorf("decode: %d indices but %d values", len(v.Indices), len(v.Values))
	}
	dense := make([]float64, size)
	for i, idx := range v.Indices {
		if idx < 0 || idx >= size {
			return nil, fmt.Errorf("decode: index %d with size %d: %w", idx, size, ErrIndexOutOfRange)
		}
		dense[idx] = v.Values[i]
	}
	return dense, nil
}

// Nnz returns the number of stored entries.
func (v Vector) Nnz() int {
	return len(v.Indices)
}

// Dot returns the inner product with a dense vector; out-of-range indices contribute nothing.
func (v Vector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if idx < len(dense) {
			sum += v.Values[i] * dense[idx]
		}
	}
	return sum
}

// Norm returns the Euclidean norm of the stored values.
func (v Vector) Norm() float64 {
	return floats.Norm(v.Values, 2)
}

// Validate checks the ordering and zero-suppression invariants.
func (v Vector) Validate() error {
	if len(v.Indices) != len(v.Values) {
		return fmt.Errorf("%d indices but %d values", len(v.Indices), len(v.Values))
	}
	for i, idx := range v.Indices {
		if i > 0 && idx <= v.Indices[i-1] {
			return fmt.Errorf("indices not strictly ascending at position %d", i)
		}
		if v.Values[i] == 0 {
			return fmt.Errorf("zero value stored at index %d", idx)
		}
	}
	return nil
}

// MarshalJSON writes the [[indices...],[values...]] form read by the visualizers.
func (v Vector) MarshalJSON() ([]byte, error) {
	indices := v.Indices
	if indices == nil {
		indices = []int{}
	}
	values := v.Values
	if values == nil {
		values = []float64{}
	}
	return json.Marshal([2]any{indices, values})
}

// UnmarshalJSON reads the [[indices...],[values...]] form.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sparse vector: %w", err)
	}
	var out Vector
	if err := json.Unmarshal(raw[0], &out.Indices); err != nil {
		return fmt.Errorf("sparse indices: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Values); err != nil {
		return fmt.Errorf("sparse values: %w", err)
	}
	if len(out.Indices) != len(out.Values) {
		return fmt.Errorf("sparse vector: %d indices but %d values", len(out.Indices), len(out.Values))
	}
	*v = out
	return nil
}
