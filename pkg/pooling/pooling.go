package pooling

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Mode selects the pooling strategy.
type Mode string

const (
	// Mean averages the valid positions.
	Mean Mode = "mean"
	// Last takes the vector at the last valid position.
	Last Mode = "last"
	// Max takes the elementwise maximum over the valid positions.
	Max Mode = "max"
	// First takes the vector at position 0. Any unknown mode behaves like First.
	First Mode = "first"
)

// ParseMode maps a flag value to a Mode. Unrecognized names map to First.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Mean, Last, Max:
		return m
	default:
		return First
	}
}

// maxPenalty pushes masked positions toward negative infinity before the
// max reduction. It has to dominate any real activation.
const maxPenalty = float32(math.MaxInt64)

// Pool reduces the bank to a [batch, hidden] matrix. The mask is multiplied
// into the hidden states before any reduction; mean and max reduce the
// sequence axis with tensor.Sum and (*tensor.Dense).Max.
func Pool(b *Bank, mode Mode) (*mat.Dense, error) {
	if err := checkRows(b, mode); err != nil {
		return nil, err
	}

	mask := b.expandedMask()
	masked, err := tensor.Mul(b.states, mask)
	if err != nil {
		return nil, fmt.Errorf("pooling: apply mask: %w", err)
	}

	var pooled []float32
	switch mode {
	case Mean:
		pooled, err = poolMean(b, masked)
	case Max:
		pooled, err = poolMax(masked, mask)
	case Last:
		pooled = pick(b, masked, func(row int) int { return b.validCount(row) - 1 })
	default:
		pooled = pick(b, masked, func(int) int { return 0 })
	}
	if err != nil {
		return nil, fmt.Errorf("pooling: %s: %w", mode, err)
	}

	batch, _, hidden := b.Shape()
	out := mat.NewDense(batch, hidden, nil)
	raw := out.RawMatrix().Data
	for i, v := range pooled {
		raw[i] = float64(v)
	}
	return out, nil
}

// checkRows rejects rows the strategy cannot reduce.
func checkRows(b *Bank, mode Mode) error {
	if mode != Mean && mode != Last && mode != Max {
		return nil
	}
	for row := range b.mask {
		valid := b.validCount(row)
		if valid == 0 {
			return fmt.Errorf("row %d: %w", row, ErrEmptySequence)
		}
		if mode != Last {
			continue
		}
		for pos := 0; pos < valid; pos++ {
			if b.mask[row][pos] == 0 {
				return fmt.Errorf("row %d: %w", row, ErrNonPrefixMask)
			}
		}
	}
	return nil
}

// poolMean sums the masked states over the sequence axis and divides each
// row by its number of valid positions.
func poolMean(b *Bank, masked tensor.Tensor) ([]float32, error) {
	summed, err := tensor.Sum(masked, 1)
	if err != nil {
		return nil, err
	}
	counts, err := tensor.Sum(b.maskMatrix(), 1)
	if err != nil {
		return nil, err
	}

	sums, valid := float32s(summed), float32s(counts)
	_, _, hidden := b.Shape()
	out := make([]float32, len(sums))
	for i, v := range sums {
		out[i] = v / valid[i/hidden]
	}
	return out, nil
}

// poolMax adds (mask-1)*maxPenalty to the masked states so padding never
// wins, then takes the maximum over the sequence axis.
func poolMax(masked tensor.Tensor, mask *tensor.Dense) ([]float32, error) {
	m := mask.Data().([]float32)
	penalty := make([]float32, len(m))
	for i, v := range m {
		penalty[i] = (v - 1) * maxPenalty
	}
	penalized, err := tensor.Add(masked, tensor.New(tensor.WithShape(mask.Shape()...), tensor.WithBacking(penalty)))
	if err != nil {
		return nil, err
	}
	reduced, err := penalized.(*tensor.Dense).Max(1)
	if err != nil {
		return nil, err
	}
	return float32s(reduced), nil
}

// pick copies one position per row out of the masked states.
func pick(b *Bank, masked tensor.Tensor, position func(row int) int) []float32 {
	batch, seq, hidden := b.Shape()
	data := float32s(masked)
	out := make([]float32, batch*hidden)
	for row := range batch {
		start := (row*seq + position(row)) * hidden
		copy(out[row*hidden:], data[start:start+hidden])
	}
	return out
}

// float32s returns the backing values of a float32 tensor. Reductions down
// to a single element come back as a scalar.
func float32s(t tensor.Tensor) []float32 {
	switch v := t.Data().(type) {
	case []float32:
		return v
	case float32:
		return []float32{v}
	default:
		panic(fmt.Sprintf("pooling: unexpected tensor data %T", v))
	}
}
