// Package pooling reduces the per-token hidden states produced by an encoder
// into one vector per input sequence.
//
// A Bank pairs a [batch, seq, hidden] tensor of hidden states with the
// segment (attention) mask that marks which positions hold real tokens.
// Pool applies one of the supported strategies and returns a gonum matrix
// with one row per sequence.
package pooling

import (
	"errors"
	"fmt"

	"gorgonia.org/tensor"
)

var (
	// ErrShapeMismatch is returned when the mask does not cover the first two
	// axes of the hidden states, or the backing data has the wrong length.
	ErrShapeMismatch = errors.New("pooling: mask and memory bank shapes differ")

	// ErrEmptySequence is returned when a row has no valid position and the
	// strategy needs at least one (mean, last, max).
	ErrEmptySequence = errors.New("pooling: sequence has no valid positions")

	// ErrNonPrefixMask is returned by the "last" strategy when the valid
	// positions of a row are not a contiguous prefix.
	ErrNonPrefixMask = errors.New("pooling: valid positions are not a contiguous prefix")
)

// Bank is the memory bank of an encoder's last hidden layer together with its
// segment mask.
type Bank struct {
	states *tensor.Dense
	mask   [][]int64
}

// NewBank wraps flat row-major hidden states of shape [batch, seq, hidden].
// mask must have batch rows of seq entries each, 1 for a real token and 0
// for padding.
func NewBank(batch, seq, hidden int, data []float32, mask [][]int64) (*Bank, error) {
	if batch <= 0 || seq <= 0 || hidden <= 0 {
		return nil, fmt.Errorf("%w: invalid shape [%d, %d, %d]", ErrShapeMismatch, batch, seq, hidden)
	}
	if len(data) != batch*seq*hidden {
		return nil, fmt.Errorf("%w: got %d values for shape [%d, %d, %d]", ErrShapeMismatch, len(data), batch, seq, hidden)
	}
	if len(mask) != batch {
		return nil, fmt.Errorf("%w: mask has %d rows, want %d", ErrShapeMismatch, len(mask), batch)
	}
	for i, row := range mask {
		if len(row) != seq {
			return nil, fmt.Errorf("%w: mask row %d has %d positions, want %d", ErrShapeMismatch, i, len(row), seq)
		}
	}

	t := tensor.New(tensor.WithShape(batch, seq, hidden), tensor.WithBacking(data))
	return &Bank{states: t, mask: mask}, nil
}

// FromSequences pads variable-length token sequences into a bank. Each
// sequence is a list of per-token vectors; the mask marks the original
// tokens as a prefix of every row.
func FromSequences(seqs [][][]float32) (*Bank, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("%w: no sequences", ErrShapeMismatch)
	}

	seqLen, hidden := 0, 0
	for _, s := range seqs {
		seqLen = max(seqLen, len(s))
		for _, tok := range s {
			if hidden == 0 {
				hidden = len(tok)
			}
			if len(tok) != hidden {
				return nil, fmt.Errorf("%w: token vectors have mixed sizes %d and %d", ErrShapeMismatch, hidden, len(tok))
			}
		}
	}
	if seqLen == 0 || hidden == 0 {
		return nil, fmt.Errorf("%w: sequences are empty", ErrShapeMismatch)
	}

	data := make([]float32, len(seqs)*seqLen*hidden)
	mask := make([][]int64, len(seqs))
	for b, s := range seqs {
		mask[b] = make([]int64, seqLen)
		for p, tok := range s {
			copy(data[(b*seqLen+p)*hidden:], tok)
			mask[b][p] = 1
		}
	}
	return NewBank(len(seqs), seqLen, hidden, data, mask)
}

// FromPooled wraps already pooled vectors as a bank with a single valid
// position per row, so remote embedding APIs fit the same pipeline.
func FromPooled(vecs [][]float32) (*Bank, error) {
	seqs := make([][][]float32, len(vecs))
	for i, v := range vecs {
		seqs[i] = [][]float32{v}
	}
	return FromSequences(seqs)
}

// Shape returns the batch, sequence and hidden sizes.
func (b *Bank) Shape() (batch, seq, hidden int) {
	s := b.states.Shape()
	return s[0], s[1], s[2]
}

// Mask returns the segment mask. Callers must not modify it.
func (b *Bank) Mask() [][]int64 {
	return b.mask
}

// At returns the hidden value at (row, pos, dim), ignoring the mask.
func (b *Bank) At(row, pos, dim int) float32 {
	_, seq, hidden := b.Shape()
	return b.states.Data().([]float32)[(row*seq+pos)*hidden+dim]
}

// validCount returns the number of real tokens in row.
func (b *Bank) validCount(row int) int {
	n := 0
	for _, m := range b.mask[row] {
		if m != 0 {
			n++
		}
	}
	return n
}

// maskMatrix returns the mask as a [batch, seq] float32 tensor.
func (b *Bank) maskMatrix() *tensor.Dense {
	batch, seq, _ := b.Shape()
	data := make([]float32, 0, batch*seq)
	for _, row := range b.mask {
		for _, m := range row {
			data = append(data, float32(m))
		}
	}
	return tensor.New(tensor.WithShape(batch, seq), tensor.WithBacking(data))
}

// expandedMask repeats the mask along the hidden axis so it matches the
// [batch, seq, hidden] states elementwise.
func (b *Bank) expandedMask() *tensor.Dense {
	batch, seq, hidden := b.Shape()
	data := make([]float32, batch*seq*hidden)
	for row, positions := range b.mask {
		for pos, m := range positions {
			start := (row*seq + pos) * hidden
			for d := range hidden {
				data[start+d] = float32(m)
			}
		}
	}
	return tensor.New(tensor.WithShape(batch, seq, hidden), tensor.WithBacking(data))
}
