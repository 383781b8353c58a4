package document

import (
	"encoding/binary"
	"math"

	"gitlab.com/tozd/go/errors"
)

// ErrEmbeddingSizeMismatch is returned wherever a caller's reported or
// expected vector count disagrees with what was actually produced.
type ErrEmbeddingSizeMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrEmbeddingSizeMismatch) Error() string {
	return "embedding size mismatch"
}

// NewEmbeddingSizeMismatch wraps an ErrEmbeddingSizeMismatch with a stack.
func NewEmbeddingSizeMismatch(expected, actual int) errors.E {
	errE := errors.WithStack(&ErrEmbeddingSizeMismatch{Expected: expected, Actual: actual})
	details := errors.Details(errE)
	details["expected"] = expected
	details["actual"] = actual
	return errE
}

// PackVector encodes a float32 vector as little-endian bytes, the wire
// format the embeddings table column stores.
func PackVector(v []float32) []byte {
	b := make([]byte, len(v)*4) //nolint:gomnd
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

// UnpackVector reverses PackVector.
func UnpackVector(b []byte) ([]float32, errors.E) {
	if len(b)%4 != 0 {
		return nil, errors.Errorf("vector byte length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
