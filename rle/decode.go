package rle

import (
	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/model"
)

// DecodedSize validates the pairs in data[r.Start:r.End] and returns the
// number of raw bytes they expand to.
func DecodedSize(data []byte, r model.Range) (int, error) {
	if r.Len()%constants.PairSize != 0 {
		return 0, model.NewFormatError(r.Start, "odd chunk length %d", r.Len())
	}

	size := 0
	for i := r.Start; i < r.End; i += constants.PairSize {
		count := int(data[i+1])
		if count == 0 {
			return 0, model.NewFormatError(i, "zero run count")
		}
		size += count
	}
	return size, nil
}

// DecodeChunk expands the (value, count) pairs in data[r.Start:r.End].
// The range must hold a whole number of pairs and every count must be
// non-zero; anything else is a *model.FormatError.
func DecodeChunk(data []byte, r model.Range) ([]byte, error) {
	size, err := DecodedSize(data, r)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}

	out := make([]byte, size)
	pos := 0
	for i := r.Start; i < r.End; i += constants.PairSize {
		value, count := data[i], int(data[i+1])
		run := out[pos : pos+count]
		for j := range run {
			run[j] = value
		}
		pos += count
	}
	return out, nil
}

// Decode expands a whole encoded buffer as a single chunk.
func Decode(data []byte) ([]byte, error) {
	return DecodeChunk(data, model.Range{Start: 0, End: len(data)})
}
