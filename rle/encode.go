package rle

import (
	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/model"
)

// EncodeChunk encodes data[r.Start:r.End] as if it were a standalone buffer.
// An empty range encodes to nil.
func EncodeChunk(data []byte, r model.Range) []byte {
	if r.Empty() {
		return nil
	}

	// worst case is one pair per byte
	out := make([]byte, 0, r.Len()*constants.PairSize)
	i := r.Start
	for i < r.End {
		c := data[i]
		count := 1
		for i+count < r.End && data[i+count] == c && count < constants.MaxRunLength {
			count++
		}
		out = append(out, c, byte(count))
		i += count
	}
	return out
}

// Encode encodes the whole buffer as a single chunk.
func Encode(data []byte) []byte {
	return EncodeChunk(data, model.Range{Start: 0, End: len(data)})
}
