package chunk

import (
	"errors"

	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/model"
)

var ErrNoWorkers = errors.New("chunk: worker count must be at least 1")

// Partition splits [0, length) into exactly `workers` contiguous ranges.
// Every range gets length/workers items except the last, which runs to
// length and so absorbs the remainder. When length < workers the leading
// ranges are empty.
func Partition(length, workers int) ([]model.Range, error) {
	if workers < 1 {
		return nil, ErrNoWorkers
	}
	if length < 0 {
		length = 0
	}

	size := length / workers
	ranges := make([]model.Range, workers)
	for i := range ranges {
		start := i * size
		end := start + size
		if i == workers-1 {
			end = length
		}
		ranges[i] = model.Range{Start: start, End: end}
	}
	return ranges, nil
}

// PartitionPairs partitions an encoded payload of encodedLength bytes by
// pair count and returns byte ranges that never split a pair.
func PartitionPairs(encodedLength, workers int) ([]model.Range, error) {
	if encodedLength%constants.PairSize != 0 {
		return nil, model.NewFormatError(-1, "odd payload length %d", encodedLength)
	}

	ranges, err := Partition(encodedLength/constants.PairSize, workers)
	if err != nil {
		return nil, err
	}
	for i := range ranges {
		ranges[i].Start *= constants.PairSize
		ranges[i].End *= constants.PairSize
	}
	return ranges, nil
}
