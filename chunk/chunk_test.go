package chunk

import (
	"fmt"
	"testing"

	"github.com/jsphweid/parle/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertExhaustive(t *testing.T, ranges []model.Range, length int) {
	t.Helper()
	next := 0
	for _, r := range ranges {
		assert.Equal(t, next, r.Start)
		assert.LessOrEqual(t, r.Start, r.End)
		next = r.End
	}
	assert.Equal(t, length, next)
}

func TestPartitionLastRangeAbsorbsRemainder(t *testing.T) {
	ranges, err := Partition(10, 3)
	require.NoError(t, err)

	assert.Equal(t, []model.Range{{Start: 0, End: 3}, {Start: 3, End: 6}, {Start: 6, End: 10}}, ranges)
}

func TestPartitionIsContiguousAndExhaustive(t *testing.T) {
	for _, length := range []int{0, 1, 2, 7, 64, 1000, 1023} {
		for _, workers := range []int{1, 2, 3, 8, 17} {
			name := fmt.Sprintf("length=%d workers=%d", length, workers)
			t.Run(name, func(t *testing.T) {
				ranges, err := Partition(length, workers)
				require.NoError(t, err)
				assert.Len(t, ranges, workers)
				assertExhaustive(t, ranges, length)
				for _, r := range ranges[:workers-1] {
					assert.Equal(t, length/workers, r.Len())
				}
			})
		}
	}
}

func TestPartitionShortInputYieldsEmptyRanges(t *testing.T) {
	ranges, err := Partition(3, 4)
	require.NoError(t, err)

	assert.Equal(t, []model.Range{{Start: 0, End: 0}, {Start: 0, End: 0}, {Start: 0, End: 0}, {Start: 0, End: 3}}, ranges)
}

func TestPartitionEmptyInput(t *testing.T) {
	ranges, err := Partition(0, 4)
	require.NoError(t, err)

	for _, r := range ranges {
		assert.True(t, r.Empty())
	}
}

func TestPartitionRejectsZeroWorkers(t *testing.T) {
	_, err := Partition(10, 0)
	assert.ErrorIs(t, err, ErrNoWorkers)
}

func TestPartitionPairsKeepsPairAlignment(t *testing.T) {
	ranges, err := PartitionPairs(14, 3)
	require.NoError(t, err)

	// 7 pairs over 3 workers: 2, 2, 3
	assert.Equal(t, []model.Range{{Start: 0, End: 4}, {Start: 4, End: 8}, {Start: 8, End: 14}}, ranges)
	for _, r := range ranges {
		assert.Zero(t, r.Len()%2)
	}
}

func TestPartitionPairsFewerPairsThanWorkers(t *testing.T) {
	ranges, err := PartitionPairs(4, 4)
	require.NoError(t, err)

	assert.Equal(t, []model.Range{{Start: 0, End: 0}, {Start: 0, End: 0}, {Start: 0, End: 0}, {Start: 0, End: 4}}, ranges)
}

func TestPartitionPairsRejectsOddLength(t *testing.T) {
	_, err := PartitionPairs(5, 2)
	assert.True(t, model.IsFormatError(err))
}
