package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAverageZeroWhenNothingAssessed(t *testing.T) {
	totals := FromScores(nil, nil)
	require.Equal(t, int64(0), totals.Count)
	require.Equal(t, 0, totals.Average())
}

func TestAverageOfMixedScores(t *testing.T) {
	totals := FromScores([]int{80, 60}, []int{70})
	require.Equal(t, int64(210), totals.Sum)
	require.Equal(t, int64(3), totals.Count)
	require.Equal(t, 70, totals.Average())
}

func TestAverageRoundsHalfUp(t *testing.T) {
	require.Equal(t, 71, FromScores([]int{70, 71}).Average())
	require.Equal(t, 70, FromScores([]int{70, 70, 71}).Average())
	require.Equal(t, 67, FromScores([]int{100, 100, 0}).Average())
	require.Equal(t, 1, FromScores([]int{0, 1}).Average())
}

func TestBoardOrdersByExactAverage(t *testing.T) {
	// 71 and 70.67 both round to 71 but must not tie.
	entries := []Entry{
		{StudentID: 1, Totals: FromScores([]int{70, 71, 71})},
		{StudentID: 2, Totals: FromScores([]int{71})},
		{StudentID: 3, Totals: FromScores([]int{90, 95})},
	}

	board := NewBoard(entries, time.Now())
	require.Equal(t, 3, board.Size())
	require.Equal(t, uint(3), board.Entries[0].StudentID)
	require.Equal(t, uint(2), board.Entries[1].StudentID)
	require.Equal(t, uint(1), board.Entries[2].StudentID)
	require.Equal(t, 1, board.Rank(3))
	require.Equal(t, 93, board.Entries[0].Average)
}

func TestBoardBreaksTiesByStudentID(t *testing.T) {
	entries := []Entry{
		{StudentID: 9, Totals: FromScores([]int{80})},
		{StudentID: 4, Totals: FromScores([]int{70, 90})},
		{StudentID: 6, Totals: Totals{}},
		{StudentID: 2, Totals: Totals{}},
	}

	board := NewBoard(entries, time.Now())
	ids := make([]uint, 0, len(board.Entries))
	for _, entry := range board.Entries {
		ids = append(ids, entry.StudentID)
	}
	require.Equal(t, []uint{4, 9, 2, 6}, ids)
	require.Equal(t, 0, board.Entries[3].Average)
}

func TestBoardRankUnknownStudent(t *testing.T) {
	board := NewBoard([]Entry{{StudentID: 1, Totals: FromScores([]int{50})}}, time.Now())
	require.Equal(t, 0, board.Rank(42))
}

func TestBoardFilterKeepsGlobalRank(t *testing.T) {
	entries := []Entry{
		{StudentID: 1, GroupID: 10, Totals: FromScores([]int{90})},
		{StudentID: 2, GroupID: 20, Totals: FromScores([]int{80})},
		{StudentID: 3, GroupID: 10, Totals: FromScores([]int{70})},
	}

	filtered := NewBoard(entries, time.Now()).Filter(10)
	require.Len(t, filtered.Entries, 2)
	require.Equal(t, 1, filtered.Entries[0].Rank)
	require.Equal(t, 3, filtered.Entries[1].Rank)
}

func TestNewBoardDoesNotMutateInput(t *testing.T) {
	entries := []Entry{
		{StudentID: 1, Totals: FromScores([]int{10})},
		{StudentID: 2, Totals: FromScores([]int{90})},
	}
	_ = NewBoard(entries, time.Now())
	require.Equal(t, uint(1), entries[0].StudentID)
	require.Zero(t, entries[0].Rank)
}
