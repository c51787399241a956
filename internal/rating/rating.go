// Package rating computes student averages and the global leaderboard.
//
// Averages are integer percentages rounded half up. Ranking compares exact
// averages as fractions and breaks ties by ascending student id, so the order
// is total and reproducible.
package rating

import (
	"sort"
	"time"
)

// Totals accumulates the sum and count of assessment scores.
type Totals struct {
	Sum   int64 `json:"sum"`
	Count int64 `json:"count"`
}

// FromScores builds totals from raw scores.
func FromScores(scores ...[]int) Totals {
	var t Totals
	for _, set := range scores {
		for _, score := range set {
			t.Sum += int64(score)
			t.Count++
		}
	}
	return t
}

// Add merges two totals.
func (t Totals) Add(other Totals) Totals {
	return Totals{Sum: t.Sum + other.Sum, Count: t.Count + other.Count}
}

// Average returns round-half-up(Sum/Count), or 0 when nothing was assessed.
func (t Totals) Average() int {
	if t.Count <= 0 {
		return 0
	}
	if t.Sum < 0 {
		return -int((-2*t.Sum + t.Count) / (2 * t.Count))
	}
	return int((2*t.Sum + t.Count) / (2 * t.Count))
}

// Less reports whether t has a strictly lower exact average than other.
func (t Totals) Less(other Totals) bool {
	lhs, rhs := t.normalized(), other.normalized()
	return lhs.Sum*rhs.Count < rhs.Sum*lhs.Count
}

func (t Totals) normalized() Totals {
	if t.Count <= 0 {
		return Totals{Sum: 0, Count: 1}
	}
	return t
}

// Entry is one student's line on the leaderboard.
type Entry struct {
	StudentID  uint   `json:"student_id"`
	FullName   string `json:"full_name"`
	GroupID    uint   `json:"group_id"`
	GroupName  string `json:"group_name"`
	Status     string `json:"status"`
	TaskCount  int64  `json:"task_count"`
	Attendance int64  `json:"attendance_count"`
	Totals     Totals `json:"totals"`
	Average    int    `json:"average_score"`
	Rank       int    `json:"rank"`
}

// Board is an ordered leaderboard snapshot.
type Board struct {
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
}

// NewBoard orders the entries and assigns 1-based ranks.
func NewBoard(entries []Entry, generatedAt time.Time) Board {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)

	for i := range ordered {
		ordered[i].Average = ordered[i].Totals.Average()
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Totals, ordered[j].Totals
		if b.Less(a) {
			return true
		}
		if a.Less(b) {
			return false
		}
		return ordered[i].StudentID < ordered[j].StudentID
	})

	for i := range ordered {
		ordered[i].Rank = i + 1
	}

	return Board{GeneratedAt: generatedAt, Entries: ordered}
}

// Rank returns the student's position, or 0 when the student is not on the board.
func (b Board) Rank(studentID uint) int {
	for _, entry := range b.Entries {
		if entry.StudentID == studentID {
			return entry.Rank
		}
	}
	return 0
}

// Size returns the number of ranked students.
func (b Board) Size() int {
	return len(b.Entries)
}

// Filter keeps the entries that belong to the given group. Ranks stay global.
func (b Board) Filter(groupID uint) Board {
	filtered := make([]Entry, 0)
	for _, entry := range b.Entries {
		if entry.GroupID == groupID {
			filtered = append(filtered, entry)
		}
	}
	return Board{GeneratedAt: b.GeneratedAt, Entries: filtered}
}
