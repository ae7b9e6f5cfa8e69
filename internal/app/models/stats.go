package models

import "time"

// Stats is the singleton aggregate row. Pointer fields are nil when there are no students.
type Stats struct {
	TotalStudents int          `db:"total_students"`
	AvgMarks      *float64     `db:"avg_marks"`
	HighestMarks  *int         `db:"highest_marks"`
	LowestMarks   *int         `db:"lowest_marks"`
	UpdatedAt     *time.Time   `db:"updated_at"`
	Distribution  []GradeCount `db:"-"`
}

// GradeCount is one histogram bucket
type GradeCount struct {
	Grade string `json:"grade" db:"grade"`
	Count int    `json:"count" db:"count"`
}

// DistributionTotal sums the histogram; it equals TotalStudents after a recompute
func (s *Stats) DistributionTotal() int {
	total := 0
	for _, gc := range s.Distribution {
		total += gc.Count
	}
	return total
}
