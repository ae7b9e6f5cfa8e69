package dto

import (
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// StatsData is the aggregate snapshot. Marks fields are null when there are no students.
type StatsData struct {
	TotalStudents     int                 `json:"total_students" example:"2"`
	AvgMarks          *float64            `json:"avg_marks" example:"77.5"`
	HighestMarks      *int                `json:"highest_marks" example:"85"`
	LowestMarks       *int                `json:"lowest_marks" example:"70"`
	UpdatedAt         *string             `json:"updated_at" example:"2024-01-01T10:00:00Z"`
	GradeDistribution []models.GradeCount `json:"grade_distribution"`
}

// StatsResponse is returned by /stats and /api/stats
type StatsResponse struct {
	Success bool      `json:"success" example:"true"`
	Stats   StatsData `json:"stats"`
}

// NewStatsResponse maps a snapshot, always emitting an array for the distribution
func NewStatsResponse(stats *models.Stats) StatsResponse {
	data := StatsData{GradeDistribution: []models.GradeCount{}}
	if stats != nil {
		data.TotalStudents = stats.TotalStudents
		data.AvgMarks = stats.AvgMarks
		data.HighestMarks = stats.HighestMarks
		data.LowestMarks = stats.LowestMarks
		if stats.UpdatedAt != nil {
			ts := helpers.FormatTimestamp(*stats.UpdatedAt)
			data.UpdatedAt = &ts
		}
		if len(stats.Distribution) > 0 {
			data.GradeDistribution = stats.Distribution
		}
	}
	return StatsResponse{Success: true, Stats: data}
}
