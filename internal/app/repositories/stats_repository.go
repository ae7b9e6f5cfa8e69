package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/gradebook/internal/app/models"
)

// gradeBucket normalizes blank and NULL grades into one histogram key
const gradeBucket = "COALESCE(NULLIF(TRIM(grade), ''), '" + models.UnassignedGrade + "')"

// StatsRepository reads aggregates from students and maintains the stats tables
type StatsRepository struct {
	q  Querier
	sb squirrel.StatementBuilderType
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(q Querier) *StatsRepository {
	return &StatsRepository{q: q, sb: statementBuilder()}
}

// WithTx returns a copy bound to tx
func (r *StatsRepository) WithTx(tx *sql.Tx) *StatsRepository {
	return &StatsRepository{q: tx, sb: r.sb}
}

// Aggregate computes count, average, max and min marks over students
func (r *StatsRepository) Aggregate(ctx context.Context) (*models.Stats, error) {
	query, args, err := r.sb.Select("COUNT(*)", "AVG(marks)", "MAX(marks)", "MIN(marks)").
		From("students").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregate query: %w", err)
	}

	var (
		count    int
		avg      sql.NullFloat64
		hi, lo   sql.NullInt64
		snapshot = &models.Stats{}
	)
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&count, &avg, &hi, &lo); err != nil {
		return nil, fmt.Errorf("error aggregating students: %w", err)
	}

	snapshot.TotalStudents = count
	if avg.Valid {
		v := avg.Float64
		snapshot.AvgMarks = &v
	}
	if hi.Valid {
		v := int(hi.Int64)
		snapshot.HighestMarks = &v
	}
	if lo.Valid {
		v := int(lo.Int64)
		snapshot.LowestMarks = &v
	}
	return snapshot, nil
}

// Histogram groups students by normalized grade
func (r *StatsRepository) Histogram(ctx context.Context) ([]models.GradeCount, error) {
	query, args, err := r.sb.Select(gradeBucket+" AS bucket", "COUNT(*)").
		From("students").
		GroupBy("bucket").
		OrderBy("bucket ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build histogram query: %w", err)
	}
	return r.scanCounts(ctx, query, args)
}

func (r *StatsRepository) scanCounts(ctx context.Context, query string, args []interface{}) ([]models.GradeCount, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying grade counts: %w", err)
	}
	defer rows.Close()

	counts := []models.GradeCount{}
	for rows.Next() {
		var gc models.GradeCount
		if err := rows.Scan(&gc.Grade, &gc.Count); err != nil {
			return nil, fmt.Errorf("error scanning grade count: %w", err)
		}
		counts = append(counts, gc)
	}
	return counts, rows.Err()
}

// EnsureSingleton inserts the stats row if it is missing
func (r *StatsRepository) EnsureSingleton(ctx context.Context) error {
	query, args, err := r.sb.Insert("stats").
		Options("OR IGNORE").
		Columns("id", "total_students").
		Values(1, 0).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ensure stats query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error ensuring stats row: %w", err)
	}
	return nil
}

// Save overwrites the singleton row with s, stamping it with updatedAt
func (r *StatsRepository) Save(ctx context.Context, s *models.Stats, updatedAt time.Time) error {
	if err := r.EnsureSingleton(ctx); err != nil {
		return err
	}

	query, args, err := r.sb.Update("stats").
		Set("total_students", s.TotalStudents).
		Set("avg_marks", s.AvgMarks).
		Set("highest_marks", s.HighestMarks).
		Set("lowest_marks", s.LowestMarks).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save stats query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error saving stats: %w", err)
	}
	return nil
}

// ReplaceHistogram deletes every grade_stats row and inserts counts
func (r *StatsRepository) ReplaceHistogram(ctx context.Context, counts []models.GradeCount) error {
	delQuery, delArgs, err := r.sb.Delete("grade_stats").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear histogram query: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, delQuery, delArgs...); err != nil {
		return fmt.Errorf("error clearing histogram: %w", err)
	}

	if len(counts) == 0 {
		return nil
	}

	insert := r.sb.Insert("grade_stats").Columns("grade", "count")
	for _, gc := range counts {
		insert = insert.Values(gc.Grade, gc.Count)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build histogram insert: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting histogram: %w", err)
	}
	return nil
}

// Get reads the stored snapshot and histogram
func (r *StatsRepository) Get(ctx context.Context) (*models.Stats, error) {
	query, args, err := r.sb.Select("total_students", "avg_marks", "highest_marks", "lowest_marks", "updated_at").
		From("stats").
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get stats query: %w", err)
	}

	var (
		s       = &models.Stats{}
		avg     sql.NullFloat64
		hi, lo  sql.NullInt64
		updated sql.NullTime
	)
	err = r.q.QueryRowContext(ctx, query, args...).Scan(&s.TotalStudents, &avg, &hi, &lo, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading stats: %w", err)
	}

	if avg.Valid {
		v := avg.Float64
		s.AvgMarks = &v
	}
	if hi.Valid {
		v := int(hi.Int64)
		s.HighestMarks = &v
	}
	if lo.Valid {
		v := int(lo.Int64)
		s.LowestMarks = &v
	}
	if updated.Valid {
		t := updated.Time
		s.UpdatedAt = &t
	}

	histQuery, histArgs, err := r.sb.Select("grade", "count").
		From("grade_stats").
		OrderBy("grade ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get histogram query: %w", err)
	}
	s.Distribution, err = r.scanCounts(ctx, histQuery, histArgs)
	if err != nil {
		return nil, err
	}
	return s, nil
}
