package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/helpers"
	"github.com/yigit/gradebook/internal/pkg/logger"
)

var studentColumns = []string{"id", "roll_number", "name", "email", "subject", "marks", "grade"}

// StudentRepository handles student database operations
type StudentRepository struct {
	q  Querier
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(q Querier) *StudentRepository {
	return &StudentRepository{q: q, sb: statementBuilder()}
}

// WithTx returns a copy bound to tx
func (r *StudentRepository) WithTx(tx *sql.Tx) *StudentRepository {
	return &StudentRepository{q: tx, sb: r.sb}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	s := &models.Student{}
	var email, grade sql.NullString
	if err := row.Scan(&s.ID, &s.RollNumber, &s.Name, &email, &s.Subject, &s.Marks, &grade); err != nil {
		return nil, err
	}
	s.Email = helpers.StringPtr(email)
	s.Grade = helpers.StringPtr(grade)
	return s, nil
}

// List returns every student ordered by roll number
func (r *StudentRepository) List(ctx context.Context) ([]*models.Student, error) {
	query, args, err := r.sb.Select(studentColumns...).
		From("students").
		OrderBy("roll_number ASC", "id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}
	return s, nil
}

// Create inserts student and sets its ID
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	query, args, err := r.sb.Insert("students").
		Columns("roll_number", "name", "email", "subject", "marks", "grade").
		Values(s.RollNumber, s.Name, helpers.GetNullString(s.Email), s.Subject, s.Marks, helpers.GetNullString(s.Grade)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading new student id: %w", err)
	}
	s.ID = id
	return nil
}

// Update overwrites every field of the student with s.ID
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	query, args, err := r.sb.Update("students").
		Set("roll_number", s.RollNumber).
		Set("name", s.Name).
		Set("email", helpers.GetNullString(s.Email)).
		Set("subject", s.Subject).
		Set("marks", s.Marks).
		Set("grade", helpers.GetNullString(s.Grade)).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", s.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the student with id and reports whether a row existed
func (r *StudentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := r.sb.Delete("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete student query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return false, fmt.Errorf("error deleting student: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
