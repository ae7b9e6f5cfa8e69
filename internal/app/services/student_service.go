package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/helpers"
	"github.com/yigit/gradebook/internal/pkg/validation"
)

// MsgRecordNotFound is shown when editing an id that does not exist
const MsgRecordNotFound = "Record not found"

// StudentService defines the student record operations
type StudentService interface {
	List(ctx context.Context) ([]*models.Student, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, req dto.StudentRequest) (*models.Student, error)
	Update(ctx context.Context, id int64, req dto.StudentRequest) (*models.Student, error)
	// Delete is a no-op for an unknown id; statistics are recomputed either way
	Delete(ctx context.Context, id int64) error
}

type studentServiceImpl struct {
	studentRepo  *repositories.StudentRepository
	statsService StatsService
	observer     ChangeObserver
	logger       zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(
	studentRepo *repositories.StudentRepository,
	statsService StatsService,
	observer ChangeObserver,
	logger zerolog.Logger,
) StudentService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &studentServiceImpl{
		studentRepo:  studentRepo,
		statsService: statsService,
		observer:     observer,
		logger:       logger,
	}
}

// studentFromRequest validates req and converts it into a record
func studentFromRequest(req dto.StudentRequest) (*models.Student, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	marks, err := validation.Integer("marks", req.Marks)
	if err != nil {
		return nil, err
	}

	return &models.Student{
		RollNumber: strings.TrimSpace(req.RollNumber),
		Name:       strings.TrimSpace(req.Name),
		Email:      helpers.StringPtr(helpers.NullIfBlank(req.Email)),
		Subject:    strings.TrimSpace(req.Subject),
		Marks:      marks,
		Grade:      helpers.StringPtr(helpers.NullIfBlank(req.Grade)),
	}, nil
}

// afterChange runs the post-commit steps: recompute, then export
func (s *studentServiceImpl) afterChange(ctx context.Context) {
	if _, err := s.statsService.Recompute(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Statistics recompute after student change failed")
	}
	s.observer.StudentsChanged(ctx)
}

func (s *studentServiceImpl) List(ctx context.Context) ([]*models.Student, error) {
	return s.studentRepo.List(ctx)
}

func (s *studentServiceImpl) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NewNotFoundError(MsgRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (s *studentServiceImpl) Create(ctx context.Context, req dto.StudentRequest) (*models.Student, error) {
	student, err := studentFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info().Int64("studentID", student.ID).Str("rollNumber", student.RollNumber).Msg("Student created")
	s.afterChange(ctx)
	return student, nil
}

func (s *studentServiceImpl) Update(ctx context.Context, id int64, req dto.StudentRequest) (*models.Student, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	student, err := studentFromRequest(req)
	if err != nil {
		return nil, err
	}
	student.ID = id

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(MsgRecordNotFound)
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	s.logger.Info().Int64("studentID", id).Msg("Student updated")
	s.afterChange(ctx)
	return student, nil
}

func (s *studentServiceImpl) Delete(ctx context.Context, id int64) error {
	existed, err := s.studentRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	s.logger.Info().Int64("studentID", id).Bool("existed", existed).Msg("Student delete")
	s.afterChange(ctx)
	return nil
}
