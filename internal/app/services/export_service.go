package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/export"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

var (
	studentsHeader = []string{"id", "roll_number", "name", "email", "subject", "marks", "grade"}
	usersHeader    = []string{"id", "username", "email", "role"}
)

// ExportFiles names the snapshot and log files inside the export store
type ExportFiles struct {
	Students string
	Users    string
	LoginLog string
}

// ExportService writes the text snapshots and the login log.
// Its ChangeObserver methods swallow errors; the Export* methods return them.
type ExportService struct {
	store       export.Store
	studentRepo *repositories.StudentRepository
	userRepo    *repositories.UserRepository
	files       ExportFiles
	logger      zerolog.Logger
	now         func() time.Time
}

// NewExportService creates a new export service
func NewExportService(
	store export.Store,
	studentRepo *repositories.StudentRepository,
	userRepo *repositories.UserRepository,
	files ExportFiles,
	logger zerolog.Logger,
) *ExportService {
	return &ExportService{
		store:       store,
		studentRepo: studentRepo,
		userRepo:    userRepo,
		files:       files,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportStudents rewrites the students snapshot
func (s *ExportService) ExportStudents(ctx context.Context) error {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, []string{
			strconv.FormatInt(st.ID, 10),
			st.RollNumber,
			st.Name,
			st.EmailOrEmpty(),
			st.Subject,
			strconv.Itoa(st.Marks),
			st.GradeOrEmpty(),
		})
	}
	return s.store.WriteTable(s.files.Students, studentsHeader, rows)
}

// ExportUsers rewrites the users snapshot. Password hashes are never written.
func (s *ExportService) ExportUsers(ctx context.Context) error {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.EmailOrEmpty(),
			string(u.Role),
		})
	}
	return s.store.WriteTable(s.files.Users, usersHeader, rows)
}

// LogLogin appends one login event
func (s *ExportService) LogLogin(user *models.User) error {
	return s.store.AppendLine(s.files.LoginLog, []string{
		helpers.FormatTimestamp(s.now()),
		strconv.FormatInt(user.ID, 10),
		user.Username,
		string(user.Role),
	})
}

// ExportAll rewrites both snapshots
func (s *ExportService) ExportAll(ctx context.Context) error {
	return errors.Join(s.ExportStudents(ctx), s.ExportUsers(ctx))
}

func (s *ExportService) StudentsChanged(ctx context.Context) {
	if err := s.ExportStudents(ctx); err != nil {
		s.logger.Warn().Err(err).Str("file", s.store.Path(s.files.Students)).Msg("Students export failed")
	}
}

func (s *ExportService) UsersChanged(ctx context.Context) {
	if err := s.ExportUsers(ctx); err != nil {
		s.logger.Warn().Err(err).Str("file", s.store.Path(s.files.Users)).Msg("Users export failed")
	}
}

func (s *ExportService) UserLoggedIn(_ context.Context, user *models.User) {
	if err := s.LogLogin(user); err != nil {
		s.logger.Warn().Err(err).Str("file", s.store.Path(s.files.LoginLog)).Msg("Login log append failed")
	}
}
