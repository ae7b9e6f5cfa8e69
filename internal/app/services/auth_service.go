package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/auth"
	"github.com/yigit/gradebook/internal/pkg/dberrors"
	"github.com/yigit/gradebook/internal/pkg/helpers"
	"github.com/yigit/gradebook/internal/pkg/validation"
)

// User-facing auth messages
const (
	MsgCredentialsRequired = "Username and password are required"
	MsgUsernameTaken       = "Username already taken"
	MsgInvalidCredentials  = "Invalid username or password"
	MsgSessionInvalid      = "Please log in again"
	MsgAccountNotFound     = "Account not found"
)

// AccountUpdateResult reports which fields an account update changed
type AccountUpdateResult struct {
	User            *models.User
	UsernameChanged bool
	PasswordChanged bool
	EmailChanged    bool
}

// Changed reports whether anything was written
func (r AccountUpdateResult) Changed() bool {
	return r.UsernameChanged || r.PasswordChanged || r.EmailChanged
}

// AuthService defines account and credential operations
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*models.User, error)
	UpdateAccount(ctx context.Context, userID int64, req dto.AccountUpdateRequest) (*AccountUpdateResult, error)
	DeleteAccount(ctx context.Context, userID int64) error
	// CurrentUser re-reads the account so role checks never trust session state
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
	// ProvisionUser creates the account or resets its password, email and role
	ProvisionUser(ctx context.Context, username, password string, email *string, role models.Role) (*models.User, bool, error)
}

type authServiceImpl struct {
	db       *db.DB
	userRepo *repositories.UserRepository
	observer ChangeObserver
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(database *db.DB, userRepo *repositories.UserRepository, observer ChangeObserver, logger zerolog.Logger) AuthService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &authServiceImpl{
		db:       database,
		userRepo: userRepo,
		observer: observer,
		logger:   logger,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperrors.NewValidationError(MsgCredentialsRequired)
	}
	req.Username = username
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.ConfirmPassword != nil && *req.ConfirmPassword != req.Password {
		return nil, apperrors.NewValidationError(validation.MsgPasswordsDiffer).WithField("confirm_password")
	}

	taken, err := s.userRepo.UsernameExists(ctx, username, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, apperrors.NewConflictError(MsgUsernameTaken).WithField("username")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        helpers.StringPtr(helpers.NullIfBlank(req.Email)),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflictError(MsgUsernameTaken).WithField("username")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User registered")
	s.observer.UsersChanged(ctx)
	return user, nil
}

// findByIdentifier prefers an exact username match over an email match
func (s *authServiceImpl) findByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	return s.userRepo.GetByEmail(ctx, identifier)
}

func (s *authServiceImpl) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewAuthError(MsgInvalidCredentials)
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		auth.BurnPasswordCheck(password)
		s.logger.Info().Str("identifier", identifier).Msg("Login failed: unknown identifier")
		return nil, apperrors.NewAuthError(MsgInvalidCredentials)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Login failed: wrong password")
		return nil, apperrors.NewAuthError(MsgInvalidCredentials)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	s.observer.UserLoggedIn(ctx, user)
	return user, nil
}

func (s *authServiceImpl) UpdateAccount(ctx context.Context, userID int64, req dto.AccountUpdateRequest) (*AccountUpdateResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	// hash outside the transaction so the write lock is not held during bcrypt
	var newHash string
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		newHash = hash
	}

	result := &AccountUpdateResult{}
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		repo := s.userRepo.WithTx(tx)

		user, err := repo.GetByID(ctx, userID)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewNotFoundError(MsgAccountNotFound)
		}
		if err != nil {
			return err
		}

		if newUsername := strings.TrimSpace(req.Username); newUsername != "" && newUsername != user.Username {
			taken, err := repo.UsernameExists(ctx, newUsername, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperrors.NewConflictError(MsgUsernameTaken).WithField("username")
			}
			user.Username = newUsername
			result.UsernameChanged = true
		}

		if newHash != "" {
			user.PasswordHash = newHash
			result.PasswordChanged = true
		}

		if req.ClearEmail {
			if user.Email != nil {
				user.Email = nil
				result.EmailChanged = true
			}
		} else if email := strings.TrimSpace(req.Email); email != "" && email != user.EmailOrEmpty() {
			user.Email = &email
			result.EmailChanged = true
		}

		result.User = user
		if !result.Changed() {
			return nil
		}
		if err := repo.Update(ctx, user); err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.NewConflictError(MsgUsernameTaken).WithField("username")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if apperrors.IsKnown(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if result.Changed() {
		s.logger.Info().
			Int64("userID", userID).
			Bool("username", result.UsernameChanged).
			Bool("password", result.PasswordChanged).
			Bool("email", result.EmailChanged).
			Msg("Account updated")
		s.observer.UsersChanged(ctx)
	}
	return result, nil
}

func (s *authServiceImpl) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewNotFoundError(MsgAccountNotFound)
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info().Int64("userID", userID).Msg("Account deleted")
	s.observer.UsersChanged(ctx)
	return nil
}

func (s *authServiceImpl) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NewAuthError(MsgSessionInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	return user, nil
}

func (s *authServiceImpl) ProvisionUser(ctx context.Context, username, password string, email *string, role models.Role) (*models.User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, apperrors.NewValidationError(MsgCredentialsRequired)
	}
	if !role.Valid() {
		return nil, false, apperrors.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	var (
		user    *models.User
		created bool
	)
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		repo := s.userRepo.WithTx(tx)

		existing, err := repo.GetByUsername(ctx, username)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			user = &models.User{Username: username, PasswordHash: hash, Email: email, Role: role}
			created = true
			return repo.Create(ctx, user)
		case err != nil:
			return err
		}

		existing.PasswordHash = hash
		existing.Role = role
		if email != nil {
			existing.Email = email
		}
		user = existing
		return repo.Update(ctx, existing)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to provision user: %w", err)
	}

	s.logger.Info().Str("username", username).Str("role", string(role)).Bool("created", created).Msg("User provisioned")
	s.observer.UsersChanged(ctx)
	return user, created, nil
}
