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

var userColumns = []string{"id", "username", "password_hash", "email", "role"}

// UserRepository handles user database operations
type UserRepository struct {
	q  Querier
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q, sb: statementBuilder()}
}

// WithTx returns a copy bound to tx
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx, sb: r.sb}
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var email sql.NullString
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &email, &role); err != nil {
		return nil, err
	}
	u.Email = helpers.StringPtr(email)
	u.Role = models.Role(role)
	if !u.Role.Valid() {
		u.Role = models.RoleUser
	}
	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves a user by exact, case-sensitive username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// GetByEmail retrieves the oldest user with the exact email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// UsernameExists reports whether username belongs to an account other than excludeID (0 excludes none)
func (r *UserRepository) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	where := squirrel.And{squirrel.Eq{"username": username}}
	if excludeID > 0 {
		where = append(where, squirrel.NotEq{"id": excludeID})
	}

	query, args, err := r.sb.Select("1").From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build username check query: %w", err)
	}

	var one int
	err = r.q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking username: %w", err)
	}
	return true, nil
}

// Count returns the number of accounts
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}

// List returns every account ordered by id
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From("users").OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts user and sets its ID
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	query, args, err := r.sb.Insert("users").
		Columns("username", "password_hash", "email", "role").
		Values(u.Username, u.PasswordHash, helpers.GetNullString(u.Email), string(u.Role)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading new user id: %w", err)
	}
	u.ID = id
	return nil
}

// Update writes username, password hash, email and role of u.ID
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	query, args, err := r.sb.Update("users").
		Set("username", u.Username).
		Set("password_hash", u.PasswordHash).
		Set("email", helpers.GetNullString(u.Email)).
		Set("role", string(u.Role)).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRoleByUsername forces role on the account named username and reports whether a row changed
func (r *UserRepository) SetRoleByUsername(ctx context.Context, username string, role models.Role) (bool, error) {
	query, args, err := r.sb.Update("users").
		Set("role", string(role)).
		Where(squirrel.And{
			squirrel.Eq{"username": username},
			squirrel.Or{squirrel.NotEq{"role": string(role)}, squirrel.Eq{"role": nil}},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build set role query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("error setting role: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete removes the account with id
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
