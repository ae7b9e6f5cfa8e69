package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/gradebook/internal/db"
)

// ErrNotFound is returned when a lookup by key matches no row
var ErrNotFound = errors.New("record not found")

// Querier is satisfied by both *sql.DB and *sql.Tx, so a repository can be rebound to a transaction
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// statementBuilder renders ? placeholders for SQLite
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository *StudentRepository
	UserRepository    *UserRepository
	StatsRepository   *StatsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.DB) *Repositories {
	return &Repositories{
		StudentRepository: NewStudentRepository(database.DB),
		UserRepository:    NewUserRepository(database.DB),
		StatsRepository:   NewStatsRepository(database.DB),
	}
}
