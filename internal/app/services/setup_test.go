package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/gradebook/internal/app/migrations"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

type recordingObserver struct {
	mu       sync.Mutex
	students int
	users    int
	logins   []string
}

func (o *recordingObserver) StudentsChanged(context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.students++
}

func (o *recordingObserver) UsersChanged(context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.users++
}

func (o *recordingObserver) UserLoggedIn(_ context.Context, u *models.User) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logins = append(o.logins, u.Username)
}

type testEnv struct {
	db       *db.DB
	repos    *repositories.Repositories
	stats    StatsService
	students StudentService
	auth     AuthService
	observer *recordingObserver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), "gradebook.db"), MaxOpenConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	m, err := migrations.NewMigrator(database, zerolog.Nop())
	require.NoError(t, err)
	_, err = m.Up(context.Background())
	require.NoError(t, err)

	repos := repositories.NewRepositories(database)
	observer := &recordingObserver{}
	stats := NewStatsService(database, repos.StatsRepository, zerolog.Nop())

	return &testEnv{
		db:       database,
		repos:    repos,
		stats:    stats,
		students: NewStudentService(repos.StudentRepository, stats, observer, zerolog.Nop()),
		auth:     NewAuthService(database, repos.UserRepository, observer, zerolog.Nop()),
		observer: observer,
	}
}
