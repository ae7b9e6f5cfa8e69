package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/gradebook/internal/app/migrations"
	appModels "github.com/yigit/gradebook/internal/app/models"
	appRepos "github.com/yigit/gradebook/internal/app/repositories"
	appServices "github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/auth"
	"github.com/yigit/gradebook/internal/pkg/export"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

var defaultOptions = Options{
	CreateDefaultAdmin:   true,
	DefaultAdminUsername: "admin",
	DefaultAdminPassword: "admin123",
	ReconcileAdminRole:   true,
}

func setup(t *testing.T) (Deps, string) {
	t.Helper()
	dir := t.TempDir()

	database, err := db.Open(db.Options{Path: filepath.Join(dir, "seed.db"), MaxOpenConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	migrator, err := migrations.NewMigrator(database, zerolog.Nop())
	require.NoError(t, err)
	_, err = migrator.Up(context.Background())
	require.NoError(t, err)

	repos := appRepos.NewRepositories(database)
	store, err := export.NewLocalStore(dir)
	require.NoError(t, err)

	return Deps{
		Repos: repos,
		Stats: appServices.NewStatsService(database, repos.StatsRepository, zerolog.Nop()),
		Exporter: appServices.NewExportService(store, repos.StudentRepository, repos.UserRepository,
			appServices.ExportFiles{Students: "students.txt", Users: "users.txt", LoginLog: "login.txt"}, zerolog.Nop()),
	}, dir
}

func TestRunCreatesDefaultAdminOnce(t *testing.T) {
	deps, dir := setup(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, deps, defaultOptions, zerolog.Nop()))
	require.NoError(t, Run(ctx, deps, defaultOptions, zerolog.Nop()))

	users, err := deps.Repos.UserRepository.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, appModels.RoleAdmin, users[0].Role)
	assert.True(t, auth.CheckPassword(users[0].PasswordHash, "admin123"))

	stats, err := deps.Stats.Current(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalStudents)

	exported, err := os.ReadFile(filepath.Join(dir, "users.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(exported), "admin")
	assert.NotContains(t, string(exported), users[0].PasswordHash)
}

func TestRunSkipsDefaultAdminWhenUsersExist(t *testing.T) {
	deps, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, deps.Repos.UserRepository.Create(ctx, &appModels.User{
		Username: "registrar", PasswordHash: "x", Role: appModels.RoleUser,
	}))

	require.NoError(t, Run(ctx, deps, defaultOptions, zerolog.Nop()))

	count, err := deps.Repos.UserRepository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunWithDefaultAdminDisabled(t *testing.T) {
	deps, _ := setup(t)
	ctx := context.Background()

	opts := defaultOptions
	opts.CreateDefaultAdmin = false
	require.NoError(t, Run(ctx, deps, opts, zerolog.Nop()))

	count, err := deps.Repos.UserRepository.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunReconcilesAdminRole(t *testing.T) {
	deps, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, deps.Repos.UserRepository.Create(ctx, &appModels.User{
		Username: ReconciledAdminUsername, PasswordHash: "x", Role: appModels.RoleUser,
	}))

	opts := defaultOptions
	opts.ReconcileAdminRole = false
	require.NoError(t, Run(ctx, deps, opts, zerolog.Nop()))
	user, err := deps.Repos.UserRepository.GetByUsername(ctx, ReconciledAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, appModels.RoleUser, user.Role)

	require.NoError(t, Run(ctx, deps, defaultOptions, zerolog.Nop()))
	user, err = deps.Repos.UserRepository.GetByUsername(ctx, ReconciledAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, appModels.RoleAdmin, user.Role)
}

func TestRunWithoutExporter(t *testing.T) {
	deps, dir := setup(t)
	deps.Exporter = nil

	require.NoError(t, Run(context.Background(), deps, defaultOptions, zerolog.Nop()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".txt"), e.Name())
	}
}
