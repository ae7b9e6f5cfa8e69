package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/bootstrap"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/pkg/auth"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

func setup(t *testing.T, exportEnabled bool) (*commandLine, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(dir, "admin.db")
	cfg.Export.Dir = filepath.Join(dir, "exports")
	cfg.Export.Enabled = exportEnabled
	cfg.Seed.CreateDefaultAdmin = false

	lgr := zerolog.Nop()
	database, err := bootstrap.SetupDatabase(context.Background(), cfg, lgr)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &commandLine{cfg: cfg, deps: deps, out: out}, out
}

func TestCommandLineUsage(t *testing.T) {
	cli, _ := setup(t, false)

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command"},
		{name: "unknown command", args: []string{"lol"}},
		{name: "adduser without username", args: []string{"adduser"}},
		{name: "adduser bad flag", args: []string{"adduser", "-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			assert.ErrorIs(t, err, errHelp)
		})
	}
}

func TestCommandLineAddUser(t *testing.T) {
	cli, out := setup(t, false)
	ctx := context.Background()

	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })
	readPasswordFunc = func(int) ([]byte, error) { return []byte("prompted"), nil }

	require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "carol", "-admin"}))
	assert.Contains(t, out.String(), `user "carol" created`)

	user, err := cli.deps.Repos.UserRepository.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "prompted"))

	// running again resets the password and role
	require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "carol", "-password", "flagged", "-email", "c@x.io"}))
	assert.Contains(t, out.String(), `user "carol" updated`)

	user, err = cli.deps.Repos.UserRepository.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "c@x.io", user.EmailOrEmpty())
	assert.True(t, auth.CheckPassword(user.PasswordHash, "flagged"))
}

func TestCommandLineAddUserPromptErrors(t *testing.T) {
	cli, _ := setup(t, false)
	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })

	readPasswordFunc = func(int) ([]byte, error) { return nil, nil }
	assert.ErrorIs(t, cli.run([]string{"admin", "adduser", "-username", "dave"}), errHelp)

	boom := errors.New("no tty")
	readPasswordFunc = func(int) ([]byte, error) { return nil, boom }
	assert.ErrorIs(t, cli.run([]string{"admin", "adduser", "-username", "dave"}), boom)

	count, err := cli.deps.Repos.UserRepository.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCommandLineMigrateAndExport(t *testing.T) {
	cli, out := setup(t, true)

	require.NoError(t, cli.run([]string{"admin", "migrate"}))
	assert.Contains(t, out.String(), "0 migration(s) applied")

	require.NoError(t, cli.run([]string{"admin", "export"}))
	for _, name := range []string{cli.cfg.Export.StudentsFile, cli.cfg.Export.UsersFile} {
		_, err := os.Stat(filepath.Join(cli.cfg.Export.Dir, name))
		assert.NoError(t, err, name)
	}
}

func TestCommandLineExportDisabled(t *testing.T) {
	cli, _ := setup(t, false)
	assert.ErrorIs(t, cli.run([]string{"admin", "export"}), errExportDisabled)
}

func TestCommandLineStats(t *testing.T) {
	cli, out := setup(t, false)

	require.NoError(t, cli.run([]string{"admin", "stats"}))
	assert.Contains(t, out.String(), "students: 0")
	assert.Contains(t, out.String(), "average:  -")

	_, err := cli.deps.StudentService.Create(context.Background(), dto.StudentRequest{
		RollNumber: "R1", Name: "Alice", Subject: "Math", Marks: "85", Grade: "A",
	})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "stats"}))
	assert.Contains(t, out.String(), "students: 1")
	assert.Contains(t, out.String(), "average:  85.00")
	assert.Contains(t, out.String(), "highest:  85")
	assert.Contains(t, out.String(), "  A: 1")
	assert.NotContains(t, out.String(), "updated:  never")
}
