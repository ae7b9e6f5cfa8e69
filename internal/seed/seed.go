package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/gradebook/internal/app/models"
	appRepos "github.com/yigit/gradebook/internal/app/repositories"
	appServices "github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/pkg/auth"
)

// ReconciledAdminUsername is the account name that is always forced to the admin role
const ReconciledAdminUsername = "admin"

// Options controls first-run data
type Options struct {
	CreateDefaultAdmin   bool
	DefaultAdminUsername string
	DefaultAdminPassword string
	ReconcileAdminRole   bool
}

// Deps are the collaborators seeding needs
type Deps struct {
	Repos    *appRepos.Repositories
	Stats    appServices.StatsService
	Exporter *appServices.ExportService
}

// Run brings a migrated database to its initial state. It is idempotent.
// Errors are collected so one failing step does not skip the others.
func Run(ctx context.Context, deps Deps, opts Options, lgr zerolog.Logger) error {
	var finalErr error

	if opts.CreateDefaultAdmin {
		if err := createDefaultAdmin(ctx, deps.Repos.UserRepository, opts, lgr); err != nil {
			lgr.Error().Err(err).Msg("Error creating default admin user")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if opts.ReconcileAdminRole {
		changed, err := deps.Repos.UserRepository.SetRoleByUsername(ctx, ReconciledAdminUsername, appModels.RoleAdmin)
		if err != nil {
			lgr.Error().Err(err).Msg("Error reconciling admin role")
			finalErr = errors.Join(finalErr, err)
		} else if changed {
			lgr.Warn().
				Str("username", ReconciledAdminUsername).
				Msg("Account role forced to admin; disable seed.reconcile_admin_role if this account should not be privileged")
		}
	}

	if err := deps.Repos.StatsRepository.EnsureSingleton(ctx); err != nil {
		lgr.Error().Err(err).Msg("Error ensuring stats row")
		finalErr = errors.Join(finalErr, err)
	}

	if deps.Stats != nil {
		if _, err := deps.Stats.Recompute(ctx); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}

	// best effort, like every other export
	if deps.Exporter != nil {
		deps.Exporter.UsersChanged(ctx)
	}

	return finalErr
}

func createDefaultAdmin(ctx context.Context, users *appRepos.UserRepository, opts Options, lgr zerolog.Logger) error {
	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(opts.DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash default admin password: %w", err)
	}

	admin := &appModels.User{
		Username:     opts.DefaultAdminUsername,
		PasswordHash: hash,
		Role:         appModels.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	lgr.Warn().
		Str("username", opts.DefaultAdminUsername).
		Msg("Default admin created with the well-known configured password; change it now or disable seed.create_default_admin and use the admin CLI")
	return nil
}
