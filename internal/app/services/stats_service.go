package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/db"
)

// StatsService defines the aggregate statistics operations
type StatsService interface {
	// Recompute derives stats and the grade histogram from students and stores both atomically
	Recompute(ctx context.Context) (*models.Stats, error)
	// Current returns the stored snapshot without recomputing. Pages always recompute; the admin CLI stats command reads this.
	Current(ctx context.Context) (*models.Stats, error)
}

type statsServiceImpl struct {
	db        *db.DB
	statsRepo *repositories.StatsRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewStatsService creates a new stats service instance
func NewStatsService(database *db.DB, statsRepo *repositories.StatsRepository, logger zerolog.Logger) StatsService {
	return &statsServiceImpl{
		db:        database,
		statsRepo: statsRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *statsServiceImpl) Recompute(ctx context.Context) (*models.Stats, error) {
	var snapshot *models.Stats

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		repo := s.statsRepo.WithTx(tx)

		agg, err := repo.Aggregate(ctx)
		if err != nil {
			return err
		}
		hist, err := repo.Histogram(ctx)
		if err != nil {
			return err
		}

		updatedAt := s.now().UTC()
		if err := repo.Save(ctx, agg, updatedAt); err != nil {
			return err
		}
		if err := repo.ReplaceHistogram(ctx, hist); err != nil {
			return err
		}

		agg.Distribution = hist
		agg.UpdatedAt = &updatedAt
		snapshot = agg
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to recompute statistics")
		return nil, fmt.Errorf("failed to recompute statistics: %w", err)
	}

	s.logger.Debug().Int("totalStudents", snapshot.TotalStudents).Msg("Statistics recomputed")
	return snapshot, nil
}

func (s *statsServiceImpl) Current(ctx context.Context) (*models.Stats, error) {
	snapshot, err := s.statsRepo.Get(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.Stats{Distribution: []models.GradeCount{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	return snapshot, nil
}
