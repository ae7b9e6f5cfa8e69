package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// StatsController serves the dashboard and the statistics JSON
type StatsController struct {
	statsService   services.StatsService
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewStatsController creates a new StatsController
func NewStatsController(statsService services.StatsService, studentService services.StudentService, logger zerolog.Logger) *StatsController {
	return &StatsController{
		statsService:   statsService,
		studentService: studentService,
		logger:         logger,
	}
}

// Dashboard recomputes statistics and renders them with the student list
func (c *StatsController) Dashboard(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	stats, err := c.statsService.Recompute(reqCtx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to recompute statistics for dashboard")
		render(ctx, middleware.StatusFor(err), "dashboard.tmpl", "Dashboard", gin.H{"Stats": &models.Stats{}},
			&middleware.Flash{Category: middleware.FlashDanger, Message: msgGenericFailure})
		return
	}

	students, err := c.studentService.List(reqCtx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to list students for dashboard")
		render(ctx, middleware.StatusFor(err), "dashboard.tmpl", "Dashboard", gin.H{"Stats": stats},
			&middleware.Flash{Category: middleware.FlashDanger, Message: msgGenericFailure})
		return
	}

	render(ctx, http.StatusOK, "dashboard.tmpl", "Dashboard", gin.H{
		"Stats":    stats,
		"Students": students,
	}, nil)
}

// Stats godoc
// @Summary Current statistics
// @Description Recomputes aggregate marks and the grade distribution, then returns the snapshot.
// @Tags stats
// @Produce json
// @Success 200 {object} dto.StatsResponse "Statistics snapshot"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Failure 503 {object} dto.APIResponse "Database busy"
// @Router /api/stats [get]
func (c *StatsController) Stats(ctx *gin.Context) {
	stats, err := c.statsService.Recompute(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to recompute statistics")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStatsResponse(stats))
}

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthController reports process and database liveness
type HealthController struct {
	db     Pinger
	logger zerolog.Logger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger, logger zerolog.Logger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	if err := c.db.PingContext(ctx.Request.Context()); err != nil {
		c.logger.Warn().Err(err).Msg("Health check: database unreachable")
		ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Database: "ok"})
}
