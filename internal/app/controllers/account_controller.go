package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/auth"
)

// AccountController serves the self-service profile pages
type AccountController struct {
	authService services.AuthService
	sessions    *auth.SessionManager
	logger      zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(authService services.AuthService, sessions *auth.SessionManager, logger zerolog.Logger) *AccountController {
	return &AccountController{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Show renders the account form
func (c *AccountController) Show(ctx *gin.Context) {
	render(ctx, http.StatusOK, "account.tmpl", "Account", nil, nil)
}

// Update applies the non-blank fields of the account form
func (c *AccountController) Update(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	var req dto.AccountUpdateRequest
	_ = ctx.ShouldBind(&req)

	result, err := c.authService.UpdateAccount(ctx.Request.Context(), user.ID, req)
	if err != nil {
		if !apperrors.IsKnown(err) {
			c.logger.Error().Err(err).Int64("userID", user.ID).Msg("Account update failed")
		}
		redirectWithFlash(ctx, "/account", middleware.FlashCategoryFor(err), apperrors.Message(err, msgGenericFailure))
		return
	}

	if !result.Changed() {
		redirectWithFlash(ctx, "/account", middleware.FlashInfo, "No changes made")
		return
	}

	// the session carries the username, so it is reissued after a rename
	if result.UsernameChanged {
		if err := c.sessions.Issue(ctx.Writer, result.User.ID, result.User.Username); err != nil {
			c.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to reissue session")
		}
	}

	var messages []string
	if result.UsernameChanged {
		messages = append(messages, "Username updated successfully")
	}
	if result.PasswordChanged {
		messages = append(messages, "Password updated successfully")
	}
	if result.EmailChanged {
		messages = append(messages, "Email updated successfully")
	}
	redirectWithFlash(ctx, "/account", middleware.FlashSuccess, strings.Join(messages, ". "))
}

// Delete removes the caller's own account and ends the session
func (c *AccountController) Delete(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)

	if err := c.authService.DeleteAccount(ctx.Request.Context(), user.ID); err != nil {
		c.logger.Error().Err(err).Int64("userID", user.ID).Msg("Account deletion failed")
		redirectWithFlash(ctx, "/account", middleware.FlashCategoryFor(err), apperrors.Message(err, msgGenericFailure))
		return
	}

	c.sessions.Clear(ctx.Writer)
	redirectWithFlash(ctx, "/login", middleware.FlashInfo, "Your account has been deleted")
}
