package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/auth"
)

const msgGenericFailure = "Something went wrong, please try again"

// AuthController handles login, signup and logout for both the HTML and JSON surfaces
type AuthController struct {
	authService services.AuthService
	sessions    *auth.SessionManager
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, sessions *auth.SessionManager, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Home sends visitors to the login page
func (c *AuthController) Home(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, "/login")
}

// ShowLogin renders the login form
func (c *AuthController) ShowLogin(ctx *gin.Context) {
	render(ctx, http.StatusOK, "login.tmpl", "Log in", nil, nil)
}

// Login handles the login form
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	_ = ctx.ShouldBind(&req)
	identifier := req.LoginIdentifier()
	data := gin.H{"Identifier": identifier}

	user, err := c.authService.Login(ctx.Request.Context(), identifier, req.Password)
	if err != nil {
		c.logFailure(err, "Login failed")
		render(ctx, middleware.StatusFor(err), "login.tmpl", "Log in", data, flashFor(err, msgGenericFailure))
		return
	}

	if err := c.sessions.Issue(ctx.Writer, user.ID, user.Username); err != nil {
		c.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to issue session")
		render(ctx, http.StatusInternalServerError, "login.tmpl", "Log in", data,
			&middleware.Flash{Category: middleware.FlashDanger, Message: msgGenericFailure})
		return
	}

	redirectWithFlash(ctx, "/dashboard", middleware.FlashSuccess, "Logged in successfully")
}

// ShowSignup renders the signup form
func (c *AuthController) ShowSignup(ctx *gin.Context) {
	render(ctx, http.StatusOK, "signup.tmpl", "Sign up", gin.H{"Form": dto.RegisterRequest{}}, nil)
}

// Signup handles the signup form
func (c *AuthController) Signup(ctx *gin.Context) {
	var req dto.RegisterRequest
	_ = ctx.ShouldBind(&req)

	if _, err := c.authService.Register(ctx.Request.Context(), req); err != nil {
		c.logFailure(err, "Signup failed")
		req.Password = ""
		req.ConfirmPassword = nil
		render(ctx, middleware.StatusFor(err), "signup.tmpl", "Sign up", gin.H{"Form": req}, flashFor(err, msgGenericFailure))
		return
	}

	redirectWithFlash(ctx, "/login", middleware.FlashSuccess, "Account created successfully. Please log in.")
}

// Logout clears the session
func (c *AuthController) Logout(ctx *gin.Context) {
	c.sessions.Clear(ctx.Writer)
	redirectWithFlash(ctx, "/login", middleware.FlashInfo, "You have been logged out")
}

// APIRegister godoc
// @Summary Register a new user
// @Description Creates an account with role "user". Email is optional.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.APIResponse "User registered"
// @Failure 400 {object} dto.APIResponse "Missing or invalid fields"
// @Failure 409 {object} dto.APIResponse "Username already taken"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/register [post]
func (c *AuthController) APIRegister(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("Invalid request body").WithDetails(map[string]interface{}{"bind": err.Error()}))
		return
	}

	user, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		c.logFailure(err, "API registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Success: true,
		Message: "User registered successfully",
		User:    dto.NewUserResponse(user),
	})
}

// APILogin godoc
// @Summary Log in
// @Description Accepts username, email or identifier plus password and sets the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse "Login successful"
// @Failure 400 {object} dto.APIResponse "Malformed request body"
// @Failure 401 {object} dto.APIResponse "Invalid username or password"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/login [post]
func (c *AuthController) APILogin(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("Invalid request body").WithDetails(map[string]interface{}{"bind": err.Error()}))
		return
	}
	user, err := c.authService.Login(ctx.Request.Context(), req.LoginIdentifier(), req.Password)
	if err != nil {
		c.logFailure(err, "API login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.sessions.Issue(ctx.Writer, user.ID, user.Username); err != nil {
		c.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to issue session")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success: true,
		Message: "Login successful",
		User:    dto.NewUserResponse(user),
	})
}

// logFailure keeps expected rejections at debug and surfaces the rest
func (c *AuthController) logFailure(err error, msg string) {
	if apperrors.IsKnown(err) {
		c.logger.Debug().Err(err).Msg(msg)
		return
	}
	c.logger.Error().Err(err).Msg(msg)
}
