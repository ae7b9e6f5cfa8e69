package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/pkg/auth"
)

// Context keys set for the current request only
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxIsAdmin  = "isAdmin"
	ctxUser     = "currentUser"
)

// UserLoader re-reads an account by id
type UserLoader interface {
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
}

// SessionAuth resolves the session cookie to a stored account on every request
type SessionAuth struct {
	sessions *auth.SessionManager
	users    UserLoader
	logger   zerolog.Logger
}

// NewSessionAuth creates a new SessionAuth
func NewSessionAuth(sessions *auth.SessionManager, users UserLoader, logger zerolog.Logger) *SessionAuth {
	return &SessionAuth{sessions: sessions, users: users, logger: logger}
}

func (m *SessionAuth) resolve(c *gin.Context) (*models.User, bool) {
	session, err := m.sessions.Parse(c.Request)
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) {
			m.logger.Debug().Err(err).Msg("Rejected session cookie")
			m.sessions.Clear(c.Writer)
		}
		return nil, false
	}

	user, err := m.users.CurrentUser(c.Request.Context(), session.UserID)
	if err != nil {
		m.logger.Info().Err(err).Int64("userID", session.UserID).Msg("Session refers to a missing account")
		m.sessions.Clear(c.Writer)
		return nil, false
	}

	c.Set(ctxUser, user)
	c.Set(CtxUserID, user.ID)
	c.Set(CtxUsername, user.Username)
	c.Set(CtxRole, string(user.Role))
	c.Set(CtxIsAdmin, user.IsAdmin())
	return user, true
}

// RequireLogin redirects anonymous browsers to the login page and answers JSON clients with 401
func (m *SessionAuth) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.resolve(c); !ok {
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("Authentication required"))
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// CurrentUser returns the account resolved for this request, or nil
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
