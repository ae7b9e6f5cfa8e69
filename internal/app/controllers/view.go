package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// render executes a page template with the common layout data. A nil flash
// falls back to the one-shot flash cookie left by a previous redirect.
func render(c *gin.Context, status int, name, title string, data gin.H, flash *middleware.Flash) {
	if data == nil {
		data = gin.H{}
	}
	if flash == nil {
		flash = middleware.PopFlash(c)
	}
	data["Title"] = title
	data["Flash"] = flash
	if user := middleware.CurrentUser(c); user != nil {
		data["User"] = user
		data["IsAdmin"] = user.IsAdmin()
	}
	c.HTML(status, name, data)
}

// flashFor turns a service error into an inline flash for a re-rendered form
func flashFor(err error, fallback string) *middleware.Flash {
	return &middleware.Flash{
		Category: middleware.FlashCategoryFor(err),
		Message:  apperrors.Message(err, fallback),
	}
}

func redirectWithFlash(c *gin.Context, location, category, message string) {
	middleware.SetFlash(c, category, message)
	c.Redirect(http.StatusFound, location)
}
