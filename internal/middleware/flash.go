package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Flash categories understood by the templates
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

const flashCookie = "flash"

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SetFlash stores a message for the next request, usually right before a redirect
func SetFlash(c *gin.Context, category, message string) {
	raw, err := json.Marshal(Flash{Category: category, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending message, if any, and clears it
func PopFlash(c *gin.Context) *Flash {
	cookie, err := c.Request.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}
