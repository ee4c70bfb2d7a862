package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-console/internal/session"
	"github.com/noah-isme/student-console/pkg/config"
)

const sessionContextKey = "session_id"

// Session makes sure every request carries a session id cookie.
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	name := cfg.CookieName
	if name == "" {
		name = "console_session"
	}
	maxAge := int(cfg.TTL.Seconds())
	return func(c *gin.Context) {
		id, err := c.Cookie(name)
		if err != nil || !session.ValidID(id) {
			id = session.NewID()
		}
		// Re-issue on every request so the cookie lives as long as the session.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(name, id, maxAge, "/", "", cfg.CookieSecure, true)
		c.Set(sessionContextKey, id)
		c.Next()
	}
}

// SessionID returns the session id assigned by Session.
func SessionID(c *gin.Context) string {
	if v, ok := c.Get(sessionContextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
