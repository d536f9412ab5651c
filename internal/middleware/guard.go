package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusportal/internal/app/guard"
	"github.com/yigit/campusportal/internal/app/models"
)

// ContextSession holds the snapshot a guard evaluated
const ContextSession = "session"

// SessionSource yields the current session
type SessionSource interface {
	Snapshot() models.Session
}

// Evaluator is implemented by both guards
type Evaluator interface {
	Evaluate(s models.Session) guard.Decision
}

// RequireRoles runs a role guard ahead of the handlers of a route group
func RequireRoles(sessions SessionSource, g *guard.RoleGuard) gin.HandlerFunc {
	return Guard(sessions, g)
}

// GuestOnly runs the guest guard ahead of public-only pages
func GuestOnly(sessions SessionSource, g *guard.GuestGuard) gin.HandlerFunc {
	return Guard(sessions, g)
}

// Guard evaluates g against a fresh snapshot on every request and aborts with
// a redirect when it does not allow the request
func Guard(sessions SessionSource, g Evaluator) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Snapshot()
		d := g.Evaluate(s)
		if !d.Allow {
			Redirect(c, d.Redirect)
			return
		}
		c.Set(ContextSession, s)
		c.Next()
	}
}

// Redirect aborts the chain with 302 for GET/HEAD and 303 otherwise, so
// browsers follow form posts with a GET
func Redirect(c *gin.Context, location string) {
	code := http.StatusSeeOther
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		code = http.StatusFound
	}
	c.Redirect(code, location)
	c.Abort()
}

// SessionFrom returns the snapshot stored by Guard, or sessions' current one
func SessionFrom(c *gin.Context, sessions SessionSource) models.Session {
	if v, ok := c.Get(ContextSession); ok {
		if s, ok := v.(models.Session); ok {
			return s
		}
	}
	return sessions.Snapshot()
}
