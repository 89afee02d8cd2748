// Package session defines the per-request authenticated session value. It is
// stored in the request context by the auth middleware and passed explicitly
// to collaborators; there is no process-wide auth state.
package session

import (
	"errors"

	"github.com/crystalgrimoire/grimoire/internal/models"
	"github.com/crystalgrimoire/grimoire/internal/tier"

	"github.com/gin-gonic/gin"
)

// ContextKey is the gin context key holding the current Session.
const ContextKey = "session"

// Session carries the authenticated user and resolved tier for one request.
type Session struct {
	User *models.User
	Tier tier.Tier
}

// ErrNoSession indicates no authenticated session is attached to the request.
var ErrNoSession = errors.New("session: not authenticated")

// Set attaches a session to the gin context.
func Set(c *gin.Context, s *Session) {
	c.Set(ContextKey, s)
}

// FromContext returns the session attached to the gin context.
func FromContext(c *gin.Context) (*Session, error) {
	v, exists := c.Get(ContextKey)
	if !exists {
		return nil, ErrNoSession
	}
	s, ok := v.(*Session)
	if !ok || s == nil || s.User == nil {
		return nil, ErrNoSession
	}
	return s, nil
}
