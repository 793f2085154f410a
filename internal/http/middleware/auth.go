// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements HTTP Basic authentication and role checks. Authenticate
// resolves the caller into the Gin context ("userID", "role") and the
// request-scoped logger; RequireRole guards a route group.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-benefits-backend/internal/domain"
)

const (
	ctxKeyUserID = "userID"
	ctxKeyRole   = "role"
	ctxKeyUser   = "user"
)

// ErrBadCredentials is what an Authenticator returns for an unknown user or
// a wrong password. Any other error is treated as an internal failure.
var ErrBadCredentials = errors.New("bad credentials")

// Authenticator verifies an email/password pair.
type Authenticator func(ctx context.Context, email, password string) (*domain.User, error)

// Authenticate requires HTTP Basic credentials and rejects the request with
// 401 when they are missing or wrong. On success the user, its id and its
// role name are stored in the Gin context.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="benefits"`)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		u, err := auth(c.Request.Context(), email, password)
		switch {
		case errors.Is(err, ErrBadCredentials):
			c.Header("WWW-Authenticate", `Basic realm="benefits"`)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		case err != nil:
			LoggerFrom(c).Error().Err(err).Msg("authenticate")
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}

		c.Set(ctxKeyUser, u)
		c.Set(ctxKeyUserID, u.ID)
		c.Set(ctxKeyRole, u.Role.Name)
		enrichLogger(c, func(zc zerolog.Context) zerolog.Context {
			return zc.Str("user_id", u.ID).Str("role", u.Role.Name)
		})
		c.Next()
	}
}

// RequireRole allows the request only when the authenticated role is one of
// roles. It answers 401 when Authenticate did not run and 403 otherwise.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role, ok := RoleFrom(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if _, ok := allowed[role]; !ok {
			abortJSON(c, http.StatusForbidden, "forbidden", "insufficient role")
			return
		}
		c.Next()
	}
}

// UserFrom returns the authenticated user, if any.
func UserFrom(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

// UserIDFrom returns the authenticated user id or "".
func UserIDFrom(c *gin.Context) string {
	return asString(c.Value(ctxKeyUserID))
}

// RoleFrom returns the authenticated role name.
func RoleFrom(c *gin.Context) (string, bool) {
	s := asString(c.Value(ctxKeyRole))
	return s, s != ""
}

// abortJSON writes the standard error envelope used by the handlers package.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
