// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for CSV uploads. It validates the
// Idempotency-Key header, asks a lookup whether the authenticated user
// already completed a run under that key, and annotates the context so that:
//   - handlers read the key (GetIdempotencyKey)
//   - handlers and logs can tell a replay (IsReplay)
//   - the rate limiter lets replays through (IsRateBypass)
//
// Serving the stored report stays with the import service.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HeaderIdempotencyKey is the request header that carries the client's key.
// A retry of the same upload must send the same value.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: a stored run exists for the key
	ctxKeyRateBypass = "rate.bypass" // bool: skip rate limiting
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := asString(c.Value(ctxKeyIdemKey))
	return s, s != ""
}

// IsReplay reports whether the lookup found a stored run for this request.
func IsReplay(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyIdemReplay).(bool)
	return b
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Defaults to ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether userID has a stored, unexpired result
// for key at now. Errors are logged and treated as "no replay".
type IdempotencyLookup func(ctx context.Context, userID, key string, now time.Time) (bool, error)

// IdempotencyValidator validates the Idempotency-Key header on unsafe
// methods. A missing header is a no-op; an invalid one answers 400
// bad_idempotency_key. It must run after Authenticate because keys are
// scoped per user.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abortJSON(c, http.StatusBadRequest, "bad_idempotency_key", "invalid Idempotency-Key")
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), UserIDFrom(c), key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup")
			}
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
				enrichLogger(c, func(zc zerolog.Context) zerolog.Context {
					return zc.Bool("replay", true)
				})
			}
		}
		c.Next()
	}
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
