// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger. It never logs
// bodies, masks credential headers (Authorization carries Basic passwords)
// and scrubs emails, phone numbers and UUIDs from the query string and the
// remaining header values before anything reaches the log.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders names extra headers whose values are replaced with
// "[REDACTED]". Matching is case-insensitive and merged with Authorization,
// Cookie and Set-Cookie.
type RedactOptions struct {
	MaskHeaders []string
}

// UUIDs go first so the phone pattern cannot eat their digit groups.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

func redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

type headerMask map[string]struct{}

func newHeaderMask(extra []string) headerMask {
	m := headerMask{"authorization": {}, "cookie": {}, "set-cookie": {}}
	for _, h := range extra {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = struct{}{}
		}
	}
	return m
}

func (m headerMask) scrub(c *gin.Context) map[string]string {
	out := make(map[string]string, len(c.Request.Header))
	for k, vv := range c.Request.Header {
		if _, masked := m[strings.ToLower(k)]; masked {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = redact(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger attaches a request-scoped logger (request id, method,
// route, client ip, redacted query) and, after the handler chain, emits one
// access log with status, latency, sizes and scrubbed headers. The level is
// error for 5xx or recorded Gin errors, warn for 4xx and info otherwise.
// Fields added later by Authenticate (user_id, role) appear in the access log.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	mask := newHeaderMask(opts.MaskHeaders)

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			// No route matched (404).
			path = c.Request.URL.Path
		}
		l := log.With().
			Str("request_id", asString(c.Value(requestIDKey))).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Logger()
		attachLogger(c, &l)

		headers := mask.scrub(c)
		query := redact(truncate(c.Request.URL.RawQuery, maxQueryLogLength))

		c.Next()

		status := c.Writer.Status()
		lg := LoggerFrom(c).With().
			Str("query", query).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("bytes_out", c.Writer.Size()).
			Interface("headers", headers).
			Logger()

		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = lg.Error().Str("errors", c.Errors.String())
		case status >= 500:
			ev = lg.Error()
		case status >= 400:
			ev = lg.Warn()
		default:
			ev = lg.Info()
		}
		ev.Msg("request")
	}
}
