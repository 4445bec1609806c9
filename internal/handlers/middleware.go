package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-Id"
	sessionHeader   = "X-Session-Id"
	// SessionCookie carries the cart session between visits.
	SessionCookie = "avenge_session"

	sessionCookieMaxAge = 365 * 24 * 60 * 60
	maxSessionIDLength  = 128

	ctxSessionID = "session_id"
	ctxRequestID = "request_id"
)

// RequestLogger attaches a request-scoped zerolog logger to the request context and logs each
// completed request. The request id is taken from X-Request-Id or generated.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Set(ctxRequestID, reqID)

		l := base.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := zerolog.Ctx(c.Request.Context()).Info()
		if status >= http.StatusInternalServerError {
			event = zerolog.Ctx(c.Request.Context()).Error()
		}
		event.
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("request.complete")
	}
}

// Session resolves the cart session from X-Session-Id or the session cookie, issuing a new one
// (and setting the cookie) when neither is usable.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := usableSessionID(c.GetHeader(sessionHeader))
		if id == "" {
			if v, err := c.Cookie(SessionCookie); err == nil {
				id = usableSessionID(v)
			}
		}
		if id == "" {
			id = uuid.NewString()
			secure := c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, sessionCookieMaxAge, "/", "", secure, true)
		}
		c.Set(ctxSessionID, id)

		ctx := c.Request.Context()
		l := zerolog.Ctx(ctx).With().Str("session_id", id).Logger()
		c.Request = c.Request.WithContext(l.WithContext(ctx))

		c.Next()
	}
}

func usableSessionID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxSessionIDLength || strings.ContainsAny(v, ": \t") {
		return ""
	}
	return v
}

func sessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
