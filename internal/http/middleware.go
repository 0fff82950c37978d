package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bakeshop/internal/backend"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	visitCookie = "bakeshop_visit"
	visitKey    = "visit_id"
	visitMaxAge = 30 * 24 * 60 * 60
)

// requestID tags every request with the caller's X-Request-ID or a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// visitor makes sure the browser carries a visit id and exposes it to handlers.
func (s *Server) visitor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(visitCookie)
		if _, perr := uuid.Parse(id); err != nil || perr != nil {
			id = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     visitCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   visitMaxAge,
				HttpOnly: true,
				Secure:   s.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(visitKey, id)
		c.Next()
	}
}

func visitID(c *gin.Context) string { return c.GetString(visitKey) }

// backendContext is the request context carrying the browser's cookies for
// the backend, minus our own visit cookie.
func backendContext(c *gin.Context) context.Context {
	var forward []*http.Cookie
	for _, ck := range c.Request.Cookies() {
		if ck.Name != visitCookie {
			forward = append(forward, ck)
		}
	}
	return backend.WithCookies(c.Request.Context(), forward)
}

// relayCookies hands cookies the backend set to the browser, scoped to this host.
func relayCookies(c *gin.Context, cookies []*http.Cookie) {
	for _, ck := range cookies {
		out := *ck
		out.Domain = ""
		if out.Path == "" {
			out.Path = "/"
		}
		http.SetCookie(c.Writer, &out)
	}
}
