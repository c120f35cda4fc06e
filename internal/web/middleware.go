package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// requestID reuses an incoming X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", requestIDFrom(c)).
			Msg("HTTP request")
	}
}

// inflightLimiter caps concurrent plan generations across all routes.
type inflightLimiter struct {
	slots chan struct{}
}

func newInflightLimiter(n int) *inflightLimiter {
	if n < 1 {
		n = 1
	}
	return &inflightLimiter{slots: make(chan struct{}, n)}
}

func (l *inflightLimiter) tryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (l *inflightLimiter) release() {
	<-l.slots
}

// middleware holds a slot for the duration of the request, calling reject when none is free.
func (l *inflightLimiter) middleware(reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.tryAcquire() {
			log.Warn().Str("path", c.Request.URL.Path).Str("request_id", requestIDFrom(c)).Msg("Rejecting request, all generation slots busy")
			reject(c)
			c.Abort()
			return
		}
		defer l.release()
		c.Next()
	}
}
