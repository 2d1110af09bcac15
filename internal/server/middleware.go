package server

import (
	"net/http"
	"strconv"
	"time"

	"counsellor/internal/logging"
	"counsellor/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerUserID    = "X-User-ID"
	headerRequestID = "X-Request-ID"

	keyOwner     = "owner"
	keySession   = "session"
	keyRequestID = "request_id"
)

// requestID tags every request with an id, reusing the caller's when given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(keyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("req", c.GetString(keyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if owner, ok := c.Get(keyOwner); ok {
			fields = append(fields, zap.Int64("owner", owner.(int64)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.WithRequestID(logging.CategoryHTTP, c.GetString(keyRequestID)).
			Error("panic in %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		logger.Debug("panic stack", zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	})
}

// requireOwner reads the authenticated student id set by the auth proxy.
func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(headerUserID), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.Set(keyOwner, id)
		c.Next()
	}
}

// withSession binds one store session to the request and releases it after
// the handler chain returns.
func withSession(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := st.Acquire(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "database unavailable"})
			return
		}
		defer func() { _ = sess.Release() }()
		c.Set(keySession, sess)
		c.Next()
	}
}

func owner(c *gin.Context) int64 {
	return c.MustGet(keyOwner).(int64)
}

func session(c *gin.Context) *store.Session {
	return c.MustGet(keySession).(*store.Session)
}
