package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/metrics"
	"github.com/shrimpsizemoose/qcm/internal/session"
)

const identityKey = "identity"

func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestDuration.WithLabelValues(
			path,
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Identify resolves the session cookie, if any, into the request context.
// It never rejects a request.
func (h *Handler) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(h.service.Config.Session.CookieName)
		if err == nil && token != "" {
			id, err := h.service.Sessions.Resolve(c.Request.Context(), token)
			switch {
			case err == nil:
				c.Set(identityKey, id)
			case !errors.Is(err, session.ErrUnauthenticated):
				logger.Error.Printf("Failed to resolve session: %v", err)
			}
		}
		c.Next()
	}
}

func identity(c *gin.Context) *session.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*session.Identity)
	return id
}

// RequireStudent redirects anonymous callers to the login page before any
// protected handler runs.
func (h *Handler) RequireStudent() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity(c) == nil {
			h.redirectWithFlash(c, "/connexion", "error", "Vous devez être connecté pour accéder à cette page.")
			c.Abort()
			return
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP. Entries idle for longer
// than three windows are dropped lazily.
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	visitors := make(map[string]*visitor)
	var mu sync.Mutex
	expiry := 3 * window
	lastSweep := time.Now()
	every := rate.Every(window / time.Duration(maxRequests))

	return func(c *gin.Context) {
		key := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > expiry {
			for ip, v := range visitors {
				if now.Sub(v.lastSeen) > expiry {
					delete(visitors, ip)
				}
			}
			lastSweep = now
		}
		v, ok := visitors[key]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(every, maxRequests)}
			visitors[key] = v
		}
		v.lastSeen = now
		mu.Unlock()

		if !v.limiter.Allow() {
			c.String(http.StatusTooManyRequests, "Trop de requêtes, réessayez plus tard.")
			c.Abort()
			return
		}
		c.Next()
	}
}
