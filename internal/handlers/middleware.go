package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userId"

const (
	msgMissingAuth = "Missing Authorization Header"
	msgBadAuth     = "Bad Authorization header. Expected value 'Bearer <JWT>'"
	msgBadToken    = "Invalid or expired token"
)

func (h *Handler) userIDMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msgMissingAuth})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msgBadAuth})
		return
	}

	userID, err := h.services.ParseToken(parts[1])
	if err != nil {
		h.log.Debugw("auth_token_rejected", "err", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msgBadToken})
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

// requestMiddleware logs each request and records its metrics.
func (h *Handler) requestMiddleware(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	elapsed := time.Since(start)

	h.opts.Metrics.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

	kv := []any{"method", c.Request.Method, "route", route, "status", status, "latency", elapsed}
	if status >= http.StatusInternalServerError {
		h.log.Warnw("http_request", kv...)
		return
	}
	h.log.Debugw("http_request", kv...)
}
