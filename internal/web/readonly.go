package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyReadOnly marks requests served in read-only mode so templates
// can hide the add and delete controls.
const ContextKeyReadOnly = "read_only"

const readOnlyMessage = "The journal is read-only"

// ReadOnly blocks every request that could change the journal.
type ReadOnly struct {
	enabled bool
}

func NewReadOnly(enabled bool) *ReadOnly {
	return &ReadOnly{enabled: enabled}
}

func (m *ReadOnly) IsEnabled() bool {
	return m != nil && m.enabled
}

// Handler rejects non-safe methods with 403.
func (m *ReadOnly) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyReadOnly, m.IsEnabled())

		if !m.IsEnabled() || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		if strings.Contains(c.GetHeader("Accept"), "application/json") || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     readOnlyMessage,
				"read_only": true,
			})
			return
		}

		c.String(http.StatusForbidden, readOnlyMessage)
		c.Abort()
	}
}

// IsReadOnly reports whether the current request runs in read-only mode.
func IsReadOnly(c *gin.Context) bool {
	return c.GetBool(ContextKeyReadOnly)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
