// Package correlation carries the saga correlation id across HTTP requests,
// use cases, log lines and broker messages.
package correlation

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Header is used on HTTP requests/responses and on broker messages.
	Header = "X-Correlation-ID"
	// LogField is the structured log key for the id.
	LogField = "correlation_id"
	// SpanAttribute is set on the active span.
	SpanAttribute = "correlation.id"

	ginKey = "correlation_id"
)

// Resolve returns v trimmed, or a new id when v is blank.
func Resolve(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return uuid.NewString()
	}
	return v
}

// Middleware resolves the id of each request, stores it in the gin context,
// echoes it on the response and tags the current span.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Resolve(c.GetHeader(Header))
		c.Set(ginKey, id)
		c.Header(Header, id)
		trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.String(SpanAttribute, id))
		c.Next()
	}
}

// FromGin returns the id stored by Middleware, resolving a new one when the
// middleware did not run.
func FromGin(c *gin.Context) string {
	if v, ok := c.Get(ginKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	id := Resolve(c.GetHeader(Header))
	c.Set(ginKey, id)
	return id
}
