package mw

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var sensitiveQueryParams = []string{"KEY", "key", "api_key", "token"}

// RequestLogger writes one structured logrus entry per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		entry := log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"uri":        MaskQuery(c.Request.URL.RequestURI()),
			"status":     c.Writer.Status(),
			"bytes_out":  c.Writer.Size(),
			"remote_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"latency":    latency.String(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("HTTP request")
		case c.Writer.Status() >= 400:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}

// MaskQuery hides the values of credential-like query parameters.
func MaskQuery(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	q := u.Query()
	masked := false
	for _, param := range sensitiveQueryParams {
		if q.Has(param) {
			q.Set(param, "***")
			masked = true
		}
	}
	if !masked {
		return uri
	}
	u.RawQuery = q.Encode()
	return u.String()
}
