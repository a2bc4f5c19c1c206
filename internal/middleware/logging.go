// middleware/logging.go
package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"koomy/portal/internal/logging"
)

const maxLoggedBody = 512

type respLogger struct {
	http.ResponseWriter
	status int
	buf    *bytes.Buffer
}

func (l *respLogger) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *respLogger) Write(b []byte) (int, error) {
	if room := maxLoggedBody - l.buf.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		l.buf.Write(b[:room])
	}
	return l.ResponseWriter.Write(b)
}

// Logging dumps headers and the start of the response body at debug level.
// Only mounted when debug is on.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string, len(r.Header))
		for name, vals := range r.Header {
			switch strings.ToLower(name) {
			case "cookie", "authorization":
				headers[name] = "***"
			default:
				headers[name] = strings.Join(vals, ", ")
			}
		}
		logging.Debug("→ request", "method", r.Method, "url", r.URL.String(), "host", r.Host, "headers", headers)

		lw := &respLogger{ResponseWriter: w, status: http.StatusOK, buf: &bytes.Buffer{}}

		start := time.Now()
		next.ServeHTTP(lw, r)

		logging.Debug("← response",
			"status", lw.status,
			"status_text", http.StatusText(lw.status),
			"duration", time.Since(start).String(),
			"body", lw.buf.String(),
		)
	})
}
