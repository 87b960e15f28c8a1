package kit

import (
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RedactedValue replaces sensitive header values in log output.
const RedactedValue = "[REDACTED]"

var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"x-api-key":     {},
}

func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

// Logging emits one structured line per request/response pair. Sensitive
// header values are redacted; the response itself is never touched.
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := math.Round(time.Since(start).Seconds()*1e4) / 1e4

			log.Info("request",
				zap.String("timestamp", start.Format("2006-01-02T15:04:05-07:00")),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Any("query_params", flattenValues(r.URL.Query())),
				zap.Any("headers", RedactHeaders(r.Header)),
				zap.String("client", ClientIP(r)),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Float64("processing_time_s", elapsed),
			)
		})
	}
}

// RedactHeaders flattens headers into a map, masking the values of
// authorization, cookie and x-api-key (matched case-insensitively).
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if _, sensitive := sensitiveHeaders[strings.ToLower(k)]; sensitive {
			out[k] = RedactedValue
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func flattenValues(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		out[k] = strings.Join(v, ",")
	}
	return out
}
