package timeout

import (
	"context"
	"net/http"
	"time"
)

// Middleware bounds the request context. The parent is the server's base
// context, so shutdown still cancels in-flight work.
func Middleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
