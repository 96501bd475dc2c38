package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/courierdesk/courierdesk/pkg/composables"
	"github.com/courierdesk/courierdesk/pkg/httpapi"
	"github.com/courierdesk/courierdesk/pkg/tokens"
)

// Authorize verifies the bearer token and installs the resulting identity
// into the request context. Requests without a valid token never reach the
// wrapped handler.
func Authorize(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header", nil)
				return
			}
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization header must use Bearer scheme", nil)
				return
			}

			identity, err := tokens.Verify(secret, tokenString)
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(composables.WithIdentity(r.Context(), identity)))
		})
	}
}
