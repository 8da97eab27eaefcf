package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/talkscribe/internal/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// UserIDFromContext returns the authenticated user id set by requireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeader)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
}

// requireAuth rejects requests without a valid bearer access token with
// 401 {"error":"Unauthorized"} before the wrapped handler runs.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.authFailure(r.Context(), "missing_token")
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := s.users.UserIDFromAccessToken(token)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, common.ErrTokenExpired) {
				reason = "expired_token"
			}
			s.authFailure(r.Context(), reason)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func (s *Server) authFailure(ctx context.Context, reason string) {
	s.metrics.AuthFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
