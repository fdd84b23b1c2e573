package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// dashboardAudience scopes tokens to the dashboard endpoints.
const dashboardAudience = "chatops-dashboard"

// ErrTokenInvalid is returned when a dashboard token fails validation.
var ErrTokenInvalid = errors.New("invalid dashboard token")

// DashboardClaims are the claims carried by a dashboard bearer token.
type DashboardClaims struct {
	jwt.RegisteredClaims
}

// IssueDashboardToken signs an HS256 token for subject that expires after ttl.
func IssueDashboardToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: empty signing secret", ErrTokenInvalid)
	}
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrTokenInvalid)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: non-positive ttl", ErrTokenInvalid)
	}

	now := time.Now()
	claims := DashboardClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{dashboardAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing dashboard token: %w", err)
	}
	return signed, nil
}

// parseDashboardToken checks signature, algorithm, audience and expiry.
func parseDashboardToken(raw, secret string) (*DashboardClaims, error) {
	key := func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}
	token, err := jwt.ParseWithClaims(raw, &DashboardClaims{}, key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(dashboardAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*DashboardClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}

// bearerToken extracts the token from the Authorization header. Browsers
// cannot set headers on a WebSocket handshake, so the access_token query
// parameter is accepted as well.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

// authMiddleware rejects dashboard requests without a valid bearer token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		claims, err := parseDashboardToken(raw, s.cfg.Auth.TokenSecret)
		if err != nil {
			s.logger.Debug("dashboard token rejected",
				"path", r.URL.Path,
				"request_id", r.Context().Value(ctxKeyRequestID),
				"error", err,
			)
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeySubject, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// subjectFromContext returns the authenticated dashboard subject, if any.
func subjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(ctxKeySubject).(string)
	return sub
}
