package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nftmarket/internal/requests"
)

type ctxKey struct{}

// Middleware checks the mobile token header. With a secret configured the
// token must be an HS256 JWT signed with it; otherwise it must equal the
// static token.
type Middleware struct {
	staticToken string
	secretKey   []byte
}

func NewMiddleware(staticToken, secret string) *Middleware {
	m := &Middleware{staticToken: staticToken}
	if secret != "" {
		m.secretKey = []byte(secret)
	}
	return m
}

func (m *Middleware) ValidateToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get(requests.TokenHeader)
		if tokenString == "" {
			http.Error(w, "Missing "+requests.TokenHeader+" header", http.StatusUnauthorized)
			return
		}

		if m.secretKey == nil {
			if subtle.ConstantTimeCompare([]byte(tokenString), []byte(m.staticToken)) != 1 {
				slog.Warn("Invalid token attempt", "remote", r.RemoteAddr)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		subject, err := m.parse(tokenString)
		if err != nil {
			slog.Warn("Invalid token attempt", "error", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}
	return token.Claims.GetSubject()
}

// Subject returns the JWT subject stored by ValidateToken, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxKey{}).(string)
	return s, ok
}

// IssueToken mints an HS256 token the middleware accepts.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
