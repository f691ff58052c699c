package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/toolmesh.dev/internal/config"
)

type MiddlewareProvider struct {
	jwtSecret       string
	workerTokenHash string
}

func NewMiddlewareProvider(cfg *config.AuthConfig) *MiddlewareProvider {
	return &MiddlewareProvider{
		jwtSecret:       cfg.JWTSecret,
		workerTokenHash: cfg.WorkerTokenHash,
	}
}

func (m *MiddlewareProvider) secret() []byte {
	return []byte(m.jwtSecret)
}

// JWTMiddleware guards the dispatch and history endpoints with a bearer token
func (m *MiddlewareProvider) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return m.secret(), nil
		})

		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// WorkerAuthMiddleware guards worker registration with a shared token
// checked against the configured bcrypt hash. A missing hash disables the
// check, for closed-network deployments.
func (m *MiddlewareProvider) WorkerAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.workerTokenHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("X-Worker-Token")
		if token == "" {
			http.Error(w, "Worker token missing", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(m.workerTokenHash), []byte(token)); err != nil {
			http.Error(w, "Invalid worker token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
