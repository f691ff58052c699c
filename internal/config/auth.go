package config

import "os"

type AuthConfig struct {
	// JWTSecret signs and verifies the bearer tokens protecting the
	// dispatch and history endpoints
	JWTSecret string

	// WorkerTokenHash is the bcrypt hash workers must match (via
	// X-Worker-Token) when registering. Empty disables worker auth.
	WorkerTokenHash string
}

func NewAuthConfig() *AuthConfig {
	return &AuthConfig{
		JWTSecret:       os.Getenv("JWT_SECRET"),
		WorkerTokenHash: os.Getenv("WORKER_TOKEN_HASH"),
	}
}
