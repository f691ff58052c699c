package config

import "os"

type AppConfig struct {
	DebugMode      bool
	PoolConfig     *PoolConfig
	RuntimeConfig  *RuntimeConfig
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	AuthConfig     *AuthConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		PoolConfig:     NewPoolConfig(),
		RuntimeConfig:  NewRuntimeConfig(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		AuthConfig:     NewAuthConfig(),
	}
}

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
