package config

import (
	"os"
	"strconv"
	"time"
)

type PoolConfig struct {
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	Strategy          string
}

func NewPoolConfig() *PoolConfig {
	intervalSec := os.Getenv("HEARTBEAT_INTERVAL_SEC")
	timeoutSec := os.Getenv("HEARTBEAT_TIMEOUT_SEC")
	varInt, err := strconv.Atoi(intervalSec)
	if err != nil {
		varInt = 30
	}
	varInt2, err := strconv.Atoi(timeoutSec)
	if err != nil {
		varInt2 = 90
	}
	return &PoolConfig{
		HeartbeatInterval: time.Duration(varInt) * time.Second,
		HeartbeatTimeout:  time.Duration(varInt2) * time.Second,
		Strategy:          getEnv("LOAD_BALANCING_STRATEGY", "least_loaded"),
	}
}
