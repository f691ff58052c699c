package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type RuntimeConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// Tools declares the dispatchable tool names and their required
	// capability tags, parsed from TOOL_REQUIREMENTS
	// ("train_model:gpu,high-memory;web_search:").
	Tools []ToolRequirement
}

type ToolRequirement struct {
	Name         string
	Capabilities []string
}

func NewRuntimeConfig() *RuntimeConfig {
	timeoutSec := os.Getenv("EXECUTION_TIMEOUT_SEC")
	retryAttempts := os.Getenv("RETRY_ATTEMPTS")
	retryDelayMs := os.Getenv("RETRY_DELAY_MS")
	varInt, err := strconv.Atoi(timeoutSec)
	if err != nil {
		varInt = 60
	}
	varInt2, err := strconv.Atoi(retryAttempts)
	if err != nil {
		varInt2 = 3
	}
	varInt3, err := strconv.Atoi(retryDelayMs)
	if err != nil {
		varInt3 = 1000
	}
	return &RuntimeConfig{
		Timeout:       time.Duration(varInt) * time.Second,
		RetryAttempts: varInt2,
		RetryDelay:    time.Duration(varInt3) * time.Millisecond,
		Tools:         parseToolRequirements(os.Getenv("TOOL_REQUIREMENTS")),
	}
}

func parseToolRequirements(raw string) []ToolRequirement {
	var tools []ToolRequirement
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, caps, _ := strings.Cut(entry, ":")
		tool := ToolRequirement{Name: strings.TrimSpace(name)}
		for _, c := range strings.Split(caps, ",") {
			if c = strings.TrimSpace(c); c != "" {
				tool.Capabilities = append(tool.Capabilities, c)
			}
		}
		tools = append(tools, tool)
	}
	return tools
}
