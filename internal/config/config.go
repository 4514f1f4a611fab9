package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// defaultStoreID identifies the storefront on the question-answering
// backend when STORE_ID is not set.
const defaultStoreID = 58690928726

// Config aggregates every setting the service reads.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Store   StoreConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	backend, err := loadBackendConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Backend: backend,
		Store:   StoreConfig{RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL"))},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// BackendConfig points at the upstream question-answering backend.
type BackendConfig struct {
	BaseURL string
	StoreID int64
	Timeout time.Duration
}

// Enabled reports whether a backend host was supplied. Without one the
// relay endpoints stay off; requests must not target an undefined host.
func (c BackendConfig) Enabled() bool {
	return c.BaseURL != ""
}

func loadBackendConfig() (BackendConfig, error) {
	storeID := int64(defaultStoreID)
	if raw := strings.TrimSpace(os.Getenv("STORE_ID")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return BackendConfig{}, fmt.Errorf("invalid STORE_ID value %q: %w", raw, err)
		}
		storeID = parsed
	}

	timeout := 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("RELAY_TIMEOUT_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return BackendConfig{}, fmt.Errorf("invalid RELAY_TIMEOUT_SECONDS value %q", raw)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return BackendConfig{
		BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")), "/"),
		StoreID: storeID,
		Timeout: timeout,
	}, nil
}

// StoreConfig selects the session store; an empty RedisURL keeps sessions
// in memory.
type StoreConfig struct {
	RedisURL string
}
