// pkg/config/env.go
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "ASTEROIDS_"

// EnvironmentConfig holds deployment settings read from ASTEROIDS_* variables.
type EnvironmentConfig struct {
	ServerAddr    string
	ServerPort    int
	MaxClients    int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	TickRate      int
	SnapshotEvery int
	Encoding      string
	WorldWidth    float64
	WorldHeight   float64
	Fighters      bool

	// Circuit Breaker Configuration
	CircuitBreakerMaxRequests         uint32
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails uint32

	// Resource Management Configuration
	MaxMemoryMB           int
	MaxGoroutines         int
	ShutdownTimeout       time.Duration
	ResourceCheckInterval time.Duration
}

// ValidationError reports the first environment setting that is out of range.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// LoadConfigFromEnv reads the environment, applying defaults for unset
// variables, and validates the result.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	config := &EnvironmentConfig{
		ServerAddr:    getEnvOrDefault(envPrefix+"SERVER_ADDR", "localhost"),
		ServerPort:    getEnvAsIntOrDefault(envPrefix+"SERVER_PORT", 3000),
		MaxClients:    getEnvAsIntOrDefault(envPrefix+"MAX_CLIENTS", 32),
		ReadTimeout:   getEnvAsDurationOrDefault(envPrefix+"READ_TIMEOUT", 30*time.Second),
		WriteTimeout:  getEnvAsDurationOrDefault(envPrefix+"WRITE_TIMEOUT", 30*time.Second),
		TickRate:      getEnvAsIntOrDefault(envPrefix+"TICK_RATE", 60),
		SnapshotEvery: getEnvAsIntOrDefault(envPrefix+"SNAPSHOT_EVERY", 1),
		Encoding:      strings.ToLower(getEnvOrDefault(envPrefix+"ENCODING", EncodingJSON)),
		WorldWidth:    getEnvAsFloatOrDefault(envPrefix+"WORLD_WIDTH", 1920),
		WorldHeight:   getEnvAsFloatOrDefault(envPrefix+"WORLD_HEIGHT", 1080),
		Fighters:      getEnvAsBoolOrDefault(envPrefix+"FIGHTERS", true),

		CircuitBreakerMaxRequests:         uint32(getEnvAsIntOrDefault(envPrefix+"CB_MAX_REQUESTS", 3)),
		CircuitBreakerInterval:            getEnvAsDurationOrDefault(envPrefix+"CB_INTERVAL", 60*time.Second),
		CircuitBreakerTimeout:             getEnvAsDurationOrDefault(envPrefix+"CB_TIMEOUT", 30*time.Second),
		CircuitBreakerMaxConsecutiveFails: uint32(getEnvAsIntOrDefault(envPrefix+"CB_MAX_FAILS", 5)),

		MaxMemoryMB:           getEnvAsIntOrDefault(envPrefix+"MAX_MEMORY_MB", 500),
		MaxGoroutines:         getEnvAsIntOrDefault(envPrefix+"MAX_GOROUTINES", 200),
		ShutdownTimeout:       getEnvAsDurationOrDefault(envPrefix+"SHUTDOWN_TIMEOUT", 30*time.Second),
		ResourceCheckInterval: getEnvAsDurationOrDefault(envPrefix+"RESOURCE_CHECK_INTERVAL", 10*time.Second),
	}

	if err := validateEnvironmentConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateEnvironmentConfig(c *EnvironmentConfig) error {
	switch {
	case c.ServerAddr == "":
		return &ValidationError{"ServerAddr", c.ServerAddr, "must not be empty"}
	case c.ServerPort < 1 || c.ServerPort > 65535:
		return &ValidationError{"ServerPort", c.ServerPort, "must be between 1 and 65535"}
	case c.MaxClients < 1 || c.MaxClients > 1000:
		return &ValidationError{"MaxClients", c.MaxClients, "must be between 1 and 1000"}
	case c.ReadTimeout < time.Second || c.ReadTimeout > 5*time.Minute:
		return &ValidationError{"ReadTimeout", c.ReadTimeout, "must be between 1s and 5m"}
	case c.WriteTimeout < time.Second || c.WriteTimeout > 5*time.Minute:
		return &ValidationError{"WriteTimeout", c.WriteTimeout, "must be between 1s and 5m"}
	case c.TickRate < 1 || c.TickRate > 1000:
		return &ValidationError{"TickRate", c.TickRate, "must be between 1 and 1000"}
	case c.SnapshotEvery < 1:
		return &ValidationError{"SnapshotEvery", c.SnapshotEvery, "must be at least 1"}
	case c.Encoding != EncodingJSON && c.Encoding != EncodingMsgpack:
		return &ValidationError{"Encoding", c.Encoding, "must be json or msgpack"}
	case c.WorldWidth < 100 || c.WorldWidth > 100000:
		return &ValidationError{"WorldWidth", c.WorldWidth, "must be between 100 and 100000"}
	case c.WorldHeight < 100 || c.WorldHeight > 100000:
		return &ValidationError{"WorldHeight", c.WorldHeight, "must be between 100 and 100000"}
	case c.CircuitBreakerMaxRequests < 1:
		return &ValidationError{"CircuitBreakerMaxRequests", c.CircuitBreakerMaxRequests, "must be at least 1"}
	case c.CircuitBreakerInterval < time.Second:
		return &ValidationError{"CircuitBreakerInterval", c.CircuitBreakerInterval, "must be at least 1s"}
	case c.CircuitBreakerTimeout < time.Second:
		return &ValidationError{"CircuitBreakerTimeout", c.CircuitBreakerTimeout, "must be at least 1s"}
	case c.CircuitBreakerMaxConsecutiveFails < 1:
		return &ValidationError{"CircuitBreakerMaxConsecutiveFails", c.CircuitBreakerMaxConsecutiveFails, "must be at least 1"}
	case c.MaxMemoryMB < 16:
		return &ValidationError{"MaxMemoryMB", c.MaxMemoryMB, "must be at least 16"}
	case c.MaxGoroutines < 10:
		return &ValidationError{"MaxGoroutines", c.MaxGoroutines, "must be at least 10"}
	}
	return nil
}

// ApplyEnvironmentOverrides copies every explicitly set ASTEROIDS_* value
// into gameConfig and revalidates it.
func ApplyEnvironmentOverrides(gameConfig *GameConfig) error {
	env, err := LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}

	if isSet("SERVER_ADDR") || isSet("SERVER_PORT") {
		gameConfig.NetworkConfig.Address = net.JoinHostPort(env.ServerAddr, strconv.Itoa(env.ServerPort))
	}
	if isSet("MAX_CLIENTS") {
		gameConfig.NetworkConfig.MaxClients = env.MaxClients
	}
	if isSet("SNAPSHOT_EVERY") {
		gameConfig.NetworkConfig.SnapshotEvery = env.SnapshotEvery
	}
	if isSet("ENCODING") {
		gameConfig.NetworkConfig.Encoding = env.Encoding
	}
	if isSet("TICK_RATE") {
		gameConfig.World.TickRate = env.TickRate
	}
	if isSet("WORLD_WIDTH") {
		gameConfig.World.Width = env.WorldWidth
	}
	if isSet("WORLD_HEIGHT") {
		gameConfig.World.Height = env.WorldHeight
	}
	if isSet("FIGHTERS") {
		gameConfig.Fighters.Enabled = env.Fighters
	}

	return gameConfig.Validate()
}

func isSet(name string) bool {
	return os.Getenv(envPrefix+name) != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
