// pkg/config/env_config_test.go
package config

import (
	"testing"
	"time"
)

// createValidConfig creates a valid EnvironmentConfig for testing
func createValidConfig() *EnvironmentConfig {
	return &EnvironmentConfig{
		ServerAddr:    "localhost",
		ServerPort:    3000,
		MaxClients:    32,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		TickRate:      60,
		SnapshotEvery: 1,
		Encoding:      EncodingJSON,
		WorldWidth:    1920,
		WorldHeight:   1080,
		Fighters:      true,
		// Circuit Breaker Configuration
		CircuitBreakerMaxRequests:         3,
		CircuitBreakerInterval:            60 * time.Second,
		CircuitBreakerTimeout:             30 * time.Second,
		CircuitBreakerMaxConsecutiveFails: 5,
		// Resource Management Configuration
		MaxMemoryMB:           500,
		MaxGoroutines:         200,
		ShutdownTimeout:       30 * time.Second,
		ResourceCheckInterval: 10 * time.Second,
	}
}

var envVars = []string{
	"ASTEROIDS_SERVER_ADDR",
	"ASTEROIDS_SERVER_PORT",
	"ASTEROIDS_MAX_CLIENTS",
	"ASTEROIDS_READ_TIMEOUT",
	"ASTEROIDS_WRITE_TIMEOUT",
	"ASTEROIDS_TICK_RATE",
	"ASTEROIDS_SNAPSHOT_EVERY",
	"ASTEROIDS_ENCODING",
	"ASTEROIDS_WORLD_WIDTH",
	"ASTEROIDS_WORLD_HEIGHT",
	"ASTEROIDS_FIGHTERS",
}

// clearEnv blanks every variable for the duration of the test. An empty
// value reads as unset for the defaulting helpers.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		clearEnv(t)
		config, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() failed: %v", err)
		}

		want := createValidConfig()
		if *config != *want {
			t.Errorf("LoadConfigFromEnv() = %+v, expected %+v", config, want)
		}
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ASTEROIDS_SERVER_ADDR", "192.168.1.100")
		t.Setenv("ASTEROIDS_SERVER_PORT", "8080")
		t.Setenv("ASTEROIDS_MAX_CLIENTS", "64")
		t.Setenv("ASTEROIDS_READ_TIMEOUT", "45s")
		t.Setenv("ASTEROIDS_WRITE_TIMEOUT", "1m")
		t.Setenv("ASTEROIDS_TICK_RATE", "30")
		t.Setenv("ASTEROIDS_SNAPSHOT_EVERY", "2")
		t.Setenv("ASTEROIDS_ENCODING", "MsgPack")
		t.Setenv("ASTEROIDS_WORLD_WIDTH", "1280")
		t.Setenv("ASTEROIDS_WORLD_HEIGHT", "720")
		t.Setenv("ASTEROIDS_FIGHTERS", "false")

		config, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv() failed: %v", err)
		}

		if config.ServerAddr != "192.168.1.100" {
			t.Errorf("Expected ServerAddr '192.168.1.100', got '%s'", config.ServerAddr)
		}
		if config.ServerPort != 8080 {
			t.Errorf("Expected ServerPort 8080, got %d", config.ServerPort)
		}
		if config.MaxClients != 64 {
			t.Errorf("Expected MaxClients 64, got %d", config.MaxClients)
		}
		if config.ReadTimeout != 45*time.Second {
			t.Errorf("Expected ReadTimeout 45s, got %v", config.ReadTimeout)
		}
		if config.WriteTimeout != time.Minute {
			t.Errorf("Expected WriteTimeout 1m, got %v", config.WriteTimeout)
		}
		if config.TickRate != 30 {
			t.Errorf("Expected TickRate 30, got %d", config.TickRate)
		}
		if config.SnapshotEvery != 2 {
			t.Errorf("Expected SnapshotEvery 2, got %d", config.SnapshotEvery)
		}
		if config.Encoding != EncodingMsgpack {
			t.Errorf("Expected Encoding msgpack, got %s", config.Encoding)
		}
		if config.WorldWidth != 1280 || config.WorldHeight != 720 {
			t.Errorf("Expected world 1280x720, got %vx%v", config.WorldWidth, config.WorldHeight)
		}
		if config.Fighters {
			t.Error("Expected Fighters false")
		}
	})

	t.Run("InvalidValue", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ASTEROIDS_SERVER_PORT", "70000")
		if _, err := LoadConfigFromEnv(); err == nil {
			t.Error("Expected error for out-of-range port, got nil")
		}
	})
}

func TestValidateEnvironmentConfig(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*EnvironmentConfig)
		expectError bool
		errorField  string
	}{
		{"valid", func(c *EnvironmentConfig) {}, false, ""},
		{"empty address", func(c *EnvironmentConfig) { c.ServerAddr = "" }, true, "ServerAddr"},
		{"port zero", func(c *EnvironmentConfig) { c.ServerPort = 0 }, true, "ServerPort"},
		{"port too high", func(c *EnvironmentConfig) { c.ServerPort = 65536 }, true, "ServerPort"},
		{"no clients", func(c *EnvironmentConfig) { c.MaxClients = 0 }, true, "MaxClients"},
		{"too many clients", func(c *EnvironmentConfig) { c.MaxClients = 1001 }, true, "MaxClients"},
		{"short read timeout", func(c *EnvironmentConfig) { c.ReadTimeout = 500 * time.Millisecond }, true, "ReadTimeout"},
		{"long write timeout", func(c *EnvironmentConfig) { c.WriteTimeout = 10 * time.Minute }, true, "WriteTimeout"},
		{"zero tick rate", func(c *EnvironmentConfig) { c.TickRate = 0 }, true, "TickRate"},
		{"zero snapshot cadence", func(c *EnvironmentConfig) { c.SnapshotEvery = 0 }, true, "SnapshotEvery"},
		{"bad encoding", func(c *EnvironmentConfig) { c.Encoding = "gob" }, true, "Encoding"},
		{"tiny world", func(c *EnvironmentConfig) { c.WorldWidth = 10 }, true, "WorldWidth"},
		{"huge world", func(c *EnvironmentConfig) { c.WorldHeight = 1e6 }, true, "WorldHeight"},
		{"no breaker requests", func(c *EnvironmentConfig) { c.CircuitBreakerMaxRequests = 0 }, true, "CircuitBreakerMaxRequests"},
		{"short breaker interval", func(c *EnvironmentConfig) { c.CircuitBreakerInterval = 0 }, true, "CircuitBreakerInterval"},
		{"few goroutines", func(c *EnvironmentConfig) { c.MaxGoroutines = 1 }, true, "MaxGoroutines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.mutate(config)
			err := validateEnvironmentConfig(config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected validation error, but got none")
				} else if validationErr, ok := err.(*ValidationError); ok {
					if validationErr.Field != tt.errorField {
						t.Errorf("Expected error for field '%s', got error for field '%s'", tt.errorField, validationErr.Field)
					}
				} else {
					t.Errorf("Expected ValidationError, got %T: %v", err, err)
				}
			} else if err != nil {
				t.Errorf("Expected no validation error, but got: %v", err)
			}
		})
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ASTEROIDS_SERVER_ADDR", "testhost")
	t.Setenv("ASTEROIDS_SERVER_PORT", "9999")
	t.Setenv("ASTEROIDS_MAX_CLIENTS", "100")
	t.Setenv("ASTEROIDS_TICK_RATE", "50")
	t.Setenv("ASTEROIDS_WORLD_WIDTH", "2000")

	gameConfig := DefaultConfig()
	if err := ApplyEnvironmentOverrides(gameConfig); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides failed: %v", err)
	}

	if gameConfig.NetworkConfig.Address != "testhost:9999" {
		t.Errorf("Expected Address 'testhost:9999', got '%s'", gameConfig.NetworkConfig.Address)
	}
	if gameConfig.NetworkConfig.MaxClients != 100 {
		t.Errorf("Expected MaxClients 100, got %d", gameConfig.NetworkConfig.MaxClients)
	}
	if gameConfig.World.TickRate != 50 {
		t.Errorf("Expected TickRate 50, got %d", gameConfig.World.TickRate)
	}
	if gameConfig.World.Width != 2000 {
		t.Errorf("Expected Width 2000, got %f", gameConfig.World.Width)
	}
	// Blank variables leave the file values alone.
	if gameConfig.World.Height != 1080 {
		t.Errorf("Expected Height 1080 untouched, got %f", gameConfig.World.Height)
	}
}

func TestGetEnvHelperFunctions(t *testing.T) {
	t.Setenv("TEST_STRING", "test_value")
	if result := getEnvOrDefault("TEST_STRING", "default"); result != "test_value" {
		t.Errorf("getEnvOrDefault: expected 'test_value', got '%s'", result)
	}
	if result := getEnvOrDefault("ASTEROIDS_NONEXISTENT", "default"); result != "default" {
		t.Errorf("getEnvOrDefault: expected 'default', got '%s'", result)
	}

	t.Setenv("TEST_INT", "42")
	if result := getEnvAsIntOrDefault("TEST_INT", 10); result != 42 {
		t.Errorf("getEnvAsIntOrDefault: expected 42, got %d", result)
	}
	t.Setenv("TEST_INT", "invalid")
	if result := getEnvAsIntOrDefault("TEST_INT", 10); result != 10 {
		t.Errorf("getEnvAsIntOrDefault with invalid value: expected 10, got %d", result)
	}

	t.Setenv("TEST_BOOL", "true")
	if result := getEnvAsBoolOrDefault("TEST_BOOL", false); result != true {
		t.Errorf("getEnvAsBoolOrDefault: expected true, got %v", result)
	}
	t.Setenv("TEST_BOOL", "invalid")
	if result := getEnvAsBoolOrDefault("TEST_BOOL", false); result != false {
		t.Errorf("getEnvAsBoolOrDefault with invalid value: expected false, got %v", result)
	}

	t.Setenv("TEST_FLOAT", "3.14")
	if result := getEnvAsFloatOrDefault("TEST_FLOAT", 1.0); result != 3.14 {
		t.Errorf("getEnvAsFloatOrDefault: expected 3.14, got %f", result)
	}
	t.Setenv("TEST_FLOAT", "invalid")
	if result := getEnvAsFloatOrDefault("TEST_FLOAT", 1.0); result != 1.0 {
		t.Errorf("getEnvAsFloatOrDefault with invalid value: expected 1.0, got %f", result)
	}

	t.Setenv("TEST_DURATION", "5s")
	if result := getEnvAsDurationOrDefault("TEST_DURATION", time.Second); result != 5*time.Second {
		t.Errorf("getEnvAsDurationOrDefault: expected 5s, got %v", result)
	}
	t.Setenv("TEST_DURATION", "invalid")
	if result := getEnvAsDurationOrDefault("TEST_DURATION", time.Second); result != time.Second {
		t.Errorf("getEnvAsDurationOrDefault with invalid value: expected 1s, got %v", result)
	}
}
