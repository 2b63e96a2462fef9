package config

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if config.World.Width != 1920 || config.World.Height != 1080 {
		t.Errorf("Expected world 1920x1080, got %vx%v", config.World.Width, config.World.Height)
	}
	if config.World.TickRate != 60 {
		t.Errorf("Expected TickRate 60, got %d", config.World.TickRate)
	}
	if config.Rocks.MaxRocks != 15 {
		t.Errorf("Expected MaxRocks 15, got %d", config.Rocks.MaxRocks)
	}
	if len(config.Craft.Colors) != 10 {
		t.Errorf("Expected 10 craft colors, got %d", len(config.Craft.Colors))
	}
	if config.Fighters.Color != "gray" {
		t.Errorf("Expected fighter color 'gray', got '%s'", config.Fighters.Color)
	}
	if config.NetworkConfig.MaxNameLength != 20 {
		t.Errorf("Expected MaxNameLength 20, got %d", config.NetworkConfig.MaxNameLength)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, expected nil", err)
	}
}

func TestDefaultConfig_PerTickValues(t *testing.T) {
	config := DefaultConfig()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"RockSpeedPerTick", config.RockSpeedPerTick(), 160.0 / 60},
		{"RockSpawnIntervalTicks", config.RockSpawnIntervalTicks(), 192},
		{"MinRockSize", config.MinRockSize(), 9},
		{"CraftThrustPerTick", config.CraftThrustPerTick(), 0.2},
		{"RotationPerTick", config.RotationPerTick(), 0.06},
		{"FireIntervalTicks", float64(config.FireIntervalTicks()), 12},
		{"PlayerBulletSpeed", config.PlayerBulletSpeed(), 160.0 / 60 * 4},
		{"FighterBulletSpeed", config.FighterBulletSpeed(), 160.0 / 60 * 1.2},
		{"FighterThrustPerTick", config.FighterThrustPerTick(), 0.2 / 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("%s() = %v, expected %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameConfig)
	}{
		{"zero width", func(c *GameConfig) { c.World.Width = 0 }},
		{"infinite height", func(c *GameConfig) { c.World.Height = math.Inf(1) }},
		{"zero tick rate", func(c *GameConfig) { c.World.TickRate = 0 }},
		{"drag of one", func(c *GameConfig) { c.Craft.Drag = 1 }},
		{"negative drag", func(c *GameConfig) { c.Craft.Drag = -0.1 }},
		{"no colors", func(c *GameConfig) { c.Craft.Colors = nil }},
		{"zero fire chance", func(c *GameConfig) { c.Fighters.FireChance = 0 }},
		{"unknown encoding", func(c *GameConfig) { c.NetworkConfig.Encoding = "xml" }},
		{"zero snapshot cadence", func(c *GameConfig) { c.NetworkConfig.SnapshotEvery = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfig_Success(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.json")

	// Partial files keep defaults for everything they omit.
	data := []byte(`{"world": {"width": 800, "height": 600, "tickRate": 30}, "network": {"encoding": "msgpack"}}`)
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.World.Width != 800 || config.World.Height != 600 || config.World.TickRate != 30 {
		t.Errorf("Expected world 800x600@30, got %+v", config.World)
	}
	if config.NetworkConfig.Encoding != EncodingMsgpack {
		t.Errorf("Expected encoding msgpack, got %s", config.NetworkConfig.Encoding)
	}
	if config.Rocks.Size != 15 {
		t.Errorf("Expected default rock size 15, got %v", config.Rocks.Size)
	}
	if config.NetworkConfig.MaxClients != 32 {
		t.Errorf("Expected default MaxClients 32, got %d", config.NetworkConfig.MaxClients)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.json")
	if err == nil {
		t.Error("Expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.json")
	if err := os.WriteFile(configPath, []byte(`{"world": {"width": 1920,`), 0o644); err != nil {
		t.Fatalf("Failed to write invalid config file: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(configPath, []byte(`{"craft": {"drag": 1.5}}`), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig() = %v, expected ErrInvalidConfig", err)
	}
}

func TestSaveConfig_Success(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "saved_config.json")

	config := DefaultConfig()
	config.World.Width = 1280
	config.Fighters.Enabled = false

	if err := SaveConfig(config, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Saved config is not valid JSON: %v", err)
	}
	for _, key := range []string{"world", "rocks", "craft", "fighters", "network"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Saved config missing section %q", key)
		}
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig of saved file failed: %v", err)
	}
	if loaded.World.Width != 1280 || loaded.Fighters.Enabled {
		t.Errorf("Loaded config lost changes: width %v, fighters %v", loaded.World.Width, loaded.Fighters.Enabled)
	}
}

func TestSaveConfig_InvalidPath(t *testing.T) {
	err := SaveConfig(DefaultConfig(), "/nonexistent/directory/config.json")
	if err == nil {
		t.Error("Expected error for invalid path, got nil")
	}
}

func TestSaveConfig_NilConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nil.json")
	if err := SaveConfig(nil, configPath); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SaveConfig(nil) = %v, expected ErrInvalidConfig", err)
	}
}
