// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// ErrInvalidConfig is wrapped by every GameConfig validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Wire encodings for state broadcasts.
const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// GameConfig contains configuration for an asteroids world
type GameConfig struct {
	World         WorldConfig   `json:"world"`
	Rocks         RockConfig    `json:"rocks"`
	Craft         CraftConfig   `json:"craft"`
	Fighters      FighterConfig `json:"fighters"`
	NetworkConfig NetworkConfig `json:"network"`
}

// WorldConfig sets the arena size and simulation rate
type WorldConfig struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	TickRate int     `json:"tickRate"`
}

// RockConfig contains rock spawn and size parameters. Speed is in units per
// second; margins are fractions of the world extent.
type RockConfig struct {
	Speed           float64 `json:"speed"`
	Size            float64 `json:"size"`
	SpawnIntervalMs int     `json:"spawnIntervalMs"`
	MaxRocks        int     `json:"maxRocks"`
	MinSizeFactor   float64 `json:"minSizeFactor"`
	WrapMargin      float64 `json:"wrapMargin"`
	SpawnMargin     float64 `json:"spawnMargin"`
}

// CraftConfig contains player craft parameters. Thrust and rotation are per
// second; FireInterval is in seconds.
type CraftConfig struct {
	Size              float64  `json:"size"`
	Thrust            float64  `json:"thrust"`
	Drag              float64  `json:"drag"`
	Rotation          float64  `json:"rotation"`
	FireInterval      float64  `json:"fireInterval"`
	BulletSpeedFactor float64  `json:"bulletSpeedFactor"`
	HitGraceTicks     int      `json:"hitGraceTicks"`
	Colors            []string `json:"colors"`
}

// FighterConfig contains autonomous fighter parameters. FireChance and
// SpawnRarity are the denominators of the per-tick probabilities.
type FighterConfig struct {
	Enabled           bool    `json:"enabled"`
	ScoreThreshold    int     `json:"scoreThreshold"`
	MaxFighters       int     `json:"maxFighters"`
	SizeMultiplier    float64 `json:"sizeMultiplier"`
	ThrustDivisor     float64 `json:"thrustDivisor"`
	FireChance        int     `json:"fireChance"`
	SpawnRarity       int     `json:"spawnRarity"`
	BulletSpeedFactor float64 `json:"bulletSpeedFactor"`
	Color             string  `json:"color"`
}

// NetworkConfig contains network-related configuration
type NetworkConfig struct {
	Address       string `json:"address"`
	Encoding      string `json:"encoding"`
	MaxClients    int    `json:"maxClients"`
	MaxNameLength int    `json:"maxNameLength"`
	SnapshotEvery int    `json:"snapshotEvery"`
}

// LoadConfig loads and validates a configuration from a file
func LoadConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *GameConfig, path string) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the classic arena configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		World: WorldConfig{
			Width:    1920,
			Height:   1080,
			TickRate: 60,
		},
		Rocks: RockConfig{
			Speed:           160,
			Size:            15,
			SpawnIntervalMs: 3200,
			MaxRocks:        15,
			MinSizeFactor:   0.6,
			WrapMargin:      0.1,
			SpawnMargin:     0.2,
		},
		Craft: CraftConfig{
			Size:              20,
			Thrust:            12,
			Drag:              0.05,
			Rotation:          3.6,
			FireInterval:      0.2,
			BulletSpeedFactor: 4,
			HitGraceTicks:     2,
			Colors: []string{
				"green", "purple", "teal", "fuchsia", "aqua",
				"lime", "yellow", "olive", "orange", "red",
			},
		},
		Fighters: FighterConfig{
			Enabled:           true,
			ScoreThreshold:    0,
			MaxFighters:       5,
			SizeMultiplier:    1.8,
			ThrustDivisor:     1.5,
			FireChance:        120,
			SpawnRarity:       500,
			BulletSpeedFactor: 1.2,
			Color:             "gray",
		},
		NetworkConfig: NetworkConfig{
			Address:       "localhost:3000",
			Encoding:      EncodingJSON,
			MaxClients:    32,
			MaxNameLength: 20,
			SnapshotEvery: 1,
		},
	}
}

// Validate checks that every value is usable by the engine and transport.
func (c *GameConfig) Validate() error {
	checks := []struct {
		ok    bool
		field string
	}{
		{c.World.Width > 0 && !math.IsInf(c.World.Width, 0), "world.width"},
		{c.World.Height > 0 && !math.IsInf(c.World.Height, 0), "world.height"},
		{c.World.TickRate > 0 && c.World.TickRate <= 1000, "world.tickRate"},
		{c.Rocks.Speed >= 0, "rocks.speed"},
		{c.Rocks.Size > 0, "rocks.size"},
		{c.Rocks.SpawnIntervalMs > 0, "rocks.spawnIntervalMs"},
		{c.Rocks.MaxRocks >= 0, "rocks.maxRocks"},
		{c.Rocks.MinSizeFactor >= 0, "rocks.minSizeFactor"},
		{c.Rocks.WrapMargin >= 0, "rocks.wrapMargin"},
		{c.Rocks.SpawnMargin >= 0, "rocks.spawnMargin"},
		{c.Craft.Size > 0, "craft.size"},
		{c.Craft.Thrust >= 0, "craft.thrust"},
		{c.Craft.Drag >= 0 && c.Craft.Drag < 1, "craft.drag"},
		{c.Craft.Rotation >= 0, "craft.rotation"},
		{c.Craft.FireInterval >= 0, "craft.fireInterval"},
		{c.Craft.BulletSpeedFactor > 0, "craft.bulletSpeedFactor"},
		{c.Craft.HitGraceTicks >= 0, "craft.hitGraceTicks"},
		{len(c.Craft.Colors) > 0, "craft.colors"},
		{c.Fighters.MaxFighters >= 0, "fighters.maxFighters"},
		{c.Fighters.SizeMultiplier > 0, "fighters.sizeMultiplier"},
		{c.Fighters.ThrustDivisor > 0, "fighters.thrustDivisor"},
		{c.Fighters.FireChance > 0, "fighters.fireChance"},
		{c.Fighters.SpawnRarity > 0, "fighters.spawnRarity"},
		{c.NetworkConfig.Encoding == EncodingJSON || c.NetworkConfig.Encoding == EncodingMsgpack, "network.encoding"},
		{c.NetworkConfig.MaxClients > 0, "network.maxClients"},
		{c.NetworkConfig.MaxNameLength > 0, "network.maxNameLength"},
		{c.NetworkConfig.SnapshotEvery > 0, "network.snapshotEvery"},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s out of range", ErrInvalidConfig, check.field)
		}
	}
	return nil
}

// The helpers below convert the per-second values above into per-tick
// quantities at the configured tick rate.

func (c *GameConfig) fps() float64 { return float64(c.World.TickRate) }

// RockSpeedPerTick is the distance a rock covers each tick.
func (c *GameConfig) RockSpeedPerTick() float64 { return c.Rocks.Speed / c.fps() }

// RockSpawnIntervalTicks converts the spawn interval to ticks.
func (c *GameConfig) RockSpawnIntervalTicks() float64 {
	return float64(c.Rocks.SpawnIntervalMs) * c.fps() / 1000
}

// MinRockSize is the size below which a hit rock is destroyed outright.
func (c *GameConfig) MinRockSize() float64 { return c.Rocks.Size * c.Rocks.MinSizeFactor }

// CraftThrustPerTick is the velocity a player craft gains per thrusting tick.
func (c *GameConfig) CraftThrustPerTick() float64 { return c.Craft.Thrust / c.fps() }

// RotationPerTick is the turn applied per tick of held turn input.
func (c *GameConfig) RotationPerTick() float64 { return c.Craft.Rotation / c.fps() }

// FireIntervalTicks is the player fire cooldown in ticks.
func (c *GameConfig) FireIntervalTicks() int {
	return int(math.Round(c.Craft.FireInterval * c.fps()))
}

// PlayerBulletSpeed is the per-tick speed of player projectiles.
func (c *GameConfig) PlayerBulletSpeed() float64 {
	return c.RockSpeedPerTick() * c.Craft.BulletSpeedFactor
}

// FighterBulletSpeed is the per-tick speed of fighter projectiles.
func (c *GameConfig) FighterBulletSpeed() float64 {
	return c.RockSpeedPerTick() * c.Fighters.BulletSpeedFactor
}

// FighterThrustPerTick is the velocity a fighter gains per tick.
func (c *GameConfig) FighterThrustPerTick() float64 {
	return c.CraftThrustPerTick() / c.Fighters.ThrustDivisor
}
