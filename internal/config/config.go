// Package config loads and saves the TOML server configuration.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// WorldgenKind selects the chunk generator implementation.
type WorldgenKind string

const (
	WorldgenFlat     WorldgenKind = "flat"
	WorldgenTerrain  WorldgenKind = "terrain"
	WorldgenMountain WorldgenKind = "mountain"
	WorldgenCustom   WorldgenKind = "custom"
)

// CustomGeneration holds tuning parameters for the "custom" generator.
type CustomGeneration struct {
	XStep          float64 `toml:"x_step"`
	YStep          float64 `toml:"y_step"`
	Multiplication float64 `toml:"multiplication"`
}

// Logging gates individual slog.Debug call sites around hot paths.
type Logging struct {
	ChunkLoad                bool `toml:"chunk_load"`
	ChunkUnload              bool `toml:"chunk_unload"`
	ChunkGen                 bool `toml:"chunk_gen"`
	SlowTicks                bool `toml:"slow_ticks"`
	PacketTransfer           bool `toml:"packet_transfer"`
	PacketTransferExclusion  []string `toml:"packet_transfer_exclusion"`
}

// Config is the top-level server configuration, loaded from config.toml.
type Config struct {
	ListenAddress    string           `toml:"listen_address"`
	ListenPort       uint16           `toml:"listen_port"`
	ServerMOTD       string           `toml:"server_motd"`
	MaxPlayers       int              `toml:"max_players"`
	LevelName        string           `toml:"level_name"`
	ChunkDistance    int              `toml:"chunk_distance"`
	ChunkGenerator   WorldgenKind     `toml:"chunk_generator"`
	LightPropPerTick int              `toml:"light_prop_per_tick"`
	DefaultGamemode  uint8            `toml:"default_gamemode"`
	TPS              int              `toml:"tps"`
	WorldSeed        *uint64          `toml:"world_seed"`
	WorldBorder      int32            `toml:"world_border"`
	CustomGeneration CustomGeneration `toml:"custom_generation"`
	Logging          Logging          `toml:"logging"`

	// TranslationFile is carried for TOML round-trip compatibility with the
	// original implementation but never read: translation key maps are an
	// out-of-scope external collaborator.
	TranslationFile string `toml:"translation_file"`
}

// Default returns a Config with sensible defaults matching a fresh install.
func Default() *Config {
	return &Config{
		ListenAddress:    "0.0.0.0",
		ListenPort:       25565,
		ServerMOTD:       "A Minecraft Server",
		MaxPlayers:       20,
		LevelName:        "world",
		ChunkDistance:    8,
		ChunkGenerator:   WorldgenFlat,
		LightPropPerTick: 512,
		DefaultGamemode:  0,
		TPS:              20,
		WorldBorder:      29_999_984,
		CustomGeneration: CustomGeneration{XStep: 0.03, YStep: 0.03, Multiplication: 1},
		Logging: Logging{
			ChunkLoad:   true,
			ChunkUnload: true,
			SlowTicks:   true,
		},
		TranslationFile: "lang/en_US.lang",
	}
}

// Load reads path into cfg. A missing file is not an error — cfg keeps its
// current (caller-seeded) values, matching the teacher's LoadConfig shape.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
