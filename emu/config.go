package emu

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"famicore/emu/log"
)

// Config gathers everything tunable by the user.
type Config struct {
	Input     InputConfig     `toml:"input"`
	Video     VideoConfig     `toml:"video"`
	Audio     AudioConfig     `toml:"audio"`
	Emulation EmulationConfig `toml:"emulation"`

	TraceOut io.WriteCloser `toml:"-"`
}

// InputConfig maps the 8 buttons of each controller to SDL scancode names,
// in A, B, Select, Start, Up, Down, Left, Right order.
type InputConfig struct {
	Paddle1 [8]string `toml:"paddle1"`
	Paddle2 [8]string `toml:"paddle2"`
}

type VideoConfig struct {
	DisableVSync bool  `toml:"disable_vsync"`
	Monitor      int32 `toml:"monitor"`
	Scale        int   `toml:"scale"`
}

func (vcfg *VideoConfig) Check() {
	if vcfg.Scale < 1 || vcfg.Scale > 8 {
		log.ModEmu.Warnf("invalid scale factor %d, fallback to 2", vcfg.Scale)
		vcfg.Scale = 2
	}
}

type AudioConfig struct {
	DisableAudio bool `toml:"disable_audio"`
}

type EmulationConfig struct {
	// Extra CPU cycles charged when a DMC sample fetch lands inside an
	// OAM DMA transfer. Hardware measurements put it between 1 and 3.
	DMCCollisionPenalty int `toml:"dmc_collision_penalty"`
}

const DefaultFileMode = os.FileMode(0755)

// ConfigDir returns the famicore configuration directory, creating it on
// first use.
var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "famicore")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

// SavesDir returns the directory holding save states and battery RAM
// files.
var SavesDir = sync.OnceValue(func() string {
	dir := filepath.Join(ConfigDir(), "saves")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

var defaultConfig = Config{
	Input: InputConfig{
		Paddle1: [8]string{"X", "Z", "Right Shift", "Return", "Up", "Down", "Left", "Right"},
		Paddle2: [8]string{"Q", "W", "E", "R", "I", "K", "J", "L"},
	},
	Video: VideoConfig{
		DisableVSync: false,
		Monitor:      0,
		Scale:        2,
	},
	Emulation: EmulationConfig{
		DMCCollisionPenalty: 2,
	},
}

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the famicore config
// directory, or provides a default one.
func LoadConfigOrDefault() Config {
	var cfg Config
	_, err := toml.DecodeFile(filepath.Join(ConfigDir(), cfgFilename), &cfg)
	if err != nil {
		return defaultConfig
	}
	cfg.Video.Check()
	return cfg
}

// SaveConfig into the famicore config directory.
func SaveConfig(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ConfigDir(), cfgFilename), buf, 0644)
}
