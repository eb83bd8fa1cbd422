package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the host settings around the renderer.
type Config struct {
	FontDirs       []string
	DefaultFace    string
	CheckInterval  time.Duration
	FrameRate      int
	LogLevel       string
	SnapshotPath   string
	StateDir       string
	MaxTextureSize int
}

const (
	defaultConfigPath     = "~/.config/glyphcast/config.toml"
	defaultStateDir       = "~/.local/state/glyphcast"
	defaultSnapshotName   = "snapshot.png"
	defaultCheckInterval  = time.Second
	defaultFrameRate      = 30
	defaultLogLevel       = "info"
	defaultMaxTextureSize = 16384
)

// Default returns the configuration used when no file exists.
func Default() Config {
	stateDir := mustExpand(defaultStateDir)
	return Config{
		CheckInterval:  defaultCheckInterval,
		FrameRate:      defaultFrameRate,
		LogLevel:       defaultLogLevel,
		StateDir:       stateDir,
		SnapshotPath:   filepath.Join(stateDir, defaultSnapshotName),
		MaxTextureSize: defaultMaxTextureSize,
	}
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		FontDirs       []string `toml:"font_dirs"`
		DefaultFace    string   `toml:"default_face"`
		CheckInterval  float64  `toml:"check_interval"`
		FrameRate      int      `toml:"frame_rate"`
		LogLevel       string   `toml:"log_level"`
		SnapshotPath   string   `toml:"snapshot_path"`
		StateDir       string   `toml:"state_dir"`
		MaxTextureSize int      `toml:"max_texture_size"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	for _, dir := range raw.FontDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		expanded, err := expandPath(dir)
		if err != nil {
			return Config{}, fmt.Errorf("font_dirs: %w", err)
		}
		cfg.FontDirs = append(cfg.FontDirs, expanded)
	}
	cfg.DefaultFace = strings.TrimSpace(raw.DefaultFace)

	if raw.CheckInterval < 0 {
		return Config{}, fmt.Errorf("check_interval must not be negative: %g", raw.CheckInterval)
	}
	if raw.CheckInterval > 0 {
		cfg.CheckInterval = time.Duration(raw.CheckInterval * float64(time.Second))
	}
	if raw.FrameRate < 0 {
		return Config{}, fmt.Errorf("frame_rate must not be negative: %d", raw.FrameRate)
	}
	if raw.FrameRate > 0 {
		cfg.FrameRate = raw.FrameRate
	}
	if level := strings.ToLower(strings.TrimSpace(raw.LogLevel)); level != "" {
		cfg.LogLevel = level
	}
	if raw.MaxTextureSize != 0 {
		cfg.MaxTextureSize = raw.MaxTextureSize
	}

	if dir := strings.TrimSpace(raw.StateDir); dir != "" {
		cfg.StateDir = mustExpand(dir)
		cfg.SnapshotPath = filepath.Join(cfg.StateDir, defaultSnapshotName)
	}
	if snap := strings.TrimSpace(raw.SnapshotPath); snap != "" {
		cfg.SnapshotPath = mustExpand(snap)
	}

	return cfg, nil
}

// FrameInterval is the duration of one UI frame.
func (c Config) FrameInterval() time.Duration {
	rate := c.FrameRate
	if rate <= 0 {
		rate = defaultFrameRate
	}
	return time.Second / time.Duration(rate)
}

// LogPath returns the log file used while the watch UI owns the terminal.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.StateDir) == "" {
		return mustExpand(defaultStateDir + "/glyphcast.log")
	}
	return filepath.Join(c.StateDir, "glyphcast.log")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
