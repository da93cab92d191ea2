package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the effective deskpet configuration.
type Config struct {
	LogLevel             string          `yaml:"log_level"`
	Display              DisplayConfig   `yaml:"display"`
	Physics              PhysicsConfig   `yaml:"physics"`
	Behavior             BehaviorConfig  `yaml:"behavior"`
	Window               WindowConfig    `yaml:"window"`
	CanvasFittingSamples int             `yaml:"canvas_fitting_samples"`
	InitialPosition      Position        `yaml:"initial_position"`
	Character            CharacterConfig `yaml:"character"`
	Hotkeys              HotkeysConfig   `yaml:"hotkeys"`
	// ContextMenu names the launcher used for the right-click menu: auto,
	// rofi, fuzzel, wofi, dmenu, or off.
	ContextMenu string `yaml:"context_menu"`
}

// DisplayConfig controls frame rate, scaling and which monitors are used.
type DisplayConfig struct {
	FPS           int     `yaml:"fps"`
	Scale         float64 `yaml:"scale"`
	MarginBottom  int     `yaml:"margin_bottom"`
	MultiMonitors bool    `yaml:"multi_monitors"`
}

// PhysicsConfig holds the plane parameters. Accelerations are in px/s²,
// speed limits in px/s.
type PhysicsConfig struct {
	GravityAcc        float64 `yaml:"gravity_acc"`
	AirFrictionAcc    float64 `yaml:"air_friction_acc"`
	StaticFrictionAcc float64 `yaml:"static_friction_acc"`
	SpeedLimitX       float64 `yaml:"speed_limit_x"`
	SpeedLimitY       float64 `yaml:"speed_limit_y"`
	Resilience        float64 `yaml:"resilience"`
	RepulsionConstant float64 `yaml:"repulsion_constant"`
	RepulsionExponent float64 `yaml:"repulsion_exponent"`
	QuantityProduct   float64 `yaml:"quantity_product"`
}

// BehaviorConfig switches the autonomous behaviour.
type BehaviorConfig struct {
	// AIActivation is how eagerly the pet picks new actions, 0 disables it.
	AIActivation    int  `yaml:"ai_activation"`
	AllowWalk       bool `yaml:"allow_walk"`
	AllowSit        bool `yaml:"allow_sit"`
	AllowInteract   bool `yaml:"allow_interact"`
	DoPeerRepulsion bool `yaml:"do_peer_repulsion"`
}

type WindowConfig struct {
	Topmost    bool `yaml:"topmost"`
	Toolwindow bool `yaml:"toolwindow"`
}

// Position is a point given as fractions of the primary monitor.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type CharacterConfig struct {
	// Manifest is the path to a clip manifest. Empty uses the builtin one.
	Manifest string `yaml:"manifest"`
}

// HotkeysConfig binds global key sequences (xgbutil syntax, for example
// "Mod4-Mod1-p") to pet commands. An empty sequence leaves the action unbound.
type HotkeysConfig struct {
	ToggleTransparent string `yaml:"toggle_transparent"`
	ToggleKeepAnim    string `yaml:"toggle_keep_anim"`
	NextStage         string `yaml:"next_stage"`
}

const (
	MaxFPS          = 240
	MaxScale        = 10.0
	MaxAIActivation = 9
)

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Display: DisplayConfig{
			FPS:           30,
			Scale:         1.0,
			MultiMonitors: true,
		},
		Physics: PhysicsConfig{
			GravityAcc:        800,
			AirFrictionAcc:    100,
			StaticFrictionAcc: 500,
			SpeedLimitX:       1000,
			SpeedLimitY:       1000,
			RepulsionConstant: 120000,
			RepulsionExponent: 1,
			QuantityProduct:   1,
		},
		Behavior: BehaviorConfig{
			AIActivation:    8,
			AllowWalk:       true,
			AllowSit:        true,
			AllowInteract:   true,
			DoPeerRepulsion: true,
		},
		Window: WindowConfig{
			Topmost:    true,
			Toolwindow: true,
		},
		CanvasFittingSamples: 16,
		InitialPosition:      Position{X: 0.2, Y: 0.2},
		Hotkeys: HotkeysConfig{
			ToggleTransparent: "Mod4-Mod1-p",
			ToggleKeepAnim:    "Mod4-Mod1-k",
		},
		ContextMenu: "auto",
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "deskpet", "config.yaml"), nil
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FrameInterval is the duration of one frame in seconds.
func (c *Config) FrameInterval() float64 {
	if c.Display.FPS <= 0 {
		return 1.0 / 30
	}
	return 1.0 / float64(c.Display.FPS)
}

// Clone returns a copy that shares nothing with c.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path after validating it.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
