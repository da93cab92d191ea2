package config

import (
	"errors"
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// BuildEffectiveConfig applies raw on top of the defaults. The result is not
// validated.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		level := strings.ToLower(strings.TrimSpace(*raw.LogLevel))
		if level == "warn" {
			level = "warning"
		}
		cfg.LogLevel = level
	}
	set(&cfg.CanvasFittingSamples, raw.CanvasFittingSamples)

	if d := raw.Display; d != nil {
		set(&cfg.Display.FPS, d.FPS)
		set(&cfg.Display.Scale, d.Scale)
		set(&cfg.Display.MarginBottom, d.MarginBottom)
		set(&cfg.Display.MultiMonitors, d.MultiMonitors)
	}
	if p := raw.Physics; p != nil {
		set(&cfg.Physics.GravityAcc, p.GravityAcc)
		set(&cfg.Physics.AirFrictionAcc, p.AirFrictionAcc)
		set(&cfg.Physics.StaticFrictionAcc, p.StaticFrictionAcc)
		set(&cfg.Physics.SpeedLimitX, p.SpeedLimitX)
		set(&cfg.Physics.SpeedLimitY, p.SpeedLimitY)
		set(&cfg.Physics.Resilience, p.Resilience)
		set(&cfg.Physics.RepulsionConstant, p.RepulsionConstant)
		set(&cfg.Physics.RepulsionExponent, p.RepulsionExponent)
		set(&cfg.Physics.QuantityProduct, p.QuantityProduct)
	}
	if b := raw.Behavior; b != nil {
		set(&cfg.Behavior.AIActivation, b.AIActivation)
		set(&cfg.Behavior.AllowWalk, b.AllowWalk)
		set(&cfg.Behavior.AllowSit, b.AllowSit)
		set(&cfg.Behavior.AllowInteract, b.AllowInteract)
		set(&cfg.Behavior.DoPeerRepulsion, b.DoPeerRepulsion)
	}
	if w := raw.Window; w != nil {
		set(&cfg.Window.Topmost, w.Topmost)
		set(&cfg.Window.Toolwindow, w.Toolwindow)
	}
	if p := raw.InitialPosition; p != nil {
		set(&cfg.InitialPosition.X, p.X)
		set(&cfg.InitialPosition.Y, p.Y)
	}
	if c := raw.Character; c != nil && c.Manifest != nil {
		manifest := strings.TrimSpace(*c.Manifest)
		if manifest != "" {
			expanded, err := expandHome(manifest)
			if err != nil {
				return nil, &ValidationError{Path: "character.manifest", Err: err}
			}
			manifest = expanded
		}
		cfg.Character.Manifest = manifest
	}
	if raw.ContextMenu != nil {
		cfg.ContextMenu = strings.ToLower(strings.TrimSpace(*raw.ContextMenu))
	}
	if h := raw.Hotkeys; h != nil {
		setKey(&cfg.Hotkeys.ToggleTransparent, h.ToggleTransparent)
		setKey(&cfg.Hotkeys.ToggleKeepAnim, h.ToggleKeepAnim)
		setKey(&cfg.Hotkeys.NextStage, h.NextStage)
	}

	return cfg, nil
}

// check is one validation rule. restore copies the checked value from a
// known-good config so that Sanitize can fall back per field.
type check struct {
	path    string
	ok      func(c *Config) bool
	msg     string
	restore func(dst, src *Config)
}

var checks = []check{
	{
		path:    "log_level",
		ok:      func(c *Config) bool { return oneOf(c.LogLevel, "debug", "info", "warning", "error") },
		msg:     "log_level must be one of: debug, info, warning, error",
		restore: func(dst, src *Config) { dst.LogLevel = src.LogLevel },
	},
	{
		path:    "display.fps",
		ok:      func(c *Config) bool { return c.Display.FPS >= 1 && c.Display.FPS <= MaxFPS },
		msg:     fmt.Sprintf("fps must be between 1 and %d", MaxFPS),
		restore: func(dst, src *Config) { dst.Display.FPS = src.Display.FPS },
	},
	{
		path:    "display.scale",
		ok:      func(c *Config) bool { return c.Display.Scale > 0 && c.Display.Scale <= MaxScale },
		msg:     fmt.Sprintf("scale must be > 0 and <= %g", MaxScale),
		restore: func(dst, src *Config) { dst.Display.Scale = src.Display.Scale },
	},
	{
		path:    "display.margin_bottom",
		ok:      func(c *Config) bool { return c.Display.MarginBottom >= 0 },
		msg:     "margin_bottom must be >= 0",
		restore: func(dst, src *Config) { dst.Display.MarginBottom = src.Display.MarginBottom },
	},
	{
		path:    "physics.gravity_acc",
		ok:      func(c *Config) bool { return c.Physics.GravityAcc >= 0 },
		msg:     "gravity_acc must be >= 0",
		restore: func(dst, src *Config) { dst.Physics.GravityAcc = src.Physics.GravityAcc },
	},
	{
		path:    "physics.air_friction_acc",
		ok:      func(c *Config) bool { return c.Physics.AirFrictionAcc >= 0 },
		msg:     "air_friction_acc must be >= 0",
		restore: func(dst, src *Config) { dst.Physics.AirFrictionAcc = src.Physics.AirFrictionAcc },
	},
	{
		path:    "physics.static_friction_acc",
		ok:      func(c *Config) bool { return c.Physics.StaticFrictionAcc >= 0 },
		msg:     "static_friction_acc must be >= 0",
		restore: func(dst, src *Config) { dst.Physics.StaticFrictionAcc = src.Physics.StaticFrictionAcc },
	},
	{
		path:    "physics.speed_limit_x",
		ok:      func(c *Config) bool { return c.Physics.SpeedLimitX >= 0 },
		msg:     "speed_limit_x must be >= 0 (0 means unlimited)",
		restore: func(dst, src *Config) { dst.Physics.SpeedLimitX = src.Physics.SpeedLimitX },
	},
	{
		path:    "physics.speed_limit_y",
		ok:      func(c *Config) bool { return c.Physics.SpeedLimitY >= 0 },
		msg:     "speed_limit_y must be >= 0 (0 means unlimited)",
		restore: func(dst, src *Config) { dst.Physics.SpeedLimitY = src.Physics.SpeedLimitY },
	},
	{
		path:    "physics.resilience",
		ok:      func(c *Config) bool { return c.Physics.Resilience >= 0 && c.Physics.Resilience <= 1 },
		msg:     "resilience must be between 0 and 1",
		restore: func(dst, src *Config) { dst.Physics.Resilience = src.Physics.Resilience },
	},
	{
		path:    "physics.repulsion_constant",
		ok:      func(c *Config) bool { return c.Physics.RepulsionConstant >= 0 },
		msg:     "repulsion_constant must be >= 0",
		restore: func(dst, src *Config) { dst.Physics.RepulsionConstant = src.Physics.RepulsionConstant },
	},
	{
		path:    "physics.repulsion_exponent",
		ok:      func(c *Config) bool { return c.Physics.RepulsionExponent > 0 },
		msg:     "repulsion_exponent must be > 0",
		restore: func(dst, src *Config) { dst.Physics.RepulsionExponent = src.Physics.RepulsionExponent },
	},
	{
		path:    "physics.quantity_product",
		ok:      func(c *Config) bool { return c.Physics.QuantityProduct > 0 },
		msg:     "quantity_product must be > 0",
		restore: func(dst, src *Config) { dst.Physics.QuantityProduct = src.Physics.QuantityProduct },
	},
	{
		path:    "behavior.ai_activation",
		ok:      func(c *Config) bool { return c.Behavior.AIActivation >= 0 && c.Behavior.AIActivation <= MaxAIActivation },
		msg:     fmt.Sprintf("ai_activation must be between 0 and %d", MaxAIActivation),
		restore: func(dst, src *Config) { dst.Behavior.AIActivation = src.Behavior.AIActivation },
	},
	{
		path:    "context_menu",
		ok:      func(c *Config) bool { return oneOf(c.ContextMenu, "auto", "rofi", "fuzzel", "wofi", "dmenu", "off") },
		msg:     "context_menu must be one of: auto, rofi, fuzzel, wofi, dmenu, off",
		restore: func(dst, src *Config) { dst.ContextMenu = src.ContextMenu },
	},
	{
		path:    "canvas_fitting_samples",
		ok:      func(c *Config) bool { return c.CanvasFittingSamples >= 1 },
		msg:     "canvas_fitting_samples must be >= 1",
		restore: func(dst, src *Config) { dst.CanvasFittingSamples = src.CanvasFittingSamples },
	},
	{
		path:    "initial_position.x",
		ok:      func(c *Config) bool { return c.InitialPosition.X >= 0 && c.InitialPosition.X <= 1 },
		msg:     "initial_position.x must be between 0 and 1",
		restore: func(dst, src *Config) { dst.InitialPosition.X = src.InitialPosition.X },
	},
	{
		path:    "initial_position.y",
		ok:      func(c *Config) bool { return c.InitialPosition.Y >= 0 && c.InitialPosition.Y <= 1 },
		msg:     "initial_position.y must be between 0 and 1",
		restore: func(dst, src *Config) { dst.InitialPosition.Y = src.InitialPosition.Y },
	},
}

// Validate performs strict validation of the effective configuration and
// reports the first invalid field.
func (c *Config) Validate() error {
	for _, chk := range checks {
		if !chk.ok(c) {
			return &ValidationError{Path: chk.path, Err: errors.New(chk.msg)}
		}
	}
	return nil
}

// Sanitize replaces every invalid field with the value from prev, or from the
// defaults when prev is nil or itself invalid for that field. It returns one
// warning per replaced field.
func (c *Config) Sanitize(prev *Config) []string {
	defaults := DefaultConfig()
	if prev == nil {
		prev = defaults
	}
	var warnings []string
	for _, chk := range checks {
		if chk.ok(c) {
			continue
		}
		fallback := prev
		if !chk.ok(prev) {
			fallback = defaults
		}
		chk.restore(c, fallback)
		warnings = append(warnings, fmt.Sprintf("%s: %s; keeping previous value", chk.path, chk.msg))
	}
	return warnings
}

func setKey(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
