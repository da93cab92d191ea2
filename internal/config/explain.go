package config

import (
	"fmt"
	"sort"
	"strings"
)

var explainPaths = map[string]func(c *Config) any{
	"log_level":                   func(c *Config) any { return c.LogLevel },
	"display":                     func(c *Config) any { return c.Display },
	"display.fps":                 func(c *Config) any { return c.Display.FPS },
	"display.scale":               func(c *Config) any { return c.Display.Scale },
	"display.margin_bottom":       func(c *Config) any { return c.Display.MarginBottom },
	"display.multi_monitors":      func(c *Config) any { return c.Display.MultiMonitors },
	"physics":                     func(c *Config) any { return c.Physics },
	"physics.gravity_acc":         func(c *Config) any { return c.Physics.GravityAcc },
	"physics.air_friction_acc":    func(c *Config) any { return c.Physics.AirFrictionAcc },
	"physics.static_friction_acc": func(c *Config) any { return c.Physics.StaticFrictionAcc },
	"physics.speed_limit_x":       func(c *Config) any { return c.Physics.SpeedLimitX },
	"physics.speed_limit_y":       func(c *Config) any { return c.Physics.SpeedLimitY },
	"physics.resilience":          func(c *Config) any { return c.Physics.Resilience },
	"physics.repulsion_constant":  func(c *Config) any { return c.Physics.RepulsionConstant },
	"physics.repulsion_exponent":  func(c *Config) any { return c.Physics.RepulsionExponent },
	"physics.quantity_product":    func(c *Config) any { return c.Physics.QuantityProduct },
	"behavior":                    func(c *Config) any { return c.Behavior },
	"behavior.ai_activation":      func(c *Config) any { return c.Behavior.AIActivation },
	"behavior.allow_walk":         func(c *Config) any { return c.Behavior.AllowWalk },
	"behavior.allow_sit":          func(c *Config) any { return c.Behavior.AllowSit },
	"behavior.allow_interact":     func(c *Config) any { return c.Behavior.AllowInteract },
	"behavior.do_peer_repulsion":  func(c *Config) any { return c.Behavior.DoPeerRepulsion },
	"window":                      func(c *Config) any { return c.Window },
	"window.topmost":              func(c *Config) any { return c.Window.Topmost },
	"window.toolwindow":           func(c *Config) any { return c.Window.Toolwindow },
	"canvas_fitting_samples":      func(c *Config) any { return c.CanvasFittingSamples },
	"initial_position":            func(c *Config) any { return c.InitialPosition },
	"initial_position.x":          func(c *Config) any { return c.InitialPosition.X },
	"initial_position.y":          func(c *Config) any { return c.InitialPosition.Y },
	"character":                   func(c *Config) any { return c.Character },
	"character.manifest":          func(c *Config) any { return c.Character.Manifest },
	"context_menu":                func(c *Config) any { return c.ContextMenu },
	"hotkeys":                     func(c *Config) any { return c.Hotkeys },
	"hotkeys.toggle_transparent":  func(c *Config) any { return c.Hotkeys.ToggleTransparent },
	"hotkeys.toggle_keep_anim":    func(c *Config) any { return c.Hotkeys.ToggleKeepAnim },
	"hotkeys.next_stage":          func(c *Config) any { return c.Hotkeys.NextStage },
}

// ExplainPaths lists every path Explain accepts, sorted.
func ExplainPaths() []string {
	out := make([]string, 0, len(explainPaths))
	for p := range explainPaths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Explain returns the effective value at a dotted YAML path, for example
// "physics.gravity_acc", and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	lookup, ok := explainPaths[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown config path %q", path)
	}
	value := lookup(res.Config)

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}
