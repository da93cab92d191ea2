package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList accepts a single path or a list of paths:
//
//	include: "~/.config/deskpet/physics.yaml"
//
//	include:
//	  - "physics.yaml"
//	  - "conf.d"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = IncludeList{value.Value}
	case yaml.SequenceNode:
		out := make(IncludeList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
	return nil
}

// RawConfig mirrors Config with every field optional so that files can be
// layered on top of each other and on top of the defaults.
type RawConfig struct {
	Include              IncludeList   `yaml:"include"`
	LogLevel             *string       `yaml:"log_level"`
	Display              *RawDisplay   `yaml:"display"`
	Physics              *RawPhysics   `yaml:"physics"`
	Behavior             *RawBehavior  `yaml:"behavior"`
	Window               *RawWindow    `yaml:"window"`
	CanvasFittingSamples *int          `yaml:"canvas_fitting_samples"`
	InitialPosition      *RawPosition  `yaml:"initial_position"`
	Character            *RawCharacter `yaml:"character"`
	Hotkeys              *RawHotkeys   `yaml:"hotkeys"`
	ContextMenu          *string       `yaml:"context_menu"`
}

type RawDisplay struct {
	FPS           *int     `yaml:"fps"`
	Scale         *float64 `yaml:"scale"`
	MarginBottom  *int     `yaml:"margin_bottom"`
	MultiMonitors *bool    `yaml:"multi_monitors"`
}

type RawPhysics struct {
	GravityAcc        *float64 `yaml:"gravity_acc"`
	AirFrictionAcc    *float64 `yaml:"air_friction_acc"`
	StaticFrictionAcc *float64 `yaml:"static_friction_acc"`
	SpeedLimitX       *float64 `yaml:"speed_limit_x"`
	SpeedLimitY       *float64 `yaml:"speed_limit_y"`
	Resilience        *float64 `yaml:"resilience"`
	RepulsionConstant *float64 `yaml:"repulsion_constant"`
	RepulsionExponent *float64 `yaml:"repulsion_exponent"`
	QuantityProduct   *float64 `yaml:"quantity_product"`
}

type RawBehavior struct {
	AIActivation    *int  `yaml:"ai_activation"`
	AllowWalk       *bool `yaml:"allow_walk"`
	AllowSit        *bool `yaml:"allow_sit"`
	AllowInteract   *bool `yaml:"allow_interact"`
	DoPeerRepulsion *bool `yaml:"do_peer_repulsion"`
}

type RawWindow struct {
	Topmost    *bool `yaml:"topmost"`
	Toolwindow *bool `yaml:"toolwindow"`
}

type RawPosition struct {
	X *float64 `yaml:"x"`
	Y *float64 `yaml:"y"`
}

type RawCharacter struct {
	Manifest *string `yaml:"manifest"`
}

type RawHotkeys struct {
	ToggleTransparent *string `yaml:"toggle_transparent"`
	ToggleKeepAnim    *string `yaml:"toggle_keep_anim"`
	NextStage         *string `yaml:"next_stage"`
}

// pick returns overlay when it is set, base otherwise.
func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

// merge layers overlay on top of r. Include lists are not merged; they are
// resolved by the loader before merging.
func (r RawConfig) merge(overlay RawConfig) RawConfig {
	out := r
	out.Include = nil
	out.LogLevel = pick(r.LogLevel, overlay.LogLevel)
	out.CanvasFittingSamples = pick(r.CanvasFittingSamples, overlay.CanvasFittingSamples)
	out.ContextMenu = pick(r.ContextMenu, overlay.ContextMenu)

	if overlay.Display != nil {
		d := RawDisplay{}
		if r.Display != nil {
			d = *r.Display
		}
		d.FPS = pick(d.FPS, overlay.Display.FPS)
		d.Scale = pick(d.Scale, overlay.Display.Scale)
		d.MarginBottom = pick(d.MarginBottom, overlay.Display.MarginBottom)
		d.MultiMonitors = pick(d.MultiMonitors, overlay.Display.MultiMonitors)
		out.Display = &d
	}

	if overlay.Physics != nil {
		p := RawPhysics{}
		if r.Physics != nil {
			p = *r.Physics
		}
		o := overlay.Physics
		p.GravityAcc = pick(p.GravityAcc, o.GravityAcc)
		p.AirFrictionAcc = pick(p.AirFrictionAcc, o.AirFrictionAcc)
		p.StaticFrictionAcc = pick(p.StaticFrictionAcc, o.StaticFrictionAcc)
		p.SpeedLimitX = pick(p.SpeedLimitX, o.SpeedLimitX)
		p.SpeedLimitY = pick(p.SpeedLimitY, o.SpeedLimitY)
		p.Resilience = pick(p.Resilience, o.Resilience)
		p.RepulsionConstant = pick(p.RepulsionConstant, o.RepulsionConstant)
		p.RepulsionExponent = pick(p.RepulsionExponent, o.RepulsionExponent)
		p.QuantityProduct = pick(p.QuantityProduct, o.QuantityProduct)
		out.Physics = &p
	}

	if overlay.Behavior != nil {
		b := RawBehavior{}
		if r.Behavior != nil {
			b = *r.Behavior
		}
		o := overlay.Behavior
		b.AIActivation = pick(b.AIActivation, o.AIActivation)
		b.AllowWalk = pick(b.AllowWalk, o.AllowWalk)
		b.AllowSit = pick(b.AllowSit, o.AllowSit)
		b.AllowInteract = pick(b.AllowInteract, o.AllowInteract)
		b.DoPeerRepulsion = pick(b.DoPeerRepulsion, o.DoPeerRepulsion)
		out.Behavior = &b
	}

	if overlay.Window != nil {
		w := RawWindow{}
		if r.Window != nil {
			w = *r.Window
		}
		w.Topmost = pick(w.Topmost, overlay.Window.Topmost)
		w.Toolwindow = pick(w.Toolwindow, overlay.Window.Toolwindow)
		out.Window = &w
	}

	if overlay.InitialPosition != nil {
		p := RawPosition{}
		if r.InitialPosition != nil {
			p = *r.InitialPosition
		}
		p.X = pick(p.X, overlay.InitialPosition.X)
		p.Y = pick(p.Y, overlay.InitialPosition.Y)
		out.InitialPosition = &p
	}

	if overlay.Character != nil {
		c := RawCharacter{}
		if r.Character != nil {
			c = *r.Character
		}
		c.Manifest = pick(c.Manifest, overlay.Character.Manifest)
		out.Character = &c
	}

	if overlay.Hotkeys != nil {
		h := RawHotkeys{}
		if r.Hotkeys != nil {
			h = *r.Hotkeys
		}
		o := overlay.Hotkeys
		h.ToggleTransparent = pick(h.ToggleTransparent, o.ToggleTransparent)
		h.ToggleKeepAnim = pick(h.ToggleKeepAnim, o.ToggleKeepAnim)
		h.NextStage = pick(h.NextStage, o.NextStage)
		out.Hotkeys = &h
	}

	return out
}
