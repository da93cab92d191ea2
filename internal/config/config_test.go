package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Display.FPS != 30 || cfg.CanvasFittingSamples != 16 || cfg.Behavior.AIActivation != 8 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Physics.GravityAcc != 800 {
		t.Fatalf("expected default gravity, got %v", res.Config.Physics.GravityAcc)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *res.Config != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", res.Config)
	}
}

func TestLoadFromPath_PartialSectionKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "physics:\n  gravity_acc: 1200\ndisplay:\n  fps: 60\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Physics.GravityAcc != 1200 {
		t.Fatalf("gravity_acc = %v, want 1200", cfg.Physics.GravityAcc)
	}
	if cfg.Physics.AirFrictionAcc != 100 {
		t.Fatalf("air_friction_acc = %v, want default 100", cfg.Physics.AirFrictionAcc)
	}
	if cfg.Display.FPS != 60 || cfg.Display.Scale != 1.0 || !cfg.Display.MultiMonitors {
		t.Fatalf("unexpected display: %+v", cfg.Display)
	}
}

func TestLoadFromPath_HotkeysUnbindAndTrim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "hotkeys:\n  toggle_keep_anim: \"\"\n  next_stage: \" Mod4-Mod1-s \"\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := HotkeysConfig{ToggleTransparent: "Mod4-Mod1-p", NextStage: "Mod4-Mod1-s"}
	if res.Config.Hotkeys != want {
		t.Fatalf("hotkeys = %+v, want %+v", res.Config.Hotkeys, want)
	}
}

func TestLoadFromPath_UnknownKeyIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "physics:\n  gravity: 1200\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected strict decoding to reject unknown key")
	}
}

func TestLoadFromPath_LogLevelAlias(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: WARN\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "warning" {
		t.Fatalf("log_level = %q, want warning", res.Config.LogLevel)
	}
}

func TestLoadFromPath_IncludesAndOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conf.d", "10-physics.yaml"), "physics:\n  gravity_acc: 500\n  resilience: 0.2\n")
	writeFile(t, filepath.Join(dir, "conf.d", "20-behavior.yml"), "behavior:\n  allow_walk: false\n")
	writeFile(t, filepath.Join(dir, "conf.d", "README.txt"), "ignored")
	main := filepath.Join(dir, "config.yaml")
	writeFile(t, main, "include: conf.d\nphysics:\n  gravity_acc: 900\n")

	res, err := LoadFromPath(main)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Physics.GravityAcc != 900 {
		t.Fatalf("including file should win, gravity_acc = %v", cfg.Physics.GravityAcc)
	}
	if cfg.Physics.Resilience != 0.2 {
		t.Fatalf("resilience = %v, want 0.2 from include", cfg.Physics.Resilience)
	}
	if cfg.Behavior.AllowWalk {
		t.Fatalf("allow_walk should be false from include")
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
	if !strings.HasSuffix(res.Files[len(res.Files)-1], "config.yaml") {
		t.Fatalf("main file should load last, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_MissingInclude(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), `include "missing.yaml"`) {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_ManifestRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "character:\n  manifest: pets/cat.yaml\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	canonDir, _ := canonicalPath(dir)
	want := filepath.Join(canonDir, "pets", "cat.yaml")
	if res.Config.Character.Manifest != want {
		t.Fatalf("manifest = %q, want %q", res.Config.Character.Manifest, want)
	}
}

func TestLoadResultValidate_PointsAtSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "display:\n  fps: 30\n  scale: -2\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	err = res.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "display.scale" {
		t.Fatalf("path = %q, want display.scale", verr.Path)
	}
	if verr.Source.Line != 3 {
		t.Fatalf("source line = %d, want 3", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), "config.yaml:3:") {
		t.Fatalf("error should carry file position, got %q", err.Error())
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		path   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"zero fps", func(c *Config) { c.Display.FPS = 0 }, "display.fps"},
		{"huge fps", func(c *Config) { c.Display.FPS = 1000 }, "display.fps"},
		{"zero scale", func(c *Config) { c.Display.Scale = 0 }, "display.scale"},
		{"negative margin", func(c *Config) { c.Display.MarginBottom = -1 }, "display.margin_bottom"},
		{"negative gravity", func(c *Config) { c.Physics.GravityAcc = -1 }, "physics.gravity_acc"},
		{"negative speed limit", func(c *Config) { c.Physics.SpeedLimitY = -5 }, "physics.speed_limit_y"},
		{"resilience above one", func(c *Config) { c.Physics.Resilience = 1.5 }, "physics.resilience"},
		{"zero exponent", func(c *Config) { c.Physics.RepulsionExponent = 0 }, "physics.repulsion_exponent"},
		{"ai activation", func(c *Config) { c.Behavior.AIActivation = 10 }, "behavior.ai_activation"},
		{"samples", func(c *Config) { c.CanvasFittingSamples = 0 }, "canvas_fitting_samples"},
		{"menu launcher", func(c *Config) { c.ContextMenu = "zenity" }, "context_menu"},
		{"initial x", func(c *Config) { c.InitialPosition.X = 2 }, "initial_position.x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestSanitize_FallsBackToPrevious(t *testing.T) {
	prev := DefaultConfig()
	prev.Physics.GravityAcc = 1500
	prev.Display.FPS = 60

	cfg := DefaultConfig()
	cfg.Physics.GravityAcc = -10
	cfg.Display.FPS = 0
	cfg.Physics.AirFrictionAcc = 42

	warnings := cfg.Sanitize(prev)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if cfg.Physics.GravityAcc != 1500 || cfg.Display.FPS != 60 {
		t.Fatalf("invalid fields should come from prev, got gravity=%v fps=%d", cfg.Physics.GravityAcc, cfg.Display.FPS)
	}
	if cfg.Physics.AirFrictionAcc != 42 {
		t.Fatalf("valid fields must be kept, got %v", cfg.Physics.AirFrictionAcc)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sanitized config should validate: %v", err)
	}
}

func TestSanitize_NilPrevUsesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics.Resilience = 3

	warnings := cfg.Sanitize(nil)
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "physics.resilience") {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if cfg.Physics.Resilience != 0 {
		t.Fatalf("resilience = %v, want default 0", cfg.Physics.Resilience)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "behavior:\n  ai_activation: 3\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "behavior.ai_activation")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 3 {
		t.Fatalf("value = %v, want 3", val)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected source %+v", src)
	}

	val, src, err = Explain(res, "physics.gravity_acc")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 800.0 || src.Kind != SourceDefault {
		t.Fatalf("expected default gravity, got %v from %+v", val, src)
	}

	if _, _, err := Explain(res, "physics.nope"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Physics.GravityAcc = 640
	cfg.Window.Toolwindow = false

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *res.Config != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", res.Config, cfg)
	}
}

func TestSaveTo_RefusesInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Display.FPS = -1
	if err := cfg.SaveTo(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("invalid config must not be written")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if path != filepath.Join(home, ".config", "deskpet", "config.yaml") {
		t.Fatalf("unexpected path %q", path)
	}
}
