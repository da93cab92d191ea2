package main

import (
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskpet/internal/anim"
	"github.com/1broseidon/deskpet/internal/config"
	"github.com/1broseidon/deskpet/internal/ipc"
	"github.com/1broseidon/deskpet/internal/pet"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "start a pet on the desktop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPet(cmd.Context())
		},
	}
}

// loadRuntimeConfig loads and sanitises the configuration for a running pet.
// Invalid values fall back to prev, or to the defaults on first load.
func loadRuntimeConfig(prev *config.Config, logger *slog.Logger) (*config.Config, error) {
	res, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	for _, w := range cfg.Sanitize(prev) {
		if logger != nil {
			logger.Warn("config value rejected", "detail", w)
		}
	}
	return cfg, nil
}

func loadManifest(cfg *config.Config) (*anim.Manifest, error) {
	if cfg.Character.Manifest == "" {
		return anim.BuiltinManifest(), nil
	}
	return anim.LoadManifest(cfg.Character.Manifest)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// petHandler serves a pet over its control socket.
type petHandler struct {
	pet    *pet.Pet
	reload func() error
}

var _ ipc.Handler = (*petHandler)(nil)

func (h *petHandler) Status() ipc.StatusData {
	s := h.pet.Status()
	stages := make([]string, 0, len(s.Stages))
	for _, st := range s.Stages {
		stages = append(stages, string(st))
	}
	return ipc.StatusData{
		Ordinal:     s.Ordinal,
		PID:         os.Getpid(),
		WindowID:    uint32(s.Window),
		X:           float64(s.Rect.X),
		Y:           float64(s.Rect.Y),
		Width:       float64(s.Rect.Width),
		Height:      float64(s.Rect.Height),
		VelocityX:   s.VelocityX,
		VelocityY:   s.VelocityY,
		Animation:   s.Animation,
		Stage:       string(s.Stage),
		Stages:      stages,
		KeepAnim:    s.KeepAnim,
		Transparent: s.Transparent,
		Dragging:    s.Dragging,
		Dropping:    s.Dropping,
		Grounded:    s.Grounded,
		FPS:         s.FPS,
	}
}

func (h *petHandler) SetKeepAnim(on bool) error { return h.pet.SetKeepAnim(on) }
func (h *petHandler) SetTransparent(on bool) error { return h.pet.SetTransparent(on) }
func (h *petHandler) ChangeStage(stage string) error { return h.pet.ChangeStage(stage) }
func (h *petHandler) Reload() error { return h.reload() }

func (h *petHandler) Quit() error {
	h.pet.Quit()
	return nil
}
