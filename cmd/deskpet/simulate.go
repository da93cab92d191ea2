package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/1broseidon/deskpet/internal/anim"
	"github.com/1broseidon/deskpet/internal/behavior"
	"github.com/1broseidon/deskpet/internal/config"
	"github.com/1broseidon/deskpet/internal/pet"
	"github.com/1broseidon/deskpet/internal/platform"
)

var (
	simSeconds float64
	simWidth   int
	simHeight  int
	simLedge   int
	simVerbose bool
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "run a pet on a virtual desktop and plot its height above the floor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.OutOrStdout())
		},
	}
	cmd.Flags().Float64Var(&simSeconds, "time", 5, "simulated seconds")
	cmd.Flags().IntVar(&simWidth, "screen-width", 1920, "virtual screen width")
	cmd.Flags().IntVar(&simHeight, "screen-height", 1080, "virtual screen height")
	cmd.Flags().IntVar(&simLedge, "ledge", 0, "top edge of a full-width window to land on (0 for none)")
	cmd.Flags().BoolVarP(&simVerbose, "verbose", "v", false, "log pet events")
	return cmd
}

func runSimulation(out io.Writer) error {
	cfg, err := loadRuntimeConfig(nil, nil)
	if err != nil {
		return err
	}
	manifest, err := loadManifest(cfg)
	if err != nil {
		return err
	}

	var logger *slog.Logger
	if simVerbose {
		logger = newLogger(os.Stderr, cfg.SlogLevel())
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	screen := platform.Display{ID: 0, Name: "virtual", Bounds: platform.Rect{Width: simWidth, Height: simHeight}}
	desk := platform.NewMemory(platform.Window{ID: 1, Title: "deskpet"}, screen)
	if simLedge > 0 {
		desk.PushBottom(platform.Window{
			ID:     2,
			Title:  "ledge",
			Bounds: platform.Rect{X: 0, Y: simLedge, Width: simWidth, Height: simHeight - simLedge},
		})
	}

	p, err := newSimulatedPet(cfg, manifest, desk, logger)
	if err != nil {
		return err
	}

	dt := cfg.FrameInterval()
	frames := int(simSeconds / dt)
	if frames < 2 {
		return fmt.Errorf("--time must cover at least two frames")
	}
	floor := float64(simHeight - cfg.Display.MarginBottom)
	heights := make([]float64, 0, frames)
	landings := 0
	wasDropping := false
	for range frames {
		p.Tick(dt)
		plane := p.Plane()
		heights = append(heights, floor-(plane.Y()+plane.H()))
		if wasDropping && !plane.Dropping() {
			landings++
		}
		wasDropping = plane.Dropping()
	}

	graph := asciigraph.Plot(heights,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("height above floor (px), %d frames at %d fps", frames, cfg.Display.FPS)),
	)
	fmt.Fprintln(out, graph)
	fmt.Fprintln(out)

	st := p.Status()
	fmt.Fprintf(out, "final position: %d,%d\n", st.Rect.X, st.Rect.Y)
	fmt.Fprintf(out, "landings:       %d\n", landings)
	fmt.Fprintf(out, "grounded:       %v\n", st.Grounded)
	fmt.Fprintf(out, "animation:      %s\n", st.Animation)
	return nil
}

func newSimulatedPet(cfg *config.Config, manifest *anim.Manifest, desk *platform.Memory, logger *slog.Logger) (*pet.Pet, error) {
	rng := newRand()
	b, err := behavior.New(pet.BehaviorConfig(cfg), manifest, rng)
	if err != nil {
		return nil, err
	}
	player := manifest.Player()
	return pet.New(pet.Options{
		Config:   cfg,
		Accessor: desk,
		Behavior: b,
		Player:   player,
		Canvas: func(stage anim.Stage) (int, int, error) {
			return manifest.Canvas(stage, cfg.CanvasFittingSamples)
		},
		HitTester: player,
		Logger:    logger,
		Rand:      rng,
	})
}
