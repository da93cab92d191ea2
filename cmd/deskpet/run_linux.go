//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/deskpet/internal/anim"
	"github.com/1broseidon/deskpet/internal/behavior"
	"github.com/1broseidon/deskpet/internal/config"
	"github.com/1broseidon/deskpet/internal/daemon"
	"github.com/1broseidon/deskpet/internal/hotkeys"
	"github.com/1broseidon/deskpet/internal/ipc"
	"github.com/1broseidon/deskpet/internal/peers"
	"github.com/1broseidon/deskpet/internal/pet"
	"github.com/1broseidon/deskpet/internal/platform"
	"github.com/1broseidon/deskpet/internal/runtimepath"
	"github.com/1broseidon/deskpet/internal/x11"
)

func runPet(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := loadRuntimeConfig(nil, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := newLogger(os.Stderr, level)
	logger.Info("configuration loaded", "fps", cfg.Display.FPS, "scale", cfg.Display.Scale)

	manifest, err := loadManifest(cfg)
	if err != nil {
		return err
	}
	rng := newRand()
	b, err := behavior.New(pet.BehaviorConfig(cfg), manifest, rng)
	if err != nil {
		return err
	}
	canvas := func(stage anim.Stage) (int, int, error) {
		return manifest.Canvas(stage, cfg.CanvasFittingSamples)
	}
	w, h, err := canvas(b.CurrentStage())
	if err != nil {
		return err
	}

	acc, err := platform.OpenLinuxAccessor("deskpet", int(float64(w)*cfg.Display.Scale), int(float64(h)*cfg.Display.Scale))
	if err != nil {
		return err
	}
	defer acc.Close()

	registry, err := peers.OpenRegistry()
	if err != nil {
		return err
	}
	ordinal, err := registry.Register(acc.OwnWindow(), os.Getpid())
	if err != nil {
		return fmt.Errorf("failed to join peer registry: %w", err)
	}
	defer func() {
		if err := registry.Unregister(acc.OwnWindow()); err != nil {
			logger.Warn("failed to leave peer registry", "error", err)
		}
	}()
	logger = logger.With("pet", ordinal)

	menu := &contextMenu{ctx: ctx, logger: logger.With("component", "menu")}
	menu.use(cfg.ContextMenu)

	player := manifest.Player()
	p, err := pet.New(pet.Options{
		Config:      cfg,
		Accessor:    acc,
		Behavior:    b,
		Player:      player,
		Canvas:      canvas,
		HitTester:   player,
		Ordinal:     ordinal,
		Ordinals:    registry,
		Logger:      logger,
		Rand:        rng,
		ContextMenu: menu.show,
	})
	if err != nil {
		return err
	}

	acc.Surface().Listen(x11.PointerHandlers{
		Press: func(x, y, button int) {
			p.PostInput(pet.InputEvent{Kind: pet.InputPress, X: x, Y: y, Button: x11Button(button)})
		},
		Release: func(x, y, button int) {
			p.PostInput(pet.InputEvent{Kind: pet.InputRelease, X: x, Y: y, Button: x11Button(button)})
		},
		Motion: func(x, y int, dragging bool) {
			kind := pet.InputMove
			if dragging {
				kind = pet.InputDrag
			}
			p.PostInput(pet.InputEvent{Kind: kind, X: x, Y: y})
		},
	})

	conn := acc.Connection()
	keys := hotkeys.NewHandler(conn.XUtil, conn.Root, logger.With("component", "hotkeys"))
	bindHotkeys := func(c *config.Config) {
		if err := keys.Bind(hotkeys.Bindings(c.Hotkeys, p)); err != nil {
			logger.Warn("some hotkeys could not be grabbed", "error", err)
		}
	}
	bindHotkeys(cfg)
	defer keys.Unbind()

	var reloadMu sync.Mutex
	current := cfg
	reload := func() error {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		next, err := loadRuntimeConfig(current, logger)
		if err != nil {
			logger.Error("config reload failed", "error", err)
			return err
		}
		if err := p.ApplyConfig(next); err != nil {
			return err
		}
		level.Set(next.SlogLevel())
		if next.Hotkeys != current.Hotkeys {
			bindHotkeys(next)
		}
		if next.ContextMenu != current.ContextMenu {
			menu.use(next.ContextMenu)
		}
		current = next
		logger.Info("config reloaded")
		return nil
	}

	menu.mu.Lock()
	menu.target, menu.reload = p, reload
	menu.mu.Unlock()

	socketPath, err := runtimepath.SocketPath(ordinal)
	if err != nil {
		return err
	}
	server := ipc.NewServer(socketPath, &petHandler{pet: p, reload: reload}, logger)
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger.With("component", "reconciler"),
	}, daemon.NewJanitor(registry, logger), windowLister(acc))
	reconciler.ReconcileNow()
	go reconciler.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading config")
					_ = reload()
					continue
				}
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()

	go acc.EventLoop()

	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func windowLister(acc platform.Accessor) daemon.WindowLister {
	return func() ([]platform.WindowID, error) {
		windows, err := acc.ListWindows()
		if err != nil {
			return nil, err
		}
		ids := make([]platform.WindowID, 0, len(windows)+1)
		for _, w := range windows {
			ids = append(ids, w.ID)
		}
		// Our own window is not always listed as a normal client.
		return append(ids, acc.OwnWindow()), nil
	}
}

// x11Button maps X11 button numbers (1 left, 2 middle, 3 right).
func x11Button(n int) pet.Button {
	switch n {
	case 1:
		return pet.ButtonLeft
	case 2:
		return pet.ButtonMiddle
	case 3:
		return pet.ButtonRight
	default:
		return pet.ButtonNone
	}
}
