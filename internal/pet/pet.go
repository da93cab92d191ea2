// Package pet runs the per-frame loop that ties physics, animation, peer
// awareness and the native window together.
package pet

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/1broseidon/deskpet/internal/anim"
	"github.com/1broseidon/deskpet/internal/config"
	"github.com/1broseidon/deskpet/internal/peers"
	"github.com/1broseidon/deskpet/internal/physics"
	"github.com/1broseidon/deskpet/internal/platform"
)

// scanFrames is how many frames pass between two desktop scans.
const scanFrames = 4

// ErrNoMonitors is returned by New when no display can be found.
var ErrNoMonitors = errors.New("no monitor has been found")

// Behavior is the policy that picks animations.
type Behavior interface {
	AutoCtrl(dt float64) anim.Data
	Dragging() anim.Data
	ClickStart() anim.Data
	ClickEnd() anim.Data
	DefaultAnim() anim.Data
	Dropped() anim.Data
	Stages() []anim.Stage
	NextStage()
	CurrentStage() anim.Stage
	SetStage(s anim.Stage) error
}

// HitTester reports whether a canvas pixel is drawn on. Coordinates are in
// unscaled canvas pixels with the origin at the top-left.
type HitTester interface {
	SolidAt(x, y int) bool
}

// CanvasFunc returns the unscaled canvas size of a stage.
type CanvasFunc func(stage anim.Stage) (width, height int, err error)

// Options wires a pet to its collaborators. Config, Accessor, Behavior,
// Player and Canvas are required.
type Options struct {
	Config   *config.Config
	Accessor platform.Accessor
	Behavior Behavior
	Player   anim.Player
	Canvas   CanvasFunc
	// HitTester may be nil, in which case the whole canvas is solid.
	HitTester HitTester
	// Ordinal is this pet's slot in the peer registry.
	Ordinal  int
	Ordinals peers.OrdinalSource
	Logger   *slog.Logger
	// Rand drives the sub-pixel rounding of walking steps. May be nil.
	Rand *rand.Rand
	// ContextMenu is called on the loop goroutine when the pet is
	// right-clicked, with screen coordinates. It must not block.
	ContextMenu func(x, y int)
}

// Pet is one desktop pet. All methods except the command methods, PostInput
// and Status must be called from the goroutine that runs the loop.
type Pet struct {
	cfg      *config.Config
	acc      platform.Accessor
	behavior Behavior
	composer *anim.Composer
	plane    *physics.Plane
	dir      *peers.Directory
	hit      HitTester
	canvas   CanvasFunc
	menu     func(x, y int)
	logger   *slog.Logger
	rng      *rand.Rand

	own     platform.WindowID
	ordinal int
	width   int
	height  int
	offsetY int

	keepAnim    *anim.Data
	transparent bool
	toolwindow  bool

	pos    *easedPoint
	alpha  *fade
	target peers.StackTarget
	mouse  mouseState
	lastDT float64

	cmds   chan command
	input  chan InputEvent
	quit   chan struct{}
	quitMu sync.Once

	statusMu sync.Mutex
	status   Status
}

// New sets up the plane, the composer and the window. It fails with
// ErrNoMonitors when the accessor reports no display.
func New(opts Options) (*Pet, error) {
	if opts.Config == nil || opts.Accessor == nil || opts.Behavior == nil || opts.Player == nil || opts.Canvas == nil {
		return nil, errors.New("pet: config, accessor, behavior, player and canvas are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	cfg := opts.Config.Clone()

	displays, err := opts.Accessor.Displays()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMonitors, err)
	}
	if len(displays) == 0 {
		return nil, ErrNoMonitors
	}

	p := &Pet{
		cfg:      cfg,
		acc:      opts.Accessor,
		behavior: opts.Behavior,
		plane:    physics.NewPlane(),
		hit:      opts.HitTester,
		canvas:   opts.Canvas,
		menu:     opts.ContextMenu,
		logger:   logger,
		rng:      rng,
		own:      opts.Accessor.OwnWindow(),
		ordinal:  opts.Ordinal,
		alpha:    newFade(),
		cmds:     make(chan command, 16),
		input:    make(chan InputEvent, 64),
		quit:     make(chan struct{}),
	}
	p.composer = anim.NewComposer(opts.Player)

	if err := p.fitCanvas(); err != nil {
		return nil, err
	}
	p.applyPhysics()
	p.plane.SetWorld(peers.World(displays, cfg.Display.MultiMonitors, float64(cfg.Display.MarginBottom)))

	primary := displays[0].Bounds
	p.plane.ChangePosition(0,
		float64(primary.X)+float64(primary.Width)*cfg.InitialPosition.X-float64(p.width)/2,
		float64(primary.Y)+float64(primary.Height)*cfg.InitialPosition.Y,
	)

	p.dir = peers.NewDirectory(peers.DirectoryConfig{
		Interval:   scanFrames * cfg.FrameInterval(),
		OwnOrdinal: opts.Ordinal,
		Options:    p.scanOptions(),
		Logger:     logger.With("component", "peers"),
	}, opts.Accessor, opts.Ordinals)

	p.changeAnimation(p.behavior.DefaultAnim())
	logger.Info("animation stages available", "stages", p.behavior.Stages(), "current", p.behavior.CurrentStage())

	p.pos = newEasedPoint(p.plane.X(), p.plane.Y()+float64(p.offsetY))
	p.setWindowPos(0)

	style := platform.StyleLayered
	if cfg.Window.Topmost {
		style |= platform.StyleTopmost
	}
	if err := p.acc.SetExtendedStyle(p.own, style); err != nil {
		logger.Warn("failed to set window style", "error", err)
	}
	if err := p.acc.SetAlpha(p.own, 0); err != nil {
		logger.Debug("failed to set window alpha", "error", err)
	}
	p.promiseToolwindow(1000)
	p.publishStatus()

	logger.Info("pet created", "ordinal", p.ordinal, "window", p.own, "size", fmt.Sprintf("%dx%d", p.width, p.height))
	return p, nil
}

// fitCanvas sizes the window to the current stage's canvas times the scale.
func (p *Pet) fitCanvas() error {
	stage := p.behavior.CurrentStage()
	w, h, err := p.canvas(stage)
	if err != nil {
		return fmt.Errorf("canvas for stage %q: %w", stage, err)
	}
	p.width = int(float64(w) * p.cfg.Display.Scale)
	p.height = int(float64(h) * p.cfg.Display.Scale)
	p.plane.SetObjSize(float64(p.width), float64(p.height))
	return nil
}

func (p *Pet) applyPhysics() {
	ph := p.cfg.Physics
	p.plane.SetGravity(ph.GravityAcc)
	p.plane.SetFrict(ph.AirFrictionAcc, ph.StaticFrictionAcc)
	p.plane.SetSpeedLimit(ph.SpeedLimitX, ph.SpeedLimitY)
	p.plane.SetResilience(ph.Resilience)
	p.plane.SetRepulsionLaw(physics.RepulsionLaw{
		Constant:    ph.RepulsionConstant,
		Exponent:    ph.RepulsionExponent,
		MinDistance: physics.DefaultRepulsionLaw().MinDistance,
	})
}

func (p *Pet) scanOptions() peers.Options {
	return peers.Options{
		Repulsion:       p.cfg.Behavior.DoPeerRepulsion,
		Topmost:         p.cfg.Window.Topmost,
		MultiMonitor:    p.cfg.Display.MultiMonitors,
		MarginBottom:    float64(p.cfg.Display.MarginBottom),
		QuantityProduct: p.cfg.Physics.QuantityProduct,
	}
}

// changeAnimation offers d and picks up its vertical offset when accepted.
func (p *Pet) changeAnimation(d anim.Data) bool {
	if !p.composer.Offer(d) {
		return false
	}
	p.offsetY = int(math.Round(float64(d.OffsetY) * p.cfg.Display.Scale))
	return true
}

// Plane exposes the physics state, mainly for diagnostics.
func (p *Pet) Plane() *physics.Plane {
	return p.plane
}

// Composer exposes the animation state.
func (p *Pet) Composer() *anim.Composer {
	return p.composer
}

// WindowRect is where the window currently is on screen.
func (p *Pet) WindowRect() platform.Rect {
	x, y := p.pos.Now()
	return platform.Rect{X: int(math.Round(x)), Y: int(math.Round(y)), Width: p.width, Height: p.height}
}
