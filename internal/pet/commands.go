package pet

import (
	"errors"
	"fmt"
	"time"

	"github.com/1broseidon/deskpet/internal/anim"
	"github.com/1broseidon/deskpet/internal/behavior"
	"github.com/1broseidon/deskpet/internal/config"
	"github.com/1broseidon/deskpet/internal/platform"
)

// ErrStopped is returned by commands sent to a pet whose loop has exited.
var ErrStopped = errors.New("pet loop is not running")

// ErrSingleStage is returned when cycling stages on a character that has
// only one.
var ErrSingleStage = errors.New("character has a single stage")

// commandTimeout bounds how long a command waits for the loop to pick it up.
const commandTimeout = 2 * time.Second

type command struct {
	apply func(*Pet) error
	done  chan error
}

// Status is a point-in-time view of the pet.
type Status struct {
	Ordinal     int
	Window      platform.WindowID
	Rect        platform.Rect
	VelocityX   float64
	VelocityY   float64
	Animation   string
	Stage       anim.Stage
	Stages      []anim.Stage
	KeepAnim    bool
	Transparent bool
	Dragging    bool
	Dropping    bool
	Grounded    bool
	FPS         int
}

// call hands fn to the loop goroutine and waits for its result.
func (p *Pet) call(fn func(*Pet) error) error {
	cmd := command{apply: fn, done: make(chan error, 1)}
	timer := time.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case p.cmds <- cmd:
	case <-p.quit:
		return ErrStopped
	case <-timer.C:
		return ErrStopped
	}
	select {
	case err := <-cmd.done:
		return err
	case <-p.quit:
		return ErrStopped
	case <-timer.C:
		return fmt.Errorf("command timed out after %s", commandTimeout)
	}
}

// drain runs queued commands and pointer events on the loop goroutine.
func (p *Pet) drain() {
	for {
		select {
		case cmd := <-p.cmds:
			cmd.done <- cmd.apply(p)
		case ev := <-p.input:
			p.HandleInput(ev)
		default:
			return
		}
	}
}

// SetKeepAnim pins the animation that is playing right now, or releases the
// pin. Pinning while idle pins the default animation.
func (p *Pet) SetKeepAnim(on bool) error {
	return p.call(func(p *Pet) error {
		if !on {
			p.keepAnim = nil
			p.logger.Info("keep animation released")
			return nil
		}
		d, ok := p.composer.Playing()
		if !ok {
			d = p.behavior.DefaultAnim()
		}
		p.keepAnim = &d
		p.logger.Info("keeping animation", "animation", d.Clip.Name)
		return nil
	})
}

// SetTransparent toggles click-through on the pet window.
func (p *Pet) SetTransparent(on bool) error {
	return p.call(func(p *Pet) error {
		p.transparent = on
		if err := p.acc.SetClickThrough(p.own, on); err != nil {
			return fmt.Errorf("set click-through: %w", err)
		}
		p.logger.Info("transparency changed", "enabled", on)
		return nil
	})
}

// ChangeStage switches to stage, or to the next stage when stage is empty.
// The canvas is refitted and any pinned animation is released.
func (p *Pet) ChangeStage(stage string) error {
	return p.call(func(p *Pet) error {
		if stage == "" {
			if len(p.behavior.Stages()) < 2 {
				return ErrSingleStage
			}
			p.behavior.NextStage()
		} else if err := p.behavior.SetStage(anim.Stage(stage)); err != nil {
			return err
		}
		if err := p.fitCanvas(); err != nil {
			return err
		}
		p.keepAnim = nil
		p.resetAnimation(p.behavior.DefaultAnim())
		p.logger.Info("stage changed", "stage", p.behavior.CurrentStage())
		return nil
	})
}

type behaviorConfigurer interface {
	SetConfig(behavior.Config)
}

// ApplyConfig swaps in a new configuration. Invalid fields keep their
// current values; a warning is logged for each of them.
func (p *Pet) ApplyConfig(cfg *config.Config) error {
	next := cfg.Clone()
	return p.call(func(p *Pet) error {
		for _, w := range next.Sanitize(p.cfg) {
			p.logger.Warn("config value rejected", "detail", w)
		}
		scaleChanged := next.Display.Scale != p.cfg.Display.Scale
		p.cfg = next
		p.applyPhysics()
		if bc, ok := p.behavior.(behaviorConfigurer); ok {
			bc.SetConfig(BehaviorConfig(next))
		}
		p.dir.SetOptions(p.scanOptions())
		p.dir.SetInterval(scanFrames * next.FrameInterval())
		if scaleChanged {
			if err := p.fitCanvas(); err != nil {
				return err
			}
		}
		p.logger.Info("configuration applied",
			"fps", next.Display.FPS, "scale", next.Display.Scale, "scan_interval", p.dir.Interval())
		return nil
	})
}

// BehaviorConfig extracts the behaviour switches from cfg.
func BehaviorConfig(cfg *config.Config) behavior.Config {
	return behavior.Config{
		AIActivation:  cfg.Behavior.AIActivation,
		AllowWalk:     cfg.Behavior.AllowWalk,
		AllowSit:      cfg.Behavior.AllowSit,
		AllowInteract: cfg.Behavior.AllowInteract,
	}
}

// Quit asks the loop to stop. It is safe to call more than once.
func (p *Pet) Quit() {
	p.quitMu.Do(func() { close(p.quit) })
}

// Done is closed once Quit has been called.
func (p *Pet) Done() <-chan struct{} {
	return p.quit
}

// Status returns the state published at the end of the last frame.
func (p *Pet) Status() Status {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	s := p.status
	s.Stages = append([]anim.Stage(nil), p.status.Stages...)
	return s
}

func (p *Pet) publishStatus() {
	vx, vy := p.plane.Velocity()
	var name string
	if d, ok := p.composer.Playing(); ok {
		name = d.Clip.Name
	}
	s := Status{
		Ordinal:     p.ordinal,
		Window:      p.own,
		Rect:        p.WindowRect(),
		VelocityX:   vx,
		VelocityY:   vy,
		Animation:   name,
		Stage:       p.behavior.CurrentStage(),
		Stages:      p.behavior.Stages(),
		KeepAnim:    p.keepAnim != nil,
		Transparent: p.transparent,
		Dragging:    p.mouse.dragging,
		Dropping:    p.plane.Dropping(),
		Grounded:    p.plane.Grounded(),
		FPS:         p.cfg.Display.FPS,
	}
	p.statusMu.Lock()
	p.status = s
	p.statusMu.Unlock()
}
