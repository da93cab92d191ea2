package pet

import (
	"math"

	"github.com/1broseidon/deskpet/internal/anim"
	"github.com/1broseidon/deskpet/internal/platform"
)

// walkFactor converts clip mobility into pixels per frame at 30 fps.
const walkFactor = 0.85

// Tick advances the pet by dt seconds.
func (p *Pet) Tick(dt float64) {
	p.lastDT = dt
	p.drain()
	p.composer.Update(dt)

	candidate := p.behavior.AutoCtrl(dt)

	if !p.mouse.dragging {
		p.plane.UpdatePosition(dt)
		if playing, ok := p.composer.Playing(); ok && playing.Mobility != 0 {
			mobility := playing.Mobility
			if p.willReachBorder(mobility) {
				// Turn around at the edge of the monitor area.
				candidate = playing.Derive(playing.OffsetY, -mobility)
				if p.keepAnim != nil {
					keep := candidate
					p.keepAnim = &keep
				}
				mobility = -mobility
			}
			p.walk(walkFactor * float64(mobility))
		}
	} else {
		candidate = p.behavior.Dragging()
	}

	switch {
	case p.mouse.dragging:
	case p.plane.Dropping():
		candidate = p.behavior.DefaultAnim()
	case p.plane.Dropped():
		candidate = p.behavior.Dropped()
	case p.keepAnim != nil:
		candidate = *p.keepAnim
	}
	p.changeAnimation(candidate)

	p.setWindowPos(dt)
	if v, running := p.alpha.Advance(dt); running {
		if err := p.acc.SetAlpha(p.own, v); err != nil {
			p.logger.Debug("failed to set window alpha", "error", err)
		}
	}
	p.promiseToolwindow(1)
	p.publishStatus()
}

// setWindowPos eases the window towards the plane, refreshes the peer scan
// when it is due and pushes the result to the window system.
func (p *Pet) setWindowPos(dt float64) {
	p.pos.Reset(p.plane.X(), p.plane.Y()+float64(p.offsetY))
	p.pos.Advance(dt)

	rect := p.WindowRect()
	target, scanned := p.dir.Refresh(dt, rect, p.plane)
	if scanned {
		if target != p.target {
			p.logger.Debug("stacking target changed", "mode", target.Mode, "sibling", target.Sibling)
		}
		p.target = target
		if err := p.acc.SetClickThrough(p.own, p.transparent); err != nil {
			p.logger.Debug("failed to set click-through", "error", err)
		}
	}
	if err := p.acc.SetPosition(p.own, p.target, rect); err != nil {
		p.logger.Debug("failed to set window position", "error", err)
	}
}

// walk moves the plane horizontally by len pixels, scaled for display scale
// and frame rate. Fractions are rounded randomly so that slow walks still
// move on average.
func (p *Pet) walk(length float64) {
	expected := length * p.cfg.Display.Scale * (30 / float64(p.cfg.Display.FPS))
	p.plane.StepX(float64(p.randomRound(expected)))
}

func (p *Pet) randomRound(v float64) int {
	whole := math.Trunc(v)
	frac := v - whole
	n := int(whole)
	if math.Abs(frac) >= p.rng.Float64() {
		if v >= 0 {
			n++
		} else {
			n--
		}
	}
	return n
}

// willReachBorder reports whether walking in the direction of mobility would
// push the pet past the side of its monitor area.
func (p *Pet) willReachBorder(mobility int) bool {
	x := p.plane.X()
	return (mobility > 0 && x >= p.plane.BorderRight()) || (mobility < 0 && x <= p.plane.BorderLeft())
}

// promiseToolwindow makes sure the window gets the tool-window style once it
// has been in the foreground, trying to raise it up to maxRetries times.
func (p *Pet) promiseToolwindow(maxRetries int) {
	if !p.cfg.Window.Toolwindow || p.toolwindow {
		return
	}
	for i := 0; ; i++ {
		if p.acc.IsForeground(p.own) {
			style, err := p.acc.ExtendedStyle(p.own)
			if err != nil {
				p.logger.Debug("failed to read window style", "error", err)
				return
			}
			if err := p.acc.SetExtendedStyle(p.own, style|platform.StyleToolWindow); err != nil {
				p.logger.Debug("failed to set tool window style", "error", err)
				return
			}
			p.toolwindow = true
			p.logger.Info("tool window style applied", "attempts", i+1)
			return
		}
		if i >= maxRetries {
			return
		}
		if err := p.acc.SetForeground(p.own); err != nil {
			p.logger.Debug("failed to raise window", "error", err)
		}
	}
}

// resetAnimation drops whatever is playing and starts d.
func (p *Pet) resetAnimation(d anim.Data) {
	p.composer.Reset()
	p.changeAnimation(d)
}
