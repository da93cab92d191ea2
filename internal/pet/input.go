package pet

import (
	"math"

	"github.com/1broseidon/deskpet/internal/platform"
)

// Button is a mouse button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// InputKind is the kind of a pointer event.
type InputKind int

const (
	InputMove InputKind = iota
	InputPress
	InputRelease
	InputDrag
)

// InputEvent is a pointer event in window-relative pixels.
type InputEvent struct {
	Kind   InputKind
	X, Y   int
	Button Button
}

type mouseState struct {
	x, y       int
	button     Button
	intentionX int
	dragging   bool
}

// updateIntentionX remembers the last horizontal drag direction.
func (m *mouseState) updateIntentionX(newX int) {
	switch {
	case newX > m.x:
		m.intentionX = 1
	case newX < m.x:
		m.intentionX = -1
	}
}

// PostInput queues a pointer event for the loop. It never blocks; events are
// dropped while the queue is full.
func (p *Pet) PostInput(ev InputEvent) {
	select {
	case p.input <- ev:
	default:
		p.logger.Debug("input queue full, dropping event", "kind", ev.Kind)
	}
}

// HandleInput dispatches one pointer event.
func (p *Pet) HandleInput(ev InputEvent) {
	switch ev.Kind {
	case InputPress:
		p.MouseDown(ev.X, ev.Y, ev.Button)
	case InputRelease:
		p.MouseUp(ev.X, ev.Y, ev.Button)
	case InputDrag:
		p.MouseDrag(ev.X, ev.Y)
	default:
		p.MouseMove(ev.X, ev.Y)
	}
}

// MouseDown handles a button press on the pet window.
func (p *Pet) MouseDown(x, y int, button Button) {
	p.mouse.x, p.mouse.y, p.mouse.button = x, y, button
	p.mouse.intentionX = 0
	if !p.solidAt(x, y) {
		p.forward(x, y, pressEvent(button))
		return
	}
	switch button {
	case ButtonLeft:
		p.changeAnimation(p.behavior.ClickStart())
	case ButtonRight:
		p.logger.Debug("context menu requested", "x", x, "y", y)
		if p.menu != nil {
			r := p.WindowRect()
			p.menu(r.X+x, r.Y+y)
		}
	}
}

// MouseDrag moves the pet with the pointer. Right-button drags and drags
// that start on a transparent pixel are ignored.
func (p *Pet) MouseDrag(x, y int) {
	if p.mouse.button == ButtonRight || !p.solidAt(x, y) {
		return
	}
	p.mouse.dragging = true
	p.mouse.updateIntentionX(x)

	wx, wy := p.pos.Now()
	nx := wx + float64(x-p.mouse.x)
	ny := wy + float64(y-p.mouse.y) - float64(p.offsetY)
	p.plane.ChangePosition(p.lastDT, nx, ny)
	p.pos.Reset(nx, ny+float64(p.offsetY))
	p.pos.SetToEnd()
}

// MouseUp ends a drag or completes a click.
func (p *Pet) MouseUp(x, y int, button Button) {
	p.mouse.x, p.mouse.y, p.mouse.button = x, y, button
	switch {
	case p.mouse.dragging && p.mouse.intentionX == 0:
		// A purely vertical drag keeps the current direction.
	case p.mouse.dragging:
		// Keep walking in the direction the pet was thrown.
		if playing, ok := p.composer.Playing(); ok && playing.Mobility != 0 {
			p.changeAnimation(playing.Derive(playing.OffsetY, abs(playing.Mobility)*p.mouse.intentionX))
		}
		if p.keepAnim != nil && p.keepAnim.Mobility != 0 {
			keep := p.keepAnim.Derive(p.keepAnim.OffsetY, abs(p.keepAnim.Mobility)*p.mouse.intentionX)
			p.keepAnim = &keep
		}
	case !p.solidAt(x, y):
		p.forward(x, y, releaseEvent(button))
	case button == ButtonLeft:
		p.changeAnimation(p.behavior.ClickEnd())
	}
	p.mouse.dragging = false
}

// MouseMove passes hover over transparent pixels to the window beneath.
func (p *Pet) MouseMove(x, y int) {
	p.mouse.x, p.mouse.y = x, y
	if !p.solidAt(x, y) {
		p.forward(x, y, platform.MouseMove)
	}
}

func (p *Pet) solidAt(x, y int) bool {
	if x < 0 || y < 0 || x >= p.width || y >= p.height {
		return false
	}
	if p.hit == nil {
		return true
	}
	scale := p.cfg.Display.Scale
	cx := int(math.Floor(float64(x) / scale))
	cy := int(math.Floor(float64(y-p.offsetY) / scale))
	return p.hit.SolidAt(cx, cy)
}

// forward sends a mouse event to the topmost non-pet window under the
// pointer, in that window's coordinates.
func (p *Pet) forward(x, y int, ev platform.MouseEvent) {
	if ev < 0 {
		return
	}
	rect := p.WindowRect()
	absX, absY := rect.X+x, rect.Y+y
	w, ok := p.dir.Snapshot().WindowAt(absX, absY)
	if !ok {
		return
	}
	if err := p.acc.SendMouseEvent(w.ID, ev, absX-w.Bounds.X, absY-w.Bounds.Y); err != nil {
		p.logger.Debug("failed to forward mouse event", "window", w.ID, "error", err)
	}
}

func pressEvent(b Button) platform.MouseEvent {
	switch b {
	case ButtonLeft:
		return platform.LeftDown
	case ButtonRight:
		return platform.RightDown
	case ButtonMiddle:
		return platform.MiddleDown
	}
	return -1
}

func releaseEvent(b Button) platform.MouseEvent {
	switch b {
	case ButtonLeft:
		return platform.LeftUp
	case ButtonRight:
		return platform.RightUp
	case ButtonMiddle:
		return platform.MiddleUp
	}
	return -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
