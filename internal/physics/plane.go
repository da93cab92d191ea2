// Package physics integrates the screen position of a single pet window.
//
// The object is a point mass represented by the top-left corner of its
// window. It falls under gravity, slows down under friction, is pushed away
// from point charges and lands on barriers or on the floor of the monitor
// area it belongs to.
package physics

import (
	"fmt"
	"math"
)

// RestThreshold is the vertical speed (px/s) below which a bounce is treated
// as coming to rest.
const RestThreshold = 20.0

// landingTolerance allows for float drift of the previous foot line when the
// object is already resting on a surface.
const landingTolerance = 0.5

// Plane owns the state of one simulated object and its world.
type Plane struct {
	x, y   float64
	vx, vy float64
	w, h   float64

	gravity     float64
	airFrict    float64
	staticFrict float64
	limitX      float64
	limitY      float64
	resilience  float64
	law         RepulsionLaw

	world    []RectArea
	barriers []Barrier
	charges  []PointCharge

	dropping bool
	dropped  bool
	grounded bool

	restX, restY float64
	hasRest      bool
}

// NewPlane returns a plane with no gravity, friction or speed limit.
func NewPlane() *Plane {
	return &Plane{law: DefaultRepulsionLaw()}
}

func (p *Plane) SetObjSize(w, h float64) {
	p.w, p.h = w, h
}

func (p *Plane) SetGravity(g float64) {
	p.gravity = g
}

// SetFrict sets the air friction (always applied) and the static friction
// (applied only while resting on a surface), both as decelerations in px/s².
func (p *Plane) SetFrict(air, static float64) {
	p.airFrict, p.staticFrict = air, static
}

// SetSpeedLimit sets the maximum absolute speed per axis. Zero or negative
// means unlimited.
func (p *Plane) SetSpeedLimit(x, y float64) {
	p.limitX, p.limitY = x, y
}

// SetResilience sets the bounce coefficient; 0 disables bouncing.
func (p *Plane) SetResilience(r float64) {
	p.resilience = r
}

func (p *Plane) SetRepulsionLaw(l RepulsionLaw) {
	p.law = l
}

// SetWorld replaces the monitor areas.
func (p *Plane) SetWorld(areas []RectArea) {
	p.world = append([]RectArea(nil), areas...)
}

// SetBarriers replaces the whole barrier set.
func (p *Plane) SetBarriers(barriers []Barrier) {
	p.barriers = append([]Barrier(nil), barriers...)
}

// SetPointCharges replaces the whole point charge set.
func (p *Plane) SetPointCharges(charges []PointCharge) {
	p.charges = append([]PointCharge(nil), charges...)
}

func (p *Plane) World() []RectArea           { return append([]RectArea(nil), p.world...) }
func (p *Plane) Barriers() []Barrier         { return append([]Barrier(nil), p.barriers...) }
func (p *Plane) PointCharges() []PointCharge { return append([]PointCharge(nil), p.charges...) }

func (p *Plane) X() float64 { return p.x }
func (p *Plane) Y() float64 { return p.y }
func (p *Plane) W() float64 { return p.w }
func (p *Plane) H() float64 { return p.h }

// Velocity returns the current velocity in px/s.
func (p *Plane) Velocity() (vx, vy float64) {
	return p.vx, p.vy
}

// Dropping reports whether the object is currently unsupported.
func (p *Plane) Dropping() bool {
	return p.dropping
}

// Dropped reports whether the object landed since the last call. The flag is
// cleared by reading it.
func (p *Plane) Dropped() bool {
	d := p.dropped
	p.dropped = false
	return d
}

// Grounded reports whether the object rested on a surface after the last step.
func (p *Plane) Grounded() bool {
	return p.grounded
}

// ChangePosition moves the object to (x, y). With dt <= 0 this is an instant
// snap that keeps the velocity. With dt > 0 the move is treated as a drag: the
// velocity follows the displacement so that releasing the object keeps its
// momentum.
func (p *Plane) ChangePosition(dt, x, y float64) {
	if dt > 0 {
		p.vx = clampAbs((x-p.x)/dt, p.limitX)
		p.vy = clampAbs((y-p.y)/dt, p.limitY)
		p.dropping = false
		p.grounded = false
	}
	p.x, p.y = x, y
}

// StepX moves the object horizontally by dx without touching its velocity
// or whether it is falling. Walking uses it, so gravity keeps acting.
func (p *Plane) StepX(dx float64) {
	p.x += dx
}

// UpdatePosition advances the simulation by dt seconds.
func (p *Plane) UpdatePosition(dt float64) {
	if dt <= 0 {
		return
	}

	p.vy += p.gravity * dt

	p.vx = decelerate(p.vx, p.airFrict*dt)
	p.vy = decelerate(p.vy, p.airFrict*dt)
	if p.grounded {
		p.vx = decelerate(p.vx, p.staticFrict*dt)
	}
	p.clampSpeed()

	ax, ay := p.repulsion()
	p.vx += ax * dt
	p.vy += ay * dt
	p.clampSpeed()

	prevFoot := p.y + p.h
	p.x += p.vx * dt
	p.y += p.vy * dt

	area, ok := p.activeArea()
	if !ok {
		// Nothing to collide with; fall back to where we last rested.
		if p.hasRest {
			p.x, p.y = p.restX, p.restY
		}
		p.vx, p.vy = 0, 0
		return
	}

	landed := p.resolveVertical(area, prevFoot)
	p.resolveHorizontal(area)

	if landed {
		if p.dropping {
			p.dropped = true
		}
		p.dropping = false
		p.grounded = true
		p.restX, p.restY, p.hasRest = p.x, p.y, true
	} else {
		p.dropping = true
		p.grounded = false
	}
}

// resolveVertical clamps the object onto the first surface it crossed during
// this step and reports whether it is now resting.
func (p *Plane) resolveVertical(area RectArea, prevFoot float64) bool {
	if p.vy < 0 {
		return false
	}
	foot := p.y + p.h
	cx := p.x + p.w/2

	surface := area.Bottom
	for _, b := range p.barriers {
		if !b.covers(cx) {
			continue
		}
		if b.Y >= prevFoot-landingTolerance && b.Y <= foot && b.Y < surface {
			surface = b.Y
		}
	}
	if foot < surface {
		return false
	}

	p.y = surface - p.h
	if p.resilience > 0 {
		p.vy = -p.vy * p.resilience
		if math.Abs(p.vy) < RestThreshold {
			p.vy = 0
		}
	} else {
		p.vy = 0
	}
	return p.vy == 0
}

func (p *Plane) resolveHorizontal(area RectArea) {
	left := area.Left
	right := area.Right - p.w
	if right < left {
		right = left
	}
	if p.x < left {
		p.x = left
		if p.vx < 0 {
			p.vx = 0
		}
	} else if p.x > right {
		p.x = right
		if p.vx > 0 {
			p.vx = 0
		}
	}
}

func (p *Plane) repulsion() (ax, ay float64) {
	if len(p.charges) == 0 {
		return 0, 0
	}
	cx, cy := p.x+p.w/2, p.y+p.h/2
	for _, c := range p.charges {
		dx, dy := cx-c.X, cy-c.Y
		d := math.Hypot(dx, dy)
		if d == 0 {
			// Coincident centres: push sideways.
			dx, d = 1, 1
		}
		a := p.law.Accel(d, c.Strength)
		ax += a * dx / d
		ay += a * dy / d
	}
	return ax, ay
}

func (p *Plane) clampSpeed() {
	p.vx = clampAbs(p.vx, p.limitX)
	p.vy = clampAbs(p.vy, p.limitY)
}

func (p *Plane) activeArea() (RectArea, bool) {
	return ActiveArea(p.world, p.x, p.y, p.w, p.h)
}

// BorderLeft is the smallest x the object may take in its current area.
func (p *Plane) BorderLeft() float64 {
	a, ok := p.activeArea()
	if !ok {
		return p.x
	}
	return a.Left
}

// BorderRight is the largest x the object may take in its current area.
func (p *Plane) BorderRight() float64 {
	a, ok := p.activeArea()
	if !ok {
		return p.x
	}
	return math.Max(a.Left, a.Right-p.w)
}

// BorderTop is the top edge of the current area.
func (p *Plane) BorderTop() float64 {
	a, ok := p.activeArea()
	if !ok {
		return p.y
	}
	return a.Top
}

// BorderBottom is the y at which the object rests on the area floor.
func (p *Plane) BorderBottom() float64 {
	a, ok := p.activeArea()
	if !ok {
		return p.y
	}
	return a.Bottom - p.h
}

// DebugMsg dumps the internal state for diagnostics.
func (p *Plane) DebugMsg() string {
	return fmt.Sprintf(
		"pos=(%.1f, %.1f) vel=(%.1f, %.1f) size=%.0fx%.0f dropping=%v grounded=%v "+
			"gravity=%.1f frict=(%.1f, %.1f) limit=(%.1f, %.1f) resilience=%.2f "+
			"areas=%d barriers=%d charges=%d",
		p.x, p.y, p.vx, p.vy, p.w, p.h, p.dropping, p.grounded,
		p.gravity, p.airFrict, p.staticFrict, p.limitX, p.limitY, p.resilience,
		len(p.world), len(p.barriers), len(p.charges),
	)
}

// decelerate reduces |v| by amount without crossing zero.
func decelerate(v, amount float64) float64 {
	if amount <= 0 {
		return v
	}
	if v > 0 {
		return math.Max(0, v-amount)
	}
	if v < 0 {
		return math.Min(0, v+amount)
	}
	return 0
}

func clampAbs(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	return math.Max(-limit, math.Min(limit, v))
}
