package pet

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// EasingDuration is the time in seconds the window takes to catch up with
// the physics position and to fade in.
const EasingDuration = 0.3

// easedPoint follows a moving target with an ease-out-cubic tween. Every
// change of target restarts the tween from the current value.
type easedPoint struct {
	x, y     float64
	tx, ty   float64
	tweenX   *gween.Tween
	tweenY   *gween.Tween
	duration float32
}

func newEasedPoint(x, y float64) *easedPoint {
	return &easedPoint{x: x, y: y, tx: x, ty: y, duration: EasingDuration}
}

// Reset retargets the point. The same target keeps the running tween.
func (e *easedPoint) Reset(x, y float64) {
	if x == e.tx && y == e.ty {
		return
	}
	e.tx, e.ty = x, y
	e.tweenX = gween.New(float32(e.x), float32(x), e.duration, ease.OutCubic)
	e.tweenY = gween.New(float32(e.y), float32(y), e.duration, ease.OutCubic)
}

// Advance moves the point dt seconds along its tween.
func (e *easedPoint) Advance(dt float64) {
	if e.tweenX == nil {
		return
	}
	vx, doneX := e.tweenX.Update(float32(dt))
	vy, doneY := e.tweenY.Update(float32(dt))
	e.x, e.y = float64(vx), float64(vy)
	if doneX && doneY {
		e.SetToEnd()
	}
}

// SetToEnd jumps to the target.
func (e *easedPoint) SetToEnd() {
	e.x, e.y = e.tx, e.ty
	e.tweenX, e.tweenY = nil, nil
}

func (e *easedPoint) Now() (x, y float64) {
	return e.x, e.y
}

// fade eases the window alpha from 0 to 1 once.
type fade struct {
	tween *gween.Tween
	value float64
}

func newFade() *fade {
	return &fade{tween: gween.New(0, 1, EasingDuration, ease.OutCubic)}
}

// Advance returns the new alpha and whether the fade was still running.
func (f *fade) Advance(dt float64) (float64, bool) {
	if f.tween == nil {
		return f.value, false
	}
	v, done := f.tween.Update(float32(dt))
	f.value = float64(v)
	if done {
		f.value = 1
		f.tween = nil
	}
	return f.value, true
}

func (f *fade) Ended() bool {
	return f.tween == nil
}
