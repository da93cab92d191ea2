// Package anim holds the single-track animation state machine that decides
// which clip the renderer plays.
package anim

import "fmt"

// Stage groups clips that share one canvas, e.g. a base form and a battle form.
type Stage string

// ClipType classifies a clip by the motion it shows.
type ClipType string

const (
	TypeIdle     ClipType = "idle"
	TypeMove     ClipType = "move"
	TypeSit      ClipType = "sit"
	TypeSleep    ClipType = "sleep"
	TypeInteract ClipType = "interact"
	TypeSpecial  ClipType = "special"
)

// Clip names one renderable animation.
type Clip struct {
	Name  string
	Stage Stage
	Type  ClipType
}

// IsEmpty reports whether the clip has no name.
func (c Clip) IsEmpty() bool {
	return c.Name == ""
}

// Data is one animation request.
type Data struct {
	Clip   Clip
	Next   *Data
	Loop   bool
	Strict bool
	// OffsetY is the vertical draw offset in unscaled pixels.
	OffsetY int
	// Mobility is the signed walking speed; 0 means the clip stays in place.
	Mobility int
}

// IsEmpty reports whether d carries no clip.
func (d Data) IsEmpty() bool {
	return d.Clip.IsEmpty()
}

// Equal compares by value, following the Next chain.
func (d Data) Equal(o Data) bool {
	if d.Clip != o.Clip || d.Loop != o.Loop || d.Strict != o.Strict ||
		d.OffsetY != o.OffsetY || d.Mobility != o.Mobility {
		return false
	}
	switch {
	case d.Next == nil && o.Next == nil:
		return true
	case d.Next == nil || o.Next == nil:
		return false
	default:
		return d.Next.Equal(*o.Next)
	}
}

// Derive returns a copy with a new offset and mobility and no follow-up clip.
func (d Data) Derive(offsetY, mobility int) Data {
	d.Next = nil
	d.OffsetY = offsetY
	d.Mobility = mobility
	return d
}

// Then returns a copy of d that chains into next once it completes.
func (d Data) Then(next Data) Data {
	n := next
	d.Next = &n
	return d
}

func (d Data) String() string {
	if d.IsEmpty() {
		return "<empty>"
	}
	s := fmt.Sprintf("%s[%s] loop=%v strict=%v offsetY=%d mobility=%d",
		d.Clip.Name, d.Clip.Stage, d.Loop, d.Strict, d.OffsetY, d.Mobility)
	if d.Next != nil {
		s += " -> " + d.Next.Clip.Name
	}
	return s
}
