// Package peers turns the desktop window list into physics inputs: monitor
// areas, ledges to stand on, repulsion from other pets and the z-order slot
// the pet window should take.
package peers

import (
	"github.com/1broseidon/deskpet/internal/physics"
	"github.com/1broseidon/deskpet/internal/platform"
)

// StackTarget is the z-order request derived from a scan.
type StackTarget = platform.Stacking

// Options are the scan switches taken from configuration.
type Options struct {
	// Repulsion turns other pets into point charges.
	Repulsion bool
	// Topmost enables stacking; when off every scan yields StackNone.
	Topmost bool
	// MultiMonitor uses every display instead of only the first one.
	MultiMonitor    bool
	MarginBottom    float64
	QuantityProduct float64
}

// ScanInput is everything one scan looks at.
type ScanInput struct {
	// Windows are ordered topmost first.
	Windows    []platform.Window
	Displays   []platform.Display
	Own        platform.WindowID
	OwnOrdinal int
	// Ordinals maps pet windows to their ordinal. Missing windows are not pets.
	Ordinals map[platform.WindowID]int
	// Object is the current on-screen rect of the pet.
	Object  platform.Rect
	Options Options
}

// Snapshot is the result of one scan.
type Snapshot struct {
	World    []physics.RectArea
	Barriers []physics.Barrier
	Charges  []physics.PointCharge
	Target   StackTarget
	// Windows are the non-pet windows, topmost first.
	Windows []platform.Window
}

// WindowAt returns the topmost non-pet window containing the screen point.
func (s Snapshot) WindowAt(x, y int) (platform.Window, bool) {
	for _, w := range s.Windows {
		if w.Bounds.Contains(x, y) {
			return w, true
		}
	}
	return platform.Window{}, false
}

// World converts displays into monitor areas. Only the first display is used
// unless multiMonitor is set.
func World(displays []platform.Display, multiMonitor bool, marginBottom float64) []physics.RectArea {
	var out []physics.RectArea
	for i, d := range displays {
		if i > 0 && !multiMonitor {
			break
		}
		b := d.Bounds
		out = append(out, physics.RectArea{
			Left:   float64(b.X),
			Right:  float64(b.Right()),
			Top:    float64(b.Y),
			Bottom: float64(b.Bottom()) - marginBottom,
		})
	}
	return out
}

// Scan classifies every window once, in z-order.
//
// A non-pet window spanning the pet's horizontal centre yields a barrier at
// its top edge, unless a window above it in z-order already covers that row
// (the edge is hidden) or the pet would not fit between the edge and the top
// of its monitor area. Pet windows other than our own become point charges
// when repulsion is on, and the pet with the smallest ordinal greater than
// ours is the window to stack below.
func Scan(in ScanInput) Snapshot {
	opts := in.Options
	s := Snapshot{World: World(in.Displays, opts.MultiMonitor, opts.MarginBottom)}

	obj := in.Object
	cx := obj.X + obj.Width/2
	area, hasArea := physics.ActiveArea(s.World,
		float64(obj.X), float64(obj.Y), float64(obj.Width), float64(obj.Height))

	type span struct{ top, bottom int }
	var covered []span
	isCovered := func(y int) bool {
		for _, c := range covered {
			if y >= c.top && y < c.bottom {
				return true
			}
		}
		return false
	}

	var below platform.Window
	belowOrd, haveBelow := -1, false
	q := opts.QuantityProduct
	if q == 0 {
		q = 1
	}
	// A ledge must leave room for the pet above it.
	minTop := area.Top + float64(obj.Height)

	for _, w := range in.Windows {
		if w.ID == in.Own {
			continue
		}
		ordinal, isPeer := in.Ordinals[w.ID]
		if !isPeer || ordinal < 0 {
			s.Windows = append(s.Windows, w)
			if !hasArea || cx < w.Bounds.X || cx > w.Bounds.Right() {
				continue
			}
			top, bottom := w.Bounds.Y, w.Bounds.Bottom()
			if float64(bottom) <= area.Top || float64(top) >= area.Bottom {
				continue
			}
			if !isCovered(top) && float64(top) >= minTop {
				s.Barriers = append(s.Barriers, physics.Barrier{
					Y:      float64(top),
					XStart: float64(w.Bounds.X),
					Width:  float64(w.Bounds.Width),
				})
			}
			covered = append(covered, span{top: top, bottom: bottom})
			continue
		}

		if ordinal == in.OwnOrdinal {
			continue
		}
		if opts.Repulsion {
			px, py := w.Bounds.Center()
			s.Charges = append(s.Charges, physics.PointCharge{X: float64(px), Y: float64(py), Strength: q})
		}
		if ordinal > in.OwnOrdinal && (!haveBelow || ordinal < belowOrd) {
			below, belowOrd, haveBelow = w, ordinal, true
		}
	}

	switch {
	case !opts.Topmost:
		s.Target = StackTarget{Mode: platform.StackNone}
	case haveBelow:
		s.Target = StackTarget{Mode: platform.StackBelow, Sibling: below.ID}
	default:
		s.Target = StackTarget{Mode: platform.StackTop}
	}
	return s
}

// Apply replaces the plane's world, barriers and charges with the snapshot.
func Apply(s Snapshot, p *physics.Plane) {
	p.SetWorld(s.World)
	p.SetBarriers(s.Barriers)
	p.SetPointCharges(s.Charges)
}
