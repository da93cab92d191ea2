package physics

import "math"

// RectArea is an axis-aligned monitor region in screen coordinates.
// Bottom is the floor the object rests on (already adjusted by any margin).
type RectArea struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

func (a RectArea) containsX(x float64) bool {
	return x >= a.Left && x < a.Right
}

func (a RectArea) containsY(y float64) bool {
	return y >= a.Top && y < a.Bottom
}

// distance returns the euclidean distance from a point to the area (0 inside).
func (a RectArea) distance(x, y float64) float64 {
	dx := math.Max(0, math.Max(a.Left-x, x-a.Right))
	dy := math.Max(0, math.Max(a.Top-y, y-a.Bottom))
	return math.Hypot(dx, dy)
}

// Barrier is a horizontal ledge the object can land on from above.
type Barrier struct {
	Y      float64
	XStart float64
	Width  float64
}

func (b Barrier) covers(x float64) bool {
	return x >= b.XStart && x <= b.XStart+b.Width
}

// PointCharge is a repulsion source, typically the centre of a peer window.
type PointCharge struct {
	X        float64
	Y        float64
	Strength float64
}

// RepulsionLaw describes the inverse-distance force produced by point charges:
//
//	a = Constant * strength / max(d, MinDistance)^Exponent
type RepulsionLaw struct {
	Constant    float64
	Exponent    float64
	MinDistance float64
}

// DefaultRepulsionLaw returns the law used when nothing else is configured.
func DefaultRepulsionLaw() RepulsionLaw {
	return RepulsionLaw{Constant: 120000, Exponent: 1, MinDistance: 1}
}

// Accel returns the magnitude of the acceleration at distance d.
func (l RepulsionLaw) Accel(d, strength float64) float64 {
	minD := l.MinDistance
	if minD <= 0 {
		minD = 1
	}
	if d < minD {
		d = minD
	}
	return l.Constant * strength / math.Pow(d, l.Exponent)
}

// selectArea picks the area the object at centre (cx, cy) belongs to: the one
// containing the centre, else the one spanning cx that is vertically nearest,
// else the nearest one overall.
func selectArea(world []RectArea, cx, cy float64) (RectArea, bool) {
	if len(world) == 0 {
		return RectArea{}, false
	}
	for _, a := range world {
		if a.containsX(cx) && a.containsY(cy) {
			return a, true
		}
	}

	best := -1
	bestDist := math.Inf(1)
	for i, a := range world {
		if !a.containsX(cx) {
			continue
		}
		if d := a.distance(cx, cy); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return world[best], true
	}

	for i, a := range world {
		if d := a.distance(cx, cy); d < bestDist {
			best, bestDist = i, d
		}
	}
	return world[best], true
}

// ActiveArea returns the area an object with the given top-left corner and
// size belongs to.
func ActiveArea(world []RectArea, x, y, w, h float64) (RectArea, bool) {
	return selectArea(world, x+w/2, y+h/2)
}
