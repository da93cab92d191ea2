package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether (x, y) lies inside r. Right and bottom edges are
// exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the centre point of r.
func (r Rect) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	Title  string
	Bounds Rect
}

// StackMode says how a window is placed in the z-order.
type StackMode int

const (
	// StackNone leaves the z-order alone.
	StackNone StackMode = iota
	// StackTop places the window above all others.
	StackTop
	// StackBelow places the window directly below Sibling.
	StackBelow
)

func (m StackMode) String() string {
	switch m {
	case StackTop:
		return "top"
	case StackBelow:
		return "below"
	default:
		return "none"
	}
}

// Stacking is a z-order request passed along with a position update.
type Stacking struct {
	Mode    StackMode
	Sibling WindowID
}

// Style is a set of window style flags.
type Style uint32

const (
	// StyleLayered marks a window that supports per-window alpha.
	StyleLayered Style = 1 << iota
	// StyleTopmost keeps the window above normal windows.
	StyleTopmost
	// StyleToolWindow hides the window from the taskbar and switchers.
	StyleToolWindow
)

// MouseEvent is a synthetic mouse event forwarded to another window.
type MouseEvent int

const (
	MouseMove MouseEvent = iota
	LeftDown
	LeftUp
	RightDown
	RightUp
	MiddleDown
	MiddleUp
)

// Accessor is the set of window-system operations a pet needs. Calls must be
// bounded-latency; none of them may block indefinitely.
type Accessor interface {
	// ListWindows returns visible top-level windows, topmost first.
	ListWindows() ([]Window, error)
	Displays() ([]Display, error)
	// OwnWindow is the window the pet is drawn in.
	OwnWindow() WindowID

	SetPosition(id WindowID, stack Stacking, bounds Rect) error
	SetAlpha(id WindowID, alpha float64) error
	SetClickThrough(id WindowID, on bool) error
	ExtendedStyle(id WindowID) (Style, error)
	SetExtendedStyle(id WindowID, s Style) error
	SetForeground(id WindowID) error
	IsForeground(id WindowID) bool
	SendMouseEvent(id WindowID, ev MouseEvent, relX, relY int) error
}
