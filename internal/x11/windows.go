package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Stack modes for _NET_RESTACK_WINDOW.
const (
	StackAbove = 0
	StackBelow = 1
)

// StackingOrder returns the managed client windows, topmost first.
func (c *Connection) StackingOrder() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get stacking client list: %w", err)
	}
	// EWMH orders bottom-to-top.
	out := make([]xproto.Window, len(clients))
	for i, w := range clients {
		out[len(clients)-1-i] = w
	}
	return out, nil
}

// WindowGeometry returns the root-relative outer geometry of a window,
// including the frame drawn by the window manager when it is known.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	left, right, top, bottom := c.frameExtents(windowID)
	return int(translate.DstX) - left,
		int(translate.DstY) - top,
		int(geom.Width) + left + right,
		int(geom.Height) + top + bottom,
		nil
}

// frameExtents returns the window decoration sizes, or zeros when unknown.
func (c *Connection) frameExtents(windowID xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

// IsHidden reports whether the window is minimized or shaded away.
func (c *Connection) IsHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

// HasState reports whether _NET_WM_STATE contains the given atom name.
func (c *Connection) HasState(windowID xproto.Window, name string) (bool, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false, fmt.Errorf("failed to get window state: %w", err)
	}
	for _, s := range states {
		if s == name {
			return true, nil
		}
	}
	return false, nil
}

// SetState adds or removes one _NET_WM_STATE atom.
func (c *Connection) SetState(windowID xproto.Window, name string, on bool) error {
	action := ewmh.StateRemove
	if on {
		action = ewmh.StateAdd
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, action, name); err != nil {
		return fmt.Errorf("failed to request %s: %w", name, err)
	}
	return nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// Restack asks the window manager to place windowID directly above or below
// sibling. A zero sibling restacks relative to all windows.
func (c *Connection) Restack(windowID, sibling xproto.Window, mode int) error {
	const sourceIndication = 2 // pager/direct action
	return c.sendRootMessage("_NET_RESTACK_WINDOW", windowID, sourceIndication, uint32(sibling), uint32(mode))
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY, clamped to [0, 1].
func (c *Connection) SetOpacity(windowID xproto.Window, alpha float64) error {
	alpha = max(0, min(1, alpha))
	if err := ewmh.WmWindowOpacitySet(c.XUtil, windowID, alpha); err != nil {
		return fmt.Errorf("failed to set opacity: %w", err)
	}
	return nil
}

// SetInputPassthrough makes the window ignore pointer input (an empty input
// shape) or restores the default input region.
func (c *Connection) SetInputPassthrough(windowID xproto.Window, on bool) error {
	if !c.hasShape {
		return fmt.Errorf("SHAPE extension unavailable")
	}
	if on {
		return shape.RectanglesChecked(
			c.XUtil.Conn(),
			shape.SoSet,
			shape.SkInput,
			xproto.ClipOrderingUnsorted,
			windowID,
			0, 0,
			nil,
		).Check()
	}
	return shape.MaskChecked(
		c.XUtil.Conn(),
		shape.SoSet,
		shape.SkInput,
		windowID,
		0, 0,
		xproto.PixmapNone,
	).Check()
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	const sourceIndication = 2 // pager/direct action
	return c.sendRootMessage("_NET_ACTIVE_WINDOW", windowID, sourceIndication)
}

// GetActiveWindow returns the window named by _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
