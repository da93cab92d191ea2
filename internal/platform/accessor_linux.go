//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/deskpet/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxAccessor implements Accessor on top of an X11 connection and the
// pet's own surface.
type LinuxAccessor struct {
	conn    *x11.Connection
	surface *x11.Surface
}

var _ Accessor = (*LinuxAccessor)(nil)

// NewLinuxAccessor wraps an existing connection and surface.
func NewLinuxAccessor(conn *x11.Connection, surface *x11.Surface) *LinuxAccessor {
	return &LinuxAccessor{conn: conn, surface: surface}
}

// OpenLinuxAccessor opens a fresh X11 connection and creates the pet surface.
func OpenLinuxAccessor(title string, width, height int) (*LinuxAccessor, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	surface, err := conn.CreateSurface(title, width, height)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &LinuxAccessor{conn: conn, surface: surface}, nil
}

// Surface returns the pet window.
func (a *LinuxAccessor) Surface() *x11.Surface {
	return a.surface
}

// Connection exposes the underlying X11 connection.
func (a *LinuxAccessor) Connection() *x11.Connection {
	return a.conn
}

// EventLoop runs the X11 event loop until Close is called (blocking).
func (a *LinuxAccessor) EventLoop() {
	a.conn.EventLoop()
}

// Close destroys the surface and disconnects.
func (a *LinuxAccessor) Close() {
	if a == nil || a.conn == nil {
		return
	}
	if a.surface != nil {
		a.surface.Destroy()
	}
	a.conn.StopEventLoop()
	a.conn.Close()
}

func (a *LinuxAccessor) OwnWindow() WindowID {
	return WindowID(a.surface.ID())
}

// Displays returns all active displays, primary first.
func (a *LinuxAccessor) Displays() ([]Display, error) {
	monitors, err := a.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:   m.ID,
			Name: m.Name,
			Bounds: Rect{
				X:      m.X,
				Y:      m.Y,
				Width:  m.Width,
				Height: m.Height,
			},
		})
	}
	return displays, nil
}

// ListWindows returns normal, non-hidden windows on the current desktop,
// topmost first. The pet's own window is included.
func (a *LinuxAccessor) ListWindows() ([]Window, error) {
	clients, err := a.conn.StackingOrder()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !a.conn.IsNormalWindow(windowID) || a.conn.IsHidden(windowID) {
			continue
		}
		if !a.conn.VisibleOnCurrentDesktop(windowID) {
			continue
		}

		// Windows can disappear mid-scan; skip them.
		x, y, w, h, err := a.conn.WindowGeometry(windowID)
		if err != nil {
			continue
		}

		windows = append(windows, Window{
			ID:     WindowID(windowID),
			PID:    a.conn.WindowPID(windowID),
			Title:  a.conn.WindowTitle(windowID),
			Bounds: Rect{X: x, Y: y, Width: w, Height: h},
		})
	}
	return windows, nil
}

// SetPosition moves the window and applies the stacking request.
func (a *LinuxAccessor) SetPosition(id WindowID, stack Stacking, bounds Rect) error {
	win := xproto.Window(id)
	if err := a.conn.MoveResizeWindow(win, bounds.X, bounds.Y, bounds.Width, bounds.Height); err != nil {
		return err
	}
	switch stack.Mode {
	case StackTop:
		return a.conn.Restack(win, 0, x11.StackAbove)
	case StackBelow:
		return a.conn.Restack(win, xproto.Window(stack.Sibling), x11.StackBelow)
	}
	return nil
}

func (a *LinuxAccessor) SetAlpha(id WindowID, alpha float64) error {
	return a.conn.SetOpacity(xproto.Window(id), alpha)
}

func (a *LinuxAccessor) SetClickThrough(id WindowID, on bool) error {
	return a.conn.SetInputPassthrough(xproto.Window(id), on)
}

// ExtendedStyle maps _NET_WM_STATE onto Style flags. X11 windows always
// support per-window alpha, so StyleLayered is always set.
func (a *LinuxAccessor) ExtendedStyle(id WindowID) (Style, error) {
	win := xproto.Window(id)
	s := StyleLayered
	above, err := a.conn.HasState(win, "_NET_WM_STATE_ABOVE")
	if err != nil {
		return 0, err
	}
	if above {
		s |= StyleTopmost
	}
	skip, err := a.conn.HasState(win, "_NET_WM_STATE_SKIP_TASKBAR")
	if err != nil {
		return 0, err
	}
	if skip {
		s |= StyleToolWindow
	}
	return s, nil
}

// SetExtendedStyle requests the window states matching s.
func (a *LinuxAccessor) SetExtendedStyle(id WindowID, s Style) error {
	win := xproto.Window(id)
	if err := a.conn.SetState(win, "_NET_WM_STATE_ABOVE", s&StyleTopmost != 0); err != nil {
		return err
	}
	tool := s&StyleToolWindow != 0
	if err := a.conn.SetState(win, "_NET_WM_STATE_SKIP_TASKBAR", tool); err != nil {
		return err
	}
	return a.conn.SetState(win, "_NET_WM_STATE_SKIP_PAGER", tool)
}

func (a *LinuxAccessor) SetForeground(id WindowID) error {
	return a.conn.FocusWindow(xproto.Window(id))
}

func (a *LinuxAccessor) IsForeground(id WindowID) bool {
	active, err := a.conn.GetActiveWindow()
	return err == nil && active == xproto.Window(id)
}

// SendMouseEvent forwards a mouse event to id at a window-relative position.
func (a *LinuxAccessor) SendMouseEvent(id WindowID, ev MouseEvent, relX, relY int) error {
	kind, button := x11.PointerMotion, 0
	switch ev {
	case LeftDown:
		kind, button = x11.PointerPress, 1
	case LeftUp:
		kind, button = x11.PointerRelease, 1
	case MiddleDown:
		kind, button = x11.PointerPress, 2
	case MiddleUp:
		kind, button = x11.PointerRelease, 2
	case RightDown:
		kind, button = x11.PointerPress, 3
	case RightUp:
		kind, button = x11.PointerRelease, 3
	}
	return a.conn.SendPointerEvent(xproto.Window(id), kind, button, relX, relY)
}
