package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// PointerHandlers receives pointer events on a surface in window-relative
// coordinates. Button numbers follow X11 (1 left, 2 middle, 3 right).
type PointerHandlers struct {
	Press   func(x, y int, button int)
	Release func(x, y int, button int)
	Motion  func(x, y int, dragging bool)
}

// Surface is the top-level window a pet draws into.
type Surface struct {
	conn *Connection
	win  *xwindow.Window
}

// CreateSurface creates and maps an undecorated window of the given size.
func (c *Connection) CreateSurface(title string, width, height int) (*Surface, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate window id: %w", err)
	}

	mask := xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskStructureNotify
	if err := win.CreateChecked(c.Root, 0, 0, width, height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0, uint32(mask)); err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	if err := ewmh.WmNameSet(c.XUtil, win.Id, title); err != nil {
		return nil, fmt.Errorf("failed to set window title: %w", err)
	}
	if err := icccm.WmClassSet(c.XUtil, win.Id, &icccm.WmClass{Instance: "deskpet", Class: "Deskpet"}); err != nil {
		return nil, fmt.Errorf("failed to set window class: %w", err)
	}
	_ = ewmh.WmPidSet(c.XUtil, win.Id, uint(os.Getpid()))
	_ = ewmh.WmWindowTypeSet(c.XUtil, win.Id, []string{"_NET_WM_WINDOW_TYPE_UTILITY"})
	if err := motif.WmHintsSet(c.XUtil, win.Id, &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationNone,
	}); err != nil {
		return nil, fmt.Errorf("failed to remove window decorations: %w", err)
	}

	win.Map()
	return &Surface{conn: c, win: win}, nil
}

// ID returns the X window id.
func (s *Surface) ID() xproto.Window {
	return s.win.Id
}

// Listen routes pointer events of the surface to h. Events are delivered on
// the goroutine running the connection's EventLoop.
func (s *Surface) Listen(h PointerHandlers) {
	xu := s.conn.XUtil
	if h.Press != nil {
		xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			h.Press(int(ev.EventX), int(ev.EventY), int(ev.Detail))
		}).Connect(xu, s.win.Id)
	}
	if h.Release != nil {
		xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
			h.Release(int(ev.EventX), int(ev.EventY), int(ev.Detail))
		}).Connect(xu, s.win.Id)
	}
	if h.Motion != nil {
		xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
			dragging := ev.State&(xproto.KeyButMaskButton1|xproto.KeyButMaskButton2) != 0
			h.Motion(int(ev.EventX), int(ev.EventY), dragging)
		}).Connect(xu, s.win.Id)
	}
}

// Destroy unmaps and destroys the window.
func (s *Surface) Destroy() {
	xevent.Detach(s.conn.XUtil, s.win.Id)
	s.win.Destroy()
}
