package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

const allDesktops = 0xFFFFFFFF

// VisibleOnCurrentDesktop reports whether a window is shown on the current
// virtual desktop. Sticky windows and windows without desktop hints count
// as visible.
func (c *Connection) VisibleOnCurrentDesktop(windowID xproto.Window) bool {
	current, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return true
	}
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	return desktop == allDesktops || desktop == current
}

// WindowTitle returns _NET_WM_NAME, or an empty string.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return title
}

// WindowPID returns _NET_WM_PID, or 0 when unset.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}
