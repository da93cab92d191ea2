package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// PointerEvent is a synthetic pointer event kind.
type PointerEvent int

const (
	PointerMotion PointerEvent = iota
	PointerPress
	PointerRelease
)

// SendPointerEvent delivers a synthetic pointer event to windowID at the
// window-relative position (x, y). Button is ignored for motion.
func (c *Connection) SendPointerEvent(windowID xproto.Window, kind PointerEvent, button, x, y int) error {
	origin, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return fmt.Errorf("failed to translate coordinates: %w", err)
	}
	rootX := int16(int(origin.DstX) + x)
	rootY := int16(int(origin.DstY) + y)

	var (
		payload []byte
		mask    uint32
	)
	switch kind {
	case PointerPress:
		ev := xproto.ButtonPressEvent{
			Detail: xproto.Button(button), Time: xproto.TimeCurrentTime,
			Root: c.Root, Event: windowID, Child: xproto.WindowNone,
			RootX: rootX, RootY: rootY, EventX: int16(x), EventY: int16(y),
			SameScreen: true,
		}
		payload, mask = ev.Bytes(), xproto.EventMaskButtonPress
	case PointerRelease:
		ev := xproto.ButtonReleaseEvent{
			Detail: xproto.Button(button), Time: xproto.TimeCurrentTime,
			Root: c.Root, Event: windowID, Child: xproto.WindowNone,
			RootX: rootX, RootY: rootY, EventX: int16(x), EventY: int16(y),
			SameScreen: true,
		}
		payload, mask = ev.Bytes(), xproto.EventMaskButtonRelease
	case PointerMotion:
		ev := xproto.MotionNotifyEvent{
			Detail: xproto.MotionNormal, Time: xproto.TimeCurrentTime,
			Root: c.Root, Event: windowID, Child: xproto.WindowNone,
			RootX: rootX, RootY: rootY, EventX: int16(x), EventY: int16(y),
			SameScreen: true,
		}
		payload, mask = ev.Bytes(), xproto.EventMaskPointerMotion
	default:
		return fmt.Errorf("unknown pointer event %d", kind)
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		true,
		windowID,
		mask,
		string(payload),
	).Check()
}
