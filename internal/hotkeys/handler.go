package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handler grabs global key sequences on the root window. Only one client can
// grab a given sequence, so when several pets run the first one wins and the
// others log the failed grab.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	mu    sync.Mutex
	bound []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. keybind must already be initialized
// on xu.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &Handler{xu: xu, root: root, logger: logger}
}

// Bind replaces the current grabs with bindings. Every binding is attempted;
// the returned error joins the ones that failed.
func (h *Handler) Bind(bindings []Binding) error {
	h.Unbind()

	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for _, b := range bindings {
		err := h.registerFunc(b.Keys, func() {
			h.logger.Debug("hotkey triggered", "action", b.Name)
			if err := b.Run(); err != nil {
				h.logger.Warn("hotkey action failed", "action", b.Name, "error", err)
			}
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s (%s): %w", b.Name, b.Keys, err))
			continue
		}
		h.bound = append(h.bound, b.Keys)
	}
	return errors.Join(errs...)
}

// Unbind releases every grab made by Bind.
func (h *Handler) Unbind() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.bound) == 0 {
		return
	}
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

// Bound lists the key sequences currently grabbed.
func (h *Handler) Bound() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.bound...)
}

func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes grabs fire regardless of CapsLock, NumLock and
// ScrollLock.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}
	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns 0 plus every non-empty combination of base.
func ignoreMasks(base []uint16) []uint16 {
	out := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
