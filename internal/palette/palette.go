// Package palette shows the pet's context menu through an external dmenu-style
// launcher (rofi, fuzzel, wofi or dmenu).
package palette

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the menu without choosing.
var ErrCancelled = errors.New("menu cancelled")

// ErrDisabled is returned by NewBackend for the "off" launcher.
var ErrDisabled = errors.New("context menu disabled")

// Item is one row of the menu.
type Item struct {
	Label    string
	Action   string
	Icon     string
	IsHeader bool // not selectable
	IsActive bool // highlighted, for toggles that are on
}

// Backend shows items and returns the chosen one.
type Backend interface {
	Show(ctx context.Context, prompt string, items []Item) (Item, error)
	Name() string
}

// launchers in detection order.
var launchers = []string{"rofi", "fuzzel", "wofi", "dmenu"}

var lookPath = exec.LookPath

// NewBackend returns the launcher called name. "auto" picks the first one
// found in PATH.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "off":
		return nil, ErrDisabled
	case "", "auto":
		for _, l := range launchers {
			if _, err := lookPath(l); err == nil {
				return newLauncher(l), nil
			}
		}
		return nil, fmt.Errorf("no menu launcher found in PATH (looked for: %s)", strings.Join(launchers, ", "))
	}
	for _, l := range launchers {
		if l != name {
			continue
		}
		if _, err := lookPath(l); err != nil {
			return nil, fmt.Errorf("menu launcher %q not found in PATH", l)
		}
		return newLauncher(l), nil
	}
	return nil, fmt.Errorf("unknown menu launcher: %q (expected: auto, %s, off)", name, strings.Join(launchers, ", "))
}
