package platform

import (
	"errors"
	"slices"
	"sync"
)

// ErrUnknownWindow is returned for operations on windows the desktop does
// not have.
var ErrUnknownWindow = errors.New("unknown window")

// ForwardedEvent records a mouse event sent through SendMouseEvent.
type ForwardedEvent struct {
	Window WindowID
	Event  MouseEvent
	X, Y   int
}

// Memory is an in-process desktop. It backs headless runs and tests.
type Memory struct {
	mu sync.Mutex

	own      WindowID
	displays []Display
	// windows is kept topmost first.
	windows []Window

	alpha        map[WindowID]float64
	clickThrough map[WindowID]bool
	styles       map[WindowID]Style
	foreground   WindowID
	denials      int
	forwarded    []ForwardedEvent
	lastStack    Stacking

	listErr    error
	displayErr error
}

var _ Accessor = (*Memory)(nil)

// NewMemory returns a desktop holding only the pet window own.
func NewMemory(own Window, displays ...Display) *Memory {
	return &Memory{
		own:          own.ID,
		displays:     slices.Clone(displays),
		windows:      []Window{own},
		alpha:        map[WindowID]float64{},
		clickThrough: map[WindowID]bool{},
		styles:       map[WindowID]Style{},
	}
}

// Push adds a window on top of the stack.
func (m *Memory) Push(w Window) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = slices.Insert(m.windows, 0, w)
}

// PushBottom adds a window below every other window.
func (m *Memory) PushBottom(w Window) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = append(m.windows, w)
}

// Remove drops a window from the desktop.
func (m *Memory) Remove(id WindowID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = slices.DeleteFunc(m.windows, func(w Window) bool { return w.ID == id })
}

// Window returns the current state of one window.
func (m *Memory) Window(id WindowID) (Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return Window{}, false
	}
	return m.windows[i], true
}

// SetDisplays replaces the display list.
func (m *Memory) SetDisplays(displays ...Display) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displays = slices.Clone(displays)
}

// FailListing makes ListWindows and Displays return err until cleared with nil.
func (m *Memory) FailListing(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
	m.displayErr = err
}

// DenyForeground makes the next n SetForeground calls have no effect.
func (m *Memory) DenyForeground(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denials = n
}

// Alpha returns the last alpha set on id (1 when never set).
func (m *Memory) Alpha(id WindowID) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.alpha[id]; ok {
		return a
	}
	return 1
}

// ClickThrough reports the click-through flag of id.
func (m *Memory) ClickThrough(id WindowID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clickThrough[id]
}

// LastStacking returns the last stacking request passed to SetPosition.
func (m *Memory) LastStacking() Stacking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastStack
}

// Forwarded returns every mouse event sent so far.
func (m *Memory) Forwarded() []ForwardedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.forwarded)
}

func (m *Memory) OwnWindow() WindowID {
	return m.own
}

func (m *Memory) ListWindows() ([]Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.windows), nil
}

func (m *Memory) Displays() ([]Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.displayErr != nil {
		return nil, m.displayErr
	}
	return slices.Clone(m.displays), nil
}

func (m *Memory) SetPosition(id WindowID, stack Stacking, bounds Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return ErrUnknownWindow
	}
	w := m.windows[i]
	w.Bounds = bounds
	m.lastStack = stack

	switch stack.Mode {
	case StackTop:
		m.windows = slices.Delete(m.windows, i, i+1)
		m.windows = slices.Insert(m.windows, 0, w)
	case StackBelow:
		m.windows = slices.Delete(m.windows, i, i+1)
		j := m.indexOf(stack.Sibling)
		if j < 0 {
			m.windows = slices.Insert(m.windows, i, w)
			return ErrUnknownWindow
		}
		m.windows = slices.Insert(m.windows, j+1, w)
	default:
		m.windows[i] = w
	}
	return nil
}

func (m *Memory) SetAlpha(id WindowID, alpha float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return ErrUnknownWindow
	}
	m.alpha[id] = alpha
	return nil
}

func (m *Memory) SetClickThrough(id WindowID, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return ErrUnknownWindow
	}
	m.clickThrough[id] = on
	return nil
}

func (m *Memory) ExtendedStyle(id WindowID) (Style, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return 0, ErrUnknownWindow
	}
	return m.styles[id], nil
}

func (m *Memory) SetExtendedStyle(id WindowID, s Style) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return ErrUnknownWindow
	}
	m.styles[id] = s
	return nil
}

func (m *Memory) SetForeground(id WindowID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.denials > 0 {
		m.denials--
		return nil
	}
	m.foreground = id
	return nil
}

func (m *Memory) IsForeground(id WindowID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.foreground == id
}

func (m *Memory) SendMouseEvent(id WindowID, ev MouseEvent, relX, relY int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return ErrUnknownWindow
	}
	m.forwarded = append(m.forwarded, ForwardedEvent{Window: id, Event: ev, X: relX, Y: relY})
	return nil
}

func (m *Memory) indexOf(id WindowID) int {
	return slices.IndexFunc(m.windows, func(w Window) bool { return w.ID == id })
}
