package peers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/1broseidon/deskpet/internal/platform"
	"github.com/1broseidon/deskpet/internal/runtimepath"
	"golang.org/x/sys/unix"
)

// NotPeer is the ordinal of windows that do not belong to a pet.
const NotPeer = -1

// Entry is one registered pet window.
type Entry struct {
	WindowID platform.WindowID `json:"window_id"`
	Ordinal  int               `json:"ordinal"`
	PID      int               `json:"pid"`
	JoinedAt time.Time         `json:"joined_at"`
}

type registryFile struct {
	Peers []Entry `json:"peers"`
}

// Registry assigns ordinals to pet windows across processes. State lives in
// a JSON file in the runtime dir; every access holds a flock on a sibling
// lock file.
type Registry struct {
	path     string
	lockPath string

	alive func(pid int) bool
	now   func() time.Time
}

// OpenRegistry returns the registry of the current session.
func OpenRegistry() (*Registry, error) {
	path, err := runtimepath.PeerRegistryPath()
	if err != nil {
		return nil, err
	}
	lockPath, err := runtimepath.PeerLockPath()
	if err != nil {
		return nil, err
	}
	return NewRegistry(path, lockPath), nil
}

// NewRegistry returns a registry stored at path and locked through lockPath.
func NewRegistry(path, lockPath string) *Registry {
	return &Registry{
		path:     path,
		lockPath: lockPath,
		alive:    processAlive,
		now:      time.Now,
	}
}

// Register adds windowID owned by pid and returns its ordinal. Entries of
// dead processes are dropped first, then the lowest free ordinal is used.
// Registering a window twice returns the ordinal it already has.
func (r *Registry) Register(windowID platform.WindowID, pid int) (int, error) {
	ordinal := NotPeer
	err := r.update(unix.LOCK_EX, func(reg *registryFile) bool {
		r.prune(reg)
		for i, e := range reg.Peers {
			if e.WindowID == windowID {
				reg.Peers[i].PID = pid
				ordinal = e.Ordinal
				return true
			}
		}

		used := make(map[int]struct{}, len(reg.Peers))
		for _, e := range reg.Peers {
			used[e.Ordinal] = struct{}{}
		}
		ordinal = 0
		for {
			if _, ok := used[ordinal]; !ok {
				break
			}
			ordinal++
		}
		reg.Peers = append(reg.Peers, Entry{
			WindowID: windowID,
			Ordinal:  ordinal,
			PID:      pid,
			JoinedAt: r.now().UTC(),
		})
		return true
	})
	if err != nil {
		return NotPeer, err
	}
	return ordinal, nil
}

// Unregister removes windowID. Unknown windows are ignored.
func (r *Registry) Unregister(windowID platform.WindowID) error {
	return r.update(unix.LOCK_EX, func(reg *registryFile) bool {
		kept := reg.Peers[:0]
		for _, e := range reg.Peers {
			if e.WindowID != windowID {
				kept = append(kept, e)
			}
		}
		changed := len(kept) != len(reg.Peers)
		reg.Peers = kept
		return changed
	})
}

// Ordinals returns the ordinal of every live registered window.
func (r *Registry) Ordinals() (map[platform.WindowID]int, error) {
	entries, err := r.List()
	if err != nil {
		return nil, err
	}
	out := make(map[platform.WindowID]int, len(entries))
	for _, e := range entries {
		out[e.WindowID] = e.Ordinal
	}
	return out, nil
}

// List returns live entries sorted by ordinal.
func (r *Registry) List() ([]Entry, error) {
	var out []Entry
	err := r.update(unix.LOCK_SH, func(reg *registryFile) bool {
		for _, e := range reg.Peers {
			if r.alive(e.PID) {
				out = append(out, e)
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

// Prune drops entries of dead processes and entries for which keep returns
// false. keep may be nil. It returns the removed entries.
func (r *Registry) Prune(keep func(Entry) bool) ([]Entry, error) {
	var removed []Entry
	err := r.update(unix.LOCK_EX, func(reg *registryFile) bool {
		kept := reg.Peers[:0]
		for _, e := range reg.Peers {
			if r.alive(e.PID) && (keep == nil || keep(e)) {
				kept = append(kept, e)
				continue
			}
			removed = append(removed, e)
		}
		reg.Peers = kept
		return len(removed) > 0
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *Registry) prune(reg *registryFile) {
	kept := reg.Peers[:0]
	for _, e := range reg.Peers {
		if r.alive(e.PID) {
			kept = append(kept, e)
		}
	}
	reg.Peers = kept
}

// update runs fn with the registry loaded under a lock of the given kind and
// saves it when fn reports a change.
func (r *Registry) update(how int, fn func(*registryFile) bool) error {
	lock, err := os.OpenFile(r.lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open peer registry lock: %w", err)
	}
	defer lock.Close()

	if err := unix.Flock(int(lock.Fd()), how); err != nil {
		return fmt.Errorf("failed to lock peer registry: %w", err)
	}
	defer unix.Flock(int(lock.Fd()), unix.LOCK_UN)

	reg, err := r.load()
	if err != nil {
		return err
	}
	if !fn(reg) {
		return nil
	}
	return r.save(reg)
}

func (r *Registry) load() (*registryFile, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &registryFile{}, nil
		}
		return nil, fmt.Errorf("failed to read peer registry: %w", err)
	}
	var reg registryFile
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse peer registry: %w", err)
	}
	return &reg, nil
}

func (r *Registry) save(reg *registryFile) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode peer registry: %w", err)
	}
	if err := os.WriteFile(r.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write peer registry: %w", err)
	}
	return nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
