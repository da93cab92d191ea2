package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/1broseidon/deskpet/internal/peers"
	"github.com/1broseidon/deskpet/internal/runtimepath"
)

// PeerRegistry is the part of *peers.Registry the janitor needs.
type PeerRegistry interface {
	List() ([]peers.Entry, error)
	Prune(keep func(peers.Entry) bool) ([]peers.Entry, error)
}

// Janitor removes what crashed pets leave behind.
type Janitor struct {
	registry PeerRegistry
	logger   *slog.Logger

	socketPath     func(ordinal int) (string, error)
	socketOrdinals func() ([]int, error)
	listening      func(path string) bool
}

// NewJanitor creates a janitor for the session runtime dir.
func NewJanitor(registry PeerRegistry, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		registry:       registry,
		logger:         logger,
		socketPath:     runtimepath.SocketPath,
		socketOrdinals: runtimepath.SocketOrdinals,
		listening:      socketListening,
	}
}

// HandlePetGone removes the control socket of a pet that is no longer
// registered, unless another pet already answers on it.
func (j *Janitor) HandlePetGone(e peers.Entry) {
	path, err := j.socketPath(e.Ordinal)
	if err != nil {
		j.logger.Warn("failed to resolve socket path", "ordinal", e.Ordinal, "error", err)
		return
	}
	if j.listening(path) {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		j.logger.Warn("failed to remove socket", "path", path, "error", err)
		return
	}
	j.logger.Debug("removed socket of departed pet", "ordinal", e.Ordinal, "path", path)
}

// CleanupStaleSockets removes socket files that belong to no registered pet
// and that nobody listens on.
func (j *Janitor) CleanupStaleSockets() error {
	entries, err := j.registry.List()
	if err != nil {
		return fmt.Errorf("list peers: %w", err)
	}
	live := make(map[int]bool, len(entries))
	for _, e := range entries {
		live[e.Ordinal] = true
	}

	ordinals, err := j.socketOrdinals()
	if err != nil {
		return fmt.Errorf("list sockets: %w", err)
	}
	for _, ord := range ordinals {
		if live[ord] {
			continue
		}
		path, err := j.socketPath(ord)
		if err != nil {
			return err
		}
		if j.listening(path) {
			continue
		}
		j.logger.Info("removing stale socket", "ordinal", ord, "path", path)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			j.logger.Warn("failed to remove stale socket", "path", path, "error", err)
		}
	}
	return nil
}

func socketListening(path string) bool {
	conn, err := net.DialTimeout("unix", path, 200*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
