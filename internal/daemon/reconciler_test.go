package daemon

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"

	"github.com/1broseidon/deskpet/internal/peers"
	"github.com/1broseidon/deskpet/internal/platform"
	"github.com/1broseidon/deskpet/internal/runtimepath"
)

// deadPID is above the kernel's pid_max, so no process can have it.
const deadPID = 1 << 30

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T) *peers.Registry {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	reg, err := peers.OpenRegistry()
	if err != nil {
		t.Fatalf("OpenRegistry() error: %v", err)
	}
	return reg
}

func touchSocket(t *testing.T, ordinal int) string {
	t.Helper()
	path, err := runtimepath.SocketPath(ordinal)
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestReconcilePrunesClosedWindowsAndDeadPets(t *testing.T) {
	reg := setup(t)
	pid := os.Getpid()
	for _, id := range []platform.WindowID{1, 2} {
		if _, err := reg.Register(id, pid); err != nil {
			t.Fatalf("Register(%d) error: %v", id, err)
		}
	}
	// Registering prunes dead entries, so the dead pet goes in last.
	if _, err := reg.Register(3, deadPID); err != nil {
		t.Fatalf("Register(3) error: %v", err)
	}

	sock0, sock1, sock2 := touchSocket(t, 0), touchSocket(t, 1), touchSocket(t, 2)

	r := NewReconciler(ReconcilerConfig{Logger: discardLogger()}, NewJanitor(reg, discardLogger()),
		func() ([]platform.WindowID, error) { return []platform.WindowID{1, 99}, nil })
	r.ReconcileNow()

	entries, err := reg.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 1 || entries[0].WindowID != 1 {
		t.Fatalf("registry after reconcile = %v, want only window 1", entries)
	}
	if !exists(sock0) {
		t.Fatal("socket of a live pet was removed")
	}
	if exists(sock1) || exists(sock2) {
		t.Fatal("sockets of departed pets should be removed")
	}
}

func TestReconcileKeepsRegistryWhenListingFails(t *testing.T) {
	reg := setup(t)
	if _, err := reg.Register(1, os.Getpid()); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	failing := NewReconciler(ReconcilerConfig{Logger: discardLogger()}, NewJanitor(reg, discardLogger()),
		func() ([]platform.WindowID, error) { return nil, errors.New("display closed") })
	failing.ReconcileNow()

	empty := NewReconciler(ReconcilerConfig{Logger: discardLogger()}, NewJanitor(reg, discardLogger()),
		func() ([]platform.WindowID, error) { return nil, nil })
	empty.ReconcileNow()

	entries, err := reg.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("registry = %v, want the entry kept", entries)
	}
}

func TestCleanupKeepsListeningSockets(t *testing.T) {
	reg := setup(t)
	path, err := runtimepath.SocketPath(4)
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	stale := touchSocket(t, 5)

	if err := NewJanitor(reg, discardLogger()).CleanupStaleSockets(); err != nil {
		t.Fatalf("CleanupStaleSockets() error: %v", err)
	}
	if !exists(path) {
		t.Fatal("socket with a listener was removed")
	}
	if exists(stale) {
		t.Fatal("stale socket was kept")
	}
}
