package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	socketPrefix = "deskpet-"
	socketSuffix = ".sock"
)

// Dir returns the runtime directory shared by every pet on this session.
// Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/deskpet-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/deskpet-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the control socket of the pet with the given ordinal.
func SocketPath(ordinal int) (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, socketPrefix+strconv.Itoa(ordinal)+socketSuffix), nil
}

// SocketOrdinals lists the ordinals that currently have a control socket
// file, in ascending order. Stale files left by crashed pets are included.
func SocketOrdinals() ([]int, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(runtimeDir, socketPrefix+"*"+socketSuffix))
	if err != nil {
		return nil, err
	}
	var out []int
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), socketPrefix), socketSuffix)
		n, err := strconv.Atoi(name)
		if err != nil || n < 0 {
			continue
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// PeerRegistryPath returns the path of the shared peer registry.
func PeerRegistryPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "deskpet-peers.json"), nil
}

// PeerLockPath returns the lock file guarding the peer registry.
func PeerLockPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "deskpet-peers.lock"), nil
}
