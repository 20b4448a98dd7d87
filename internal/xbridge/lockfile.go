package xbridge

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// lockPath and socket paths for X display N, matching the real X server's
// own conventions so a legacy X client run by hand against this display
// behaves identically to running against a stock Xorg/Xwayland.
func lockPath(n int) string { return fmt.Sprintf("/tmp/.X%d-lock", n) }

func abstractSocketPath(n int) string { return fmt.Sprintf("/tmp/.X11-unix/X%d", n) }

// createLockfile atomically creates /tmp/.X{n}-lock: exactly
// 11 bytes, "%10d\n" of the compositor pid, O_EXCL, mode 0444. Returns
// (true, nil) on success. Returns (false, nil) if the file exists but is
// stale (the recorded pid is dead) and has been removed — the caller should
// retry the same n. Returns (false, nil) if the file exists and the owning
// pid is alive — the caller should move on to n+1.
func createLockfile(n int) (bool, error) {
	path := lockPath(n)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0444)
	if err == nil {
		_, werr := fmt.Fprintf(f, "%10d\n", os.Getpid())
		cerr := f.Close()
		if werr != nil {
			os.Remove(path)
			return false, fmt.Errorf("xbridge: write lockfile %s: %w", path, werr)
		}
		if cerr != nil {
			os.Remove(path)
			return false, fmt.Errorf("xbridge: close lockfile %s: %w", path, cerr)
		}
		return true, nil
	}
	if !os.IsExist(err) {
		return false, fmt.Errorf("xbridge: create lockfile %s: %w", path, err)
	}

	pid, rerr := readLockfilePid(path)
	if rerr != nil {
		return false, rerr
	}
	if pidAlive(pid) {
		return false, nil
	}
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return false, fmt.Errorf("xbridge: remove stale lockfile %s: %w", path, rmErr)
	}
	return false, nil
}

func readLockfilePid(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("xbridge: read lockfile %s: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("xbridge: parse lockfile %s: %w", path, err)
	}
	return pid, nil
}

// pidAlive reports whether pid names a live process, using signal 0 per the
// usual Unix idiom (no signal delivered, only existence/permission checked).
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}

// AcquireDisplay scans display numbers starting at start, creating the
// lockfile for the first free one Startup. It does not
// yet bind the listening sockets — that happens in sockets.go once the
// number is settled, since both steps can race against another compositor
// doing the same scan and the lockfile is the authoritative reservation.
func AcquireDisplay(start int) (n int, cleanup func(), err error) {
	for candidate := start; candidate < start+64; {
		acquired, err := createLockfile(candidate)
		if err != nil {
			return 0, nil, err
		}
		if acquired {
			path := lockPath(candidate)
			return candidate, func() { os.Remove(path) }, nil
		}
		// createLockfile already removed the file if it was stale, in which
		// case the same candidate is retried; if the owning pid was alive
		// it left the file in place and we must move on.
		if _, err := os.Stat(lockPath(candidate)); os.IsNotExist(err) {
			continue // retry same candidate
		}
		candidate++
	}
	return 0, nil, fmt.Errorf("xbridge: no free X display in range [%d, %d)", start, start+64)
}
