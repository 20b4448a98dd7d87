//go:build linux

package procsup

import (
	"syscall"
	"unsafe"
)

// pRlimit wraps prlimit(2) directly; syscall.Setrlimit only ever targets
// the calling process, while the X server child's limits are raised from
// the parent once cmd.Start has returned (the child has already exec'd).
// Applies an rlimit to a specific already-running child by pid, rather
// than the calling process's own limits.
func pRlimit(pid int, resource uintptr, new, old *syscall.Rlimit) error {
	_, _, errno := syscall.RawSyscall6(syscall.SYS_PRLIMIT64,
		uintptr(pid),
		resource,
		uintptr(unsafe.Pointer(new)),
		uintptr(unsafe.Pointer(old)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func setChildRlimit(pid int, resource int, new *syscall.Rlimit) error {
	var old syscall.Rlimit
	return pRlimit(pid, uintptr(resource), new, &old)
}
