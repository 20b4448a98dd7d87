//go:build !linux

package procsup

import (
	"fmt"
	"syscall"
)

func setChildRlimit(pid int, resource int, new *syscall.Rlimit) error {
	return fmt.Errorf("procsup: rlimit adjustment unsupported on this platform")
}
