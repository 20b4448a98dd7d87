package procsup

import (
	"fmt"

	"github.com/syndtr/gocapability/capability"
)

// dropAllCapabilities clears every capability set on the *current*
// process's in-memory capability state before a child is forked, so the
// fork+exec sequence inherits nothing. The shell's children (the rootless
// X server, the desktop-shell helper) need strictly less privilege than
// the shell process itself, so the direction here is drop, not grant.
func dropAllCapabilities() error {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return fmt.Errorf("procsup: get self capabilities: %w", err)
	}
	if err := caps.Load(); err != nil {
		return fmt.Errorf("procsup: load self capabilities: %w", err)
	}

	caps.Clear(capability.CAPS | capability.BOUNDS)

	if err := caps.Apply(capability.CAPS | capability.BOUNDS); err != nil {
		return fmt.Errorf("procsup: apply dropped capabilities: %w", err)
	}
	return nil
}

// hasSysResource reports whether the process currently holds
// CAP_SYS_RESOURCE in its effective set. Nothing in this module calls it;
// Spawn applies a requested rlimit without checking it.
func hasSysResource() (bool, error) {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return false, err
	}
	if err := caps.Load(); err != nil {
		return false, err
	}
	return caps.Get(capability.EFFECTIVE, capability.CAP_SYS_RESOURCE), nil
}
