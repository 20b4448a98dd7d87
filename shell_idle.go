package shell

import "time"

// ArmIdleLock records the idle timeout the host's own idle-timer source
// should wait for before calling OnIdle. Shell never runs a timer of its
// own: the only suspension point in its control-flow model is entry to the
// host's event loop, and a persistent background timer would mutate shell
// state off that turn. ArmIdleLock just remembers the configured duration
// for IdleTimeout to report back; the host is the one that actually waits.
func (s *Shell) ArmIdleLock(d time.Duration) {
	s.idleTimeout = d
}

// IdleTimeout returns the duration last armed via ArmIdleLock, zero if
// none was ever armed.
func (s *Shell) IdleTimeout() time.Duration {
	return s.idleTimeout
}

// OnIdle is called by the host, from its own turn, when its idle-timer
// source fires with no intervening input activity. It locks the desktop
// exactly like an explicit host lock() request.
func (s *Shell) OnIdle() {
	s.LockDesktop()
}
