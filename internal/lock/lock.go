// Package lock implements session lock state machine:
// UNLOCKED → LOCKED → PREPARED → UNLOCKED.
package lock

import (
	"github.com/rs/zerolog"

	"github.com/andr2000/weston-shell/internal/model"
	"github.com/andr2000/weston-shell/internal/stack"
)

// Helper is the desktop-shell helper client handle the lock subsystem talks
// to; internal/xbridge and the root shell package supply it.
type Helper interface {
	// Alive reports whether the helper client connection is still live.
	Alive() bool
	// SendPrepareLockSurface posts DESKTOP_SHELL_PREPARE_LOCK_SURFACE.
	SendPrepareLockSurface()
}

// Devices enumerates every input device so the lock subsystem can clear
// keyboard focus on all of them at once.
type Devices interface {
	Each(func(model.InputDevice))
}

// Session drives the UNLOCKED/LOCKED/PREPARED session-lock state machine.
type Session struct {
	Policy  *stack.Policy
	Hidden  *stack.List
	Helper  Helper
	Devices Devices
	Log     zerolog.Logger

	locked           bool
	prepareEventSent bool
}

func New(policy *stack.Policy, helper Helper, devices Devices, log zerolog.Logger) *Session {
	s := &Session{
		Policy:  policy,
		Hidden:  stack.NewList(),
		Helper:  helper,
		Devices: devices,
		Log:     log,
	}
	policy.Locked = s.IsLocked
	return s
}

func (s *Session) IsLocked() bool          { return s.locked }
func (s *Session) PrepareEventSent() bool  { return s.prepareEventSent }

// Lock implements `lock`: move every client surface except
// the background to Hidden, clear their output, clear keyboard focus
// everywhere. The fatal assertion "hidden list is empty at entry" is
// logged, not panicked taxonomy for programmer-invariant
// violations.
func (s *Session) Lock() {
	if s.Hidden.Len() != 0 {
		s.Log.Error().Int("hidden_len", s.Hidden.Len()).
			Msg("lock: hidden list was not empty at entry, continuing anyway")
	}
	s.locked = true

	background := s.Policy.Background.Get()
	for _, surf := range s.Policy.Visible.Slice() {
		if surf.Client == nil {
			continue
		}
		if surf == background {
			continue
		}
		s.Policy.Visible.Remove(surf)
		surf.FullscreenOutput = nil
		s.Hidden.PushBack(surf)
	}

	if s.Devices != nil {
		s.Devices.Each(func(d model.InputDevice) { d.ClearKeyboardFocus() })
	}
}

// Unlock implements `unlock` (host-initiated wake): if not
// locked, no-op; if the helper is gone, force-resume; otherwise post
// PREPARE_LOCK_SURFACE at most once (edge-triggered).
func (s *Session) Unlock() {
	if !s.locked {
		return
	}
	if s.Helper == nil || !s.Helper.Alive() {
		s.ForceResume()
		return
	}
	if s.prepareEventSent {
		return
	}
	s.prepareEventSent = true
	s.Helper.SendPrepareLockSurface()
}

// SetLockSurface implements the helper's set_lock_surface(surface)
// response: clears the prepare flag; becomes the active lock surface only
// if still locked.
func (s *Session) SetLockSurface(surf *model.Surface) {
	s.prepareEventSent = false
	if !s.locked {
		return
	}
	// WeakSurface.Set below already registers its own destroy listener, so
	// if surf dies while still locked its policy slot goes back to nil on
	// its own; the next unlock cycle restarts from there.
	s.Policy.LockSurface.Set(surf)
}

// ResumeDesktop implements the helper's final `unlock` request: restores
// every hidden surface via configure at its last geometry, splices the
// hidden list back above the background, clears locked, re-picks focus.
func (s *Session) ResumeDesktop(devicePick func()) {
	for _, surf := range s.Hidden.Slice() {
		s.Policy.Configure(surf, surf.X, surf.Y, surf.W, surf.H)
	}

	background := s.Policy.Background.Get()
	for _, surf := range s.Hidden.Slice() {
		s.Hidden.Remove(surf)
		s.Policy.Visible.InsertBefore(surf, background)
	}

	s.locked = false
	s.prepareEventSent = false
	s.Policy.LockSurface.Set(nil)

	if devicePick != nil {
		devicePick()
	}
}

// ForceResume is invoked when the helper dies while the desktop is locked,
// or when an unlock is requested with no live helper: bypass PREPARE and go
// straight to resuming.
func (s *Session) ForceResume() {
	s.ResumeDesktop(nil)
}
