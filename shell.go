// Package shell wires internal/stack, internal/lock, internal/grab,
// internal/transfer, and internal/xbridge together behind host- and
// client-facing interfaces. Shell is the one place that owns every
// subsystem's lifetime and translates host/protocol calls into the right
// sequence of internal package calls.
package shell

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/andr2000/weston-shell/internal/config"
	"github.com/andr2000/weston-shell/internal/grab"
	"github.com/andr2000/weston-shell/internal/lock"
	"github.com/andr2000/weston-shell/internal/model"
	"github.com/andr2000/weston-shell/internal/stack"
	"github.com/andr2000/weston-shell/internal/transfer"
	"github.com/andr2000/weston-shell/internal/xbridge"
)

var (
	// ErrCannotGrab is returned by Move/Resize when the target surface is
	// the panel, the background, or fullscreen, per stack.Policy.CanGrab.
	ErrCannotGrab = errors.New("shell: surface does not accept move/resize")
	// ErrDeviceBusy is returned when a device already owns an active grab;
	// at most one grab is ever live per device.
	ErrDeviceBusy = errors.New("shell: device already has an active grab")
	// ErrPermissionDenied is returned by BindDesktopShell for any binder
	// that isn't the one trusted helper process.
	ErrPermissionDenied = errors.New("shell: desktop_shell is helper-only")
)

// activeGrab holds exactly one of the three grab variants a device can be
// in the middle of; internal/grab has no single Grab interface because the
// three OnMotion signatures genuinely differ, so the shell switches on
// which field is set instead.
type activeGrab struct {
	move   *grab.Move
	resize *grab.Resize
	drag   *grab.Drag
}

// Shell is the root orchestrator: one instance per running compositor
// plugin instance.
type Shell struct {
	Policy  *stack.Policy
	Lock    *lock.Session
	Bureau  *transfer.Bureau
	Bridge  *xbridge.Bridge // nil if the X bridge was never attached
	Outputs []model.Output

	Log zerolog.Logger

	grabs       map[model.InputDevice]*activeGrab
	idleTimeout time.Duration
}

// New builds a Shell with a fresh stack.Policy, lock.Session, and
// transfer.Bureau. bridge may be nil if this compositor instance has no
// legacy-X11 support compiled in.
func New(log zerolog.Logger, helper lock.Helper, devices lock.Devices, bridge *xbridge.Bridge) *Shell {
	policy := stack.NewPolicy(log)
	return &Shell{
		Policy: policy,
		Lock:   lock.New(policy, helper, devices, log),
		Bureau: transfer.NewBureau(log),
		Bridge: bridge,
		Log:    log,
		grabs:  make(map[model.InputDevice]*activeGrab),
	}
}

// xFocuser adapts Bridge's attached WM to stack.XFocuser, or returns nil if
// no WM is attached — stack.Policy.Activate already treats a nil XFocuser
// as "not an X client" (surf.XID is also checked there).
func (s *Shell) xFocuser() stack.XFocuser {
	if s.Bridge == nil {
		return nil
	}
	if wm := s.Bridge.WM(); wm != nil {
		return wm
	}
	return nil
}

// --- Host-facing interface ---

// Activate implements activate(surface, device, time).
func (s *Shell) Activate(surf *model.Surface, dev model.InputDevice) {
	s.Policy.Activate(surf, dev, s.xFocuser())
}

// LockDesktop implements lock().
func (s *Shell) LockDesktop() { s.Lock.Lock() }

// UnlockDesktop implements unlock() (the host-initiated wake path).
func (s *Shell) UnlockDesktop() { s.Lock.Unlock() }

// Map implements map(surface, width, height).
func (s *Shell) Map(surf *model.Surface, w, h int) {
	s.Policy.Map(surf, w, h, s.Lock.Hidden)
}

// Configure implements configure(surface, x, y, width, height).
func (s *Shell) Configure(surf *model.Surface, x, y, w, h int) {
	s.Policy.Configure(surf, x, y, w, h)
}

// SetSelectionFocus implements set_selection_focus(selection, surface, time).
func (s *Shell) SetSelectionFocus(dev model.InputDevice, surf *model.Surface) {
	s.Bureau.SetSelectionFocus(dev, surf)
}

// --- shell-interface client requests ---

// Move implements the shell interface's move(surface, device) request.
func (s *Shell) Move(surf *model.Surface, dev model.InputDevice) error {
	if !s.Policy.CanGrab(surf) {
		return ErrCannotGrab
	}
	if _, busy := s.grabs[dev]; busy {
		return ErrDeviceBusy
	}
	px, py := dev.GrabPosition()
	mv := grab.NewMove(surf, px, py)
	s.grabs[dev] = &activeGrab{move: mv}
	dev.SetCursor(mv.Cursor())
	return nil
}

// Resize implements the shell interface's resize(surface, device, edges)
// request. reply is the protocol resource the resize grab posts
// SHELL_CONFIGURE events to.
func (s *Shell) Resize(surf *model.Surface, dev model.InputDevice, edges grab.Edges, reply grab.ReplyChannel) error {
	if !s.Policy.CanGrab(surf) {
		return ErrCannotGrab
	}
	if _, busy := s.grabs[dev]; busy {
		return ErrDeviceBusy
	}
	ax, ay := dev.GrabPosition()
	rz, err := grab.NewResize(surf, edges, ax, ay, reply)
	if err != nil {
		return err
	}
	s.grabs[dev] = &activeGrab{resize: rz}
	dev.SetCursor(rz.Cursor())
	return nil
}

// SetToplevel implements set_toplevel(surface).
func (s *Shell) SetToplevel(surf *model.Surface) { s.Policy.SetToplevel(surf) }

// SetTransient implements set_transient(surface, parent, x, y, flags).
func (s *Shell) SetTransient(surf, parent *model.Surface, x, y int) {
	s.Policy.SetTransient(surf, parent, x, y)
}

// SetFullscreen implements set_fullscreen(surface, method, framerate, output).
func (s *Shell) SetFullscreen(surf *model.Surface) {
	s.Policy.SetFullscreen(surf, s.Outputs)
}

// --- drag/selection requests ---

// CreateDrag implements create_drag_source → drag_offer.offer(mime)*; the
// returned DragOffer is not yet grabbing anything until ActivateDrag runs.
func (s *Shell) CreateDrag(source *model.Surface, sourceSink transfer.DragSourceSink, mimes []string, sink transfer.DragSink) *transfer.DragOffer {
	return transfer.NewDragOffer(source, sourceSink, mimes, sink, s.Log)
}

// ActivateDrag implements drag_offer.activate(surface, device): installs the
// DRAG grab on dev, bridging grab.Sink to offer via dragGrabSink.
func (s *Shell) ActivateDrag(offer *transfer.DragOffer, dev model.InputDevice) error {
	if _, busy := s.grabs[dev]; busy {
		return ErrDeviceBusy
	}
	d := grab.NewDrag(&dragGrabSink{offer: offer, device: dev})
	s.grabs[dev] = &activeGrab{drag: d}
	s.Bureau.StartDrag(dev, offer)
	dev.SetCursor(d.Cursor())
	return nil
}

// CreateSelection implements create_selection_source → selection_offer.offer(mime)*.
func (s *Shell) CreateSelection(source transfer.SelectionSourceSink, mimes []string, dev model.InputDevice, resolveSink func(*model.Surface) transfer.SelectionSink) *transfer.Selection {
	return transfer.NewSelection(source, mimes, dev, resolveSink, s.Log)
}

// ActivateSelection implements selection_offer.activate(device): no grab is
// installed — selections follow keyboard focus, not the pointer — so this
// just installs sel as dev's current selection.
func (s *Shell) ActivateSelection(sel *transfer.Selection, dev model.InputDevice) {
	s.Bureau.SetSelection(dev, sel)
}

// --- pointer event plumbing ---

// PointerMotion dispatches a pointer-motion event to whichever grab variant
// dev currently owns, if any.
func (s *Shell) PointerMotion(dev model.InputDevice, time uint32, x, y int) {
	g, ok := s.grabs[dev]
	if !ok {
		return
	}
	switch {
	case g.move != nil:
		g.move.OnMotion(s.Policy, x, y)
	case g.resize != nil:
		g.resize.OnMotion(time, x, y)
	case g.drag != nil:
		g.drag.OnMotion(time, x, y)
	}
}

// PointerButtonRelease ends dev's active grab, if any (a
// grab ends on release of the button that started it).
func (s *Shell) PointerButtonRelease(dev model.InputDevice, time uint32) {
	g, ok := s.grabs[dev]
	if !ok {
		return
	}
	switch {
	case g.move != nil:
		g.move.OnEnd()
	case g.resize != nil:
		g.resize.OnEnd()
	case g.drag != nil:
		g.drag.OnEnd(dev.PickSurface() != nil)
		s.Bureau.EndDrag(dev)
	}
	delete(s.grabs, dev)
	dev.SetCursor(model.CursorDefault)
}

// HandleButtonBinding implements compositor-bound click behavior: a plain
// button press (no client cooperation) either starts a move/resize grab
// per kb, or — with ClickToActivate set and no binding matched — just
// activates the surface under the pointer.
func (s *Shell) HandleButtonBinding(dev model.InputDevice, button int, modifiers []string, time uint32, kb *config.Keybindings, reply grab.ReplyChannel) {
	surf := dev.PickSurface()
	if surf == nil {
		return
	}
	if !s.Policy.CanGrab(surf) {
		if kb.ClickToActivate {
			s.Activate(surf, dev)
		}
		return
	}
	switch {
	case bindingMatches(kb.Move, button, modifiers):
		_ = s.Move(surf, dev)
	case bindingMatches(kb.Resize, button, modifiers):
		ax, ay := dev.GrabPosition()
		edges := stack.ImplicitResizeEdges(surf, ax, ay)
		if edges.Valid() {
			_ = s.Resize(surf, dev, edges, reply)
		}
	case kb.ClickToActivate:
		s.Activate(surf, dev)
	}
}

func bindingMatches(b config.Binding, button int, modifiers []string) bool {
	if b.Button != button || len(b.Modifiers) != len(modifiers) {
		return false
	}
	held := make(map[string]bool, len(modifiers))
	for _, m := range modifiers {
		held[m] = true
	}
	for _, m := range b.Modifiers {
		if !held[m] {
			return false
		}
	}
	return true
}

// dragGrabSink adapts a *transfer.DragOffer to grab.Sink. The two don't
// match structurally: DragOffer.Motion needs the surface currently under
// the pointer (the grab package has no surface-picking concept of its own),
// and DragOffer.End needs a timestamp that grab.Sink.End doesn't carry, so
// this tracks the last motion time itself and reuses it at end-of-drag.
type dragGrabSink struct {
	offer    *transfer.DragOffer
	device   model.InputDevice
	lastTime uint32
}

func (d *dragGrabSink) FocusChanged(time uint32, from, to *model.Surface) {
	// DragOffer resolves focus transitions itself from the picked surface
	// passed into Motion; nothing else to forward here.
}

func (d *dragGrabSink) Motion(time uint32, x, y int) {
	d.lastTime = time
	d.offer.Motion(time, x, y, d.device.PickSurface())
}

func (d *dragGrabSink) End(dropped bool) {
	d.offer.End(d.lastTime)
}
