// Package stack implements the front-to-back surface list and the
// policy for mapping, activating, configuring, and placing surfaces.
package stack

import (
	"container/list"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/andr2000/weston-shell/internal/grab"
	"github.com/andr2000/weston-shell/internal/model"
)

// List is the ordered, front-to-back (topmost-first) stacking list. It
// holds no ownership of the surfaces it threads — ownership stays with the
// compositor's surface registry.
type List struct {
	l *list.List
	// elem indexes a surface back to its list.Element so Remove/Promote is
	// O(1) instead of a linear scan.
	elem map[*model.Surface]*list.Element
}

func NewList() *List {
	return &List{l: list.New(), elem: make(map[*model.Surface]*list.Element)}
}

func (s *List) Len() int { return s.l.Len() }

// Contains reports whether surf is currently in this list.
func (s *List) Contains(surf *model.Surface) bool {
	_, ok := s.elem[surf]
	return ok
}

// PushFront inserts surf at the topmost position.
func (s *List) PushFront(surf *model.Surface) {
	s.remove(surf)
	s.elem[surf] = s.l.PushFront(surf)
}

// PushBack inserts surf at the bottommost position.
func (s *List) PushBack(surf *model.Surface) {
	s.remove(surf)
	s.elem[surf] = s.l.PushBack(surf)
}

// InsertAfter inserts surf immediately below mark (mark must already be in
// the list); if mark is nil, behaves like PushFront.
func (s *List) InsertAfter(surf, mark *model.Surface) {
	s.remove(surf)
	markElem, ok := s.elem[mark]
	if mark == nil || !ok {
		s.elem[surf] = s.l.PushFront(surf)
		return
	}
	s.elem[surf] = s.l.InsertAfter(surf, markElem)
}

// InsertBefore inserts surf immediately above mark (mark must already be in
// the list); if mark is nil, behaves like PushFront.
func (s *List) InsertBefore(surf, mark *model.Surface) {
	s.remove(surf)
	markElem, ok := s.elem[mark]
	if mark == nil || !ok {
		s.elem[surf] = s.l.PushFront(surf)
		return
	}
	s.elem[surf] = s.l.InsertBefore(surf, markElem)
}

// Remove takes surf out of the list; a no-op if it isn't in it.
func (s *List) Remove(surf *model.Surface) { s.remove(surf) }

func (s *List) remove(surf *model.Surface) {
	if e, ok := s.elem[surf]; ok {
		s.l.Remove(e)
		delete(s.elem, surf)
	}
}

// Front returns the topmost surface, or nil if empty.
func (s *List) Front() *model.Surface {
	if e := s.l.Front(); e != nil {
		return e.Value.(*model.Surface)
	}
	return nil
}

// Each calls fn front-to-back; fn returning false stops iteration early.
func (s *List) Each(fn func(*model.Surface) bool) {
	for e := s.l.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(*model.Surface)) {
			return
		}
	}
}

// Slice materializes the list front-to-back. Intended for tests and for
// the lock subsystem's splice-back.
func (s *List) Slice() []*model.Surface {
	out := make([]*model.Surface, 0, s.l.Len())
	s.Each(func(surf *model.Surface) bool {
		out = append(out, surf)
		return true
	})
	return out
}

// Policy implements placement, activation, and configure
// rewriting rules against one visible List.
type Policy struct {
	Visible *List

	Panel      *model.WeakSurface
	Background *model.WeakSurface
	LockSurface *model.WeakSurface

	// Locked mirrors the session-lock state (internal/lock owns the
	// transitions; stack only needs to read it to decide insertion order).
	Locked func() bool

	// BindClickToActivate is not read by Policy or by the root shell
	// package; click-to-activate is switched by
	// config.Keybindings.ClickToActivate in Shell.HandleButtonBinding.
	BindClickToActivate bool

	// FullscreenBackdrop, when non-nil, builds a backdrop that SetFullscreen
	// inserts directly behind the surface (when the surface is in Visible)
	// and SetToplevel removes again. It is compositor-owned scratch state,
	// not a client surface, so it never appears in Visible's client-facing
	// invariants.
	FullscreenBackdrop func(output model.Output) *model.Surface
	backdrops          map[*model.Surface]*model.Surface

	Log zerolog.Logger

	rng *rand.Rand
}

func NewPolicy(log zerolog.Logger) *Policy {
	return &Policy{
		Visible:     NewList(),
		Panel:       model.NewWeakSurface(nil),
		Background:  model.NewWeakSurface(nil),
		LockSurface: model.NewWeakSurface(nil),
		Locked:      func() bool { return false },
		backdrops:   make(map[*model.Surface]*model.Surface),
		Log:         log,
		rng:         rand.New(rand.NewSource(1)),
	}
}

// insertOrdinary places a newly-mapped, non-distinguished surface
// immediately below the panel.
func (p *Policy) insertOrdinary(surf *model.Surface) {
	p.Visible.InsertAfter(surf, p.Panel.Get())
}

// reflow re-establishes the background-at-tail, lock-then-panel-at-head
// invariant from without touching ordinary surfaces' relative
// order. Call after Panel/Background/LockSurface identity changes.
func (p *Policy) reflow() {
	if bg := p.Background.Get(); bg != nil {
		p.Visible.PushBack(bg)
	}
	if panel := p.Panel.Get(); panel != nil && !p.Locked() {
		p.Visible.PushFront(panel)
	}
	if lock := p.LockSurface.Get(); lock != nil {
		p.Visible.PushFront(lock)
	}
}

// HiddenList is the sink for mapped client surfaces while locked; owned by
// internal/lock, but Map needs to know about it to implement // "Map: if locked and surface is not the lock surface, insert into hidden
// list".
type HiddenList interface {
	PushFront(*model.Surface)
}

// Map implements Map(surface, w, h).
func (p *Policy) Map(surf *model.Surface, w, h int, hidden HiddenList) {
	surf.W, surf.H = w, h

	isLockSurface := p.LockSurface.Get() == surf
	if p.Locked() && !isLockSurface {
		hidden.PushFront(surf)
		return
	}

	switch {
	case p.Background.Get() == surf:
		p.Visible.PushBack(surf)
	case p.Panel.Get() == surf && !p.Locked():
		p.Visible.PushFront(surf)
	case isLockSurface:
		p.Visible.PushFront(surf)
	default:
		if surf.MapType == model.Toplevel && surf.X == 0 && surf.Y == 0 {
			surf.X = 10 + p.rng.Intn(400)
			surf.Y = 10 + p.rng.Intn(400)
		}
		p.insertOrdinary(surf)
	}
}

// Activate implements Activate: promote under the panel (or
// to the head with no panel, or while locked), then re-run pointer pick via
// the caller-supplied device, then (if X-backed) hand off to the X bridge
// for WM_TAKE_FOCUS.
type XFocuser interface {
	TakeFocus(xid uint32)
}

func (p *Policy) Activate(surf *model.Surface, device model.InputDevice, xf XFocuser) {
	if p.Locked() {
		p.Visible.PushFront(surf)
	} else {
		p.insertOrdinary(surf)
	}
	_ = device.PickSurface() // re-run pointer pick
	if surf.XID != 0 && xf != nil {
		xf.TakeFocus(surf.XID)
	}
}

// SetToplevel implements Set-toplevel.
func (p *Policy) SetToplevel(surf *model.Surface) {
	if surf.MapType == model.Fullscreen {
		surf.X, surf.Y = surf.SavedX, surf.SavedY
		p.clearBackdrop(surf)
	}
	surf.FullscreenOutput = nil
	surf.MapType = model.Toplevel
}

// SetTransient implements Set-transient(parent, x, y, flags).
func (p *Policy) SetTransient(surf, parent *model.Surface, x, y int) {
	surf.FullscreenOutput = parent.FullscreenOutput
	surf.X = parent.X + x
	surf.Y = parent.Y + y
	surf.MapType = model.Transient
}

// SetFullscreen implements Set-fullscreen: picks the first
// output, saves geometry, centers on the output's current mode.
func (p *Policy) SetFullscreen(surf *model.Surface, outputs []model.Output) {
	if len(outputs) == 0 {
		return
	}
	out := outputs[0]
	surf.SavedX, surf.SavedY = surf.X, surf.Y
	mode := out.CurrentMode()
	surf.X = (mode.Width - surf.W) / 2
	surf.Y = (mode.Height - surf.H) / 2
	surf.MapType = model.Fullscreen
	surf.FullscreenOutput = out

	if p.FullscreenBackdrop != nil {
		p.clearBackdrop(surf)
		bd := p.FullscreenBackdrop(out)
		p.backdrops[surf] = bd
		if bd != nil && p.Visible.Contains(surf) {
			p.Visible.InsertAfter(bd, surf)
		}
	}
}

func (p *Policy) clearBackdrop(surf *model.Surface) {
	if bd := p.backdrops[surf]; bd != nil {
		p.Visible.Remove(bd)
	}
	delete(p.backdrops, surf)
}

// Configure implements Configure(x, y, w, h): fullscreen
// surfaces get x,y overridden to stay centered on their bound output;
// everything else passes through untouched.
func (p *Policy) Configure(surf *model.Surface, x, y, w, h int) {
	surf.W, surf.H = w, h
	if surf.MapType == model.Fullscreen && surf.FullscreenOutput != nil {
		mode := surf.FullscreenOutput.CurrentMode()
		surf.X = (mode.Width - w) / 2
		surf.Y = (mode.Height - h) / 2
		return
	}
	surf.X, surf.Y = x, y
}

// CanGrab rejects move/resize on the panel, background, and fullscreen
// surfaces move/resize bindings rule. The Open Question
// in about a fallthrough control-flow defect is resolved here:
// both checks are independent and either one alone is sufficient to reject.
func (p *Policy) CanGrab(surf *model.Surface) bool {
	if surf.MapType == model.Fullscreen {
		return false
	}
	if p.Panel.Get() == surf || p.Background.Get() == surf {
		return false
	}
	return true
}

// ImplicitResizeEdges derives the edge mask from which third of the
// surface a grab began in.
func ImplicitResizeEdges(surf *model.Surface, x, y int) grab.Edges {
	var e grab.Edges
	third := surf.W / 3
	if third > 0 {
		switch {
		case x < surf.X+third:
			e |= grab.EdgeLeft
		case x > surf.X+2*third:
			e |= grab.EdgeRight
		}
	}
	thirdH := surf.H / 3
	if thirdH > 0 {
		switch {
		case y < surf.Y+thirdH:
			e |= grab.EdgeTop
		case y > surf.Y+2*thirdH:
			e |= grab.EdgeBottom
		}
	}
	return e
}
