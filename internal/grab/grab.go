// Package grab implements the pointer grab machine: move, resize, and
// drag are a tagged sum dispatched through one event method, replacing a
// vtable of three function pointers.
package grab

import (
	"errors"

	"github.com/andr2000/weston-shell/internal/model"
)

// Edges is the 4-bit resize edge mask from.
type Edges uint8

const (
	EdgeTop    Edges = 1 << 0
	EdgeBottom Edges = 1 << 1
	EdgeLeft   Edges = 1 << 2
	EdgeRight  Edges = 1 << 3
)

// ErrInvalidEdges is returned when a resize request's mask is out of range
// or sets opposing edges simultaneously/S2.
var ErrInvalidEdges = errors.New("grab: invalid resize edge mask")

// Valid reports whether e is one of the 8 accepted non-empty edge
// combinations: in 1..=15 and never both LEFT+RIGHT or both TOP+BOTTOM.
func (e Edges) Valid() bool {
	if e == 0 || e > 15 {
		return false
	}
	if e&EdgeLeft != 0 && e&EdgeRight != 0 {
		return false
	}
	if e&EdgeTop != 0 && e&EdgeBottom != 0 {
		return false
	}
	return true
}

// Cursor maps a validated edge mask to the cursor says it
// should show; callers must check Valid() first.
func (e Edges) Cursor() model.CursorImage {
	top, bottom := e&EdgeTop != 0, e&EdgeBottom != 0
	left, right := e&EdgeLeft != 0, e&EdgeRight != 0
	switch {
	case top && left:
		return model.CursorResizeTopLeft
	case top && right:
		return model.CursorResizeTopRight
	case bottom && left:
		return model.CursorResizeBottomLeft
	case bottom && right:
		return model.CursorResizeBottomRight
	case top:
		return model.CursorResizeTop
	case bottom:
		return model.CursorResizeBottom
	case left:
		return model.CursorResizeLeft
	case right:
		return model.CursorResizeRight
	default:
		return model.CursorDefault
	}
}

// ReplyChannel is how a Resize grab tells its owning protocol resource to
// emit SHELL_CONFIGURE, kept as a narrow interface so this package doesn't
// need to know about the wire codec.
type ReplyChannel interface {
	Configure(time uint32, edges Edges, surface *model.Surface, w, h int)
}

// Configurer is the callback a Move grab uses to reposition the surface;
// the shell's stack.Policy implements it.
type Configurer interface {
	Configure(s *model.Surface, x, y, w, h int)
}

// Move is the MOVE grab variant.
type Move struct {
	Surface *model.Surface
	DX, DY  int
}

// NewMove computes the pointer-to-surface offset at grab install time.
func NewMove(s *model.Surface, pointerX, pointerY int) *Move {
	return &Move{Surface: s, DX: s.X - pointerX, DY: s.Y - pointerY}
}

func (m *Move) OnMotion(cfg Configurer, x, y int) {
	cfg.Configure(m.Surface, x+m.DX, y+m.DY, m.Surface.W, m.Surface.H)
}
func (m *Move) OnButton(pressed bool) {}
func (m *Move) OnEnd()                {}
func (m *Move) Cursor() model.CursorImage { return model.CursorDragging }

// Resize is the RESIZE grab variant.
type Resize struct {
	Surface                *model.Surface
	Edges                   Edges
	AnchorX, AnchorY        int
	InitialW, InitialH      int
	Reply                   ReplyChannel
}

// NewResize validates edges and returns a Resize grab, or ErrInvalidEdges.
func NewResize(s *model.Surface, edges Edges, anchorX, anchorY int, reply ReplyChannel) (*Resize, error) {
	if !edges.Valid() {
		return nil, ErrInvalidEdges
	}
	return &Resize{
		Surface:  s,
		Edges:    edges,
		AnchorX:  anchorX,
		AnchorY:  anchorY,
		InitialW: s.W,
		InitialH: s.H,
		Reply:    reply,
	}, nil
}

func (r *Resize) Cursor() model.CursorImage { return r.Edges.Cursor() }

// OnMotion derives the new width/height from the anchor and active edges
// and posts a SHELL_CONFIGURE to the owning client. The
// shell does not resize the surface itself — that's the client's decision.
func (r *Resize) OnMotion(time uint32, x, y int) {
	w, h := r.InitialW, r.InitialH
	switch {
	case r.Edges&EdgeLeft != 0:
		w = r.AnchorX - x + r.InitialW
	case r.Edges&EdgeRight != 0:
		w = x - r.AnchorX + r.InitialW
	}
	switch {
	case r.Edges&EdgeTop != 0:
		h = r.AnchorY - y + r.InitialH
	case r.Edges&EdgeBottom != 0:
		h = y - r.AnchorY + r.InitialH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	r.Reply.Configure(time, r.Edges, r.Surface, w, h)
}
func (r *Resize) OnButton(pressed bool) {}
func (r *Resize) OnEnd()                {}

// Sink is the narrow protocol surface a Drag grab emits events through;
// the root shell package's dragGrabSink implements it on top of a
// transfer.DragOffer.
type Sink interface {
	FocusChanged(time uint32, from, to *model.Surface)
	Motion(time uint32, x, y int)
	End(dropped bool)
}

// Drag is the DRAG grab variant; most of its logic lives in
// internal/transfer, reached through Sink. The grab itself only tracks
// pointer movement and end-of-grab.
type Drag struct {
	Sink Sink
}

func NewDrag(sink Sink) *Drag { return &Drag{Sink: sink} }

func (d *Drag) Cursor() model.CursorImage { return model.CursorDragging }
func (d *Drag) OnMotion(time uint32, x, y int) {
	d.Sink.Motion(time, x, y)
}
func (d *Drag) OnButton(pressed bool) {}
func (d *Drag) OnEnd(dropped bool)    { d.Sink.End(dropped) }
