// Package transfer implements the drag-offer and selection-offer bureau,
// including cross-client focus handover ordering.
package transfer

import (
	"github.com/rs/zerolog"

	"github.com/andr2000/weston-shell/internal/model"
)

// DragSink is the per-recipient protocol object the shell emits drag
// events through. internal/transfer never constructs the wire resource
// itself — the client-facing protocol layer supplies one per client.
type DragSink interface {
	PointerFocus(time uint32, surf *model.Surface, x, y, sx, sy int)
	Offer(mime string)
	Motion(time uint32, x, y, sx, sy int)
	Drop()
}

// DragSourceSink is the drag *source*'s protocol object: it receives
// FINISH/TARGET events back from the shell.
type DragSourceSink interface {
	Target(mime string, ok bool)
	Finish(fd int)
}

// SelectionSourceSink is the selection *source*'s protocol object.
type SelectionSourceSink interface {
	Cancelled()
	Send(mime string, fd int)
}

// DragOffer tracks one active drag-and-drop operation.
type DragOffer struct {
	Source      *model.Surface
	SourceSink  DragSourceSink
	MimeTypes   []string
	Sink        DragSink

	focus            *model.Surface
	focusClient      model.Client
	pointerFocusTime uint32

	targetClient model.Client
	chosenMime   string
	haveTarget   bool

	Log zerolog.Logger
}

// NewDragOffer constructs an offer from the MIME types advertised via
// zero-or-more offer(type) calls before activate(surface, device).
func NewDragOffer(source *model.Surface, sourceSink DragSourceSink, mimes []string, sink DragSink, log zerolog.Logger) *DragOffer {
	return &DragOffer{Source: source, SourceSink: sourceSink, MimeTypes: append([]string(nil), mimes...), Sink: sink, Log: log}
}

// Motion handles one drag-grab motion, given the surface under the pointer
// (picked by the caller; the shell's grab.Sink adapter does the picking), and
// on a cross-client transition emits POINTER_FOCUS(null) to the old
// owner and OFFER+POINTER_FOCUS to the new one, in that order, before
// any MOTION.
func (d *DragOffer) Motion(time uint32, x, y int, picked *model.Surface) {
	if picked == nil {
		d.retractFocus(time)
		return
	}
	if !model.SameClient(picked, d.focus) || d.focus == nil {
		d.handover(time, picked, x, y)
		return
	}
	d.Sink.Motion(time, x, y, x-picked.X, y-picked.Y)
}

func (d *DragOffer) retractFocus(time uint32) {
	if d.focus == nil {
		return
	}
	d.Sink.PointerFocus(time, nil, 0, 0, 0, 0)
	d.focus = nil
	d.focusClient = nil
	d.pointerFocusTime = time
}

func (d *DragOffer) handover(time uint32, picked *model.Surface, x, y int) {
	if d.focus != nil {
		d.Sink.PointerFocus(time, nil, 0, 0, 0, 0)
	}
	for _, mime := range d.MimeTypes {
		d.Sink.Offer(mime)
	}
	sx, sy := x-picked.X, y-picked.Y
	d.Sink.PointerFocus(time, picked, x, y, sx, sy)
	d.focus = picked
	d.focusClient = picked.Client
	d.pointerFocusTime = time
}

// Accept implements the receiver's accept(time, mime) request. Requests
// with time older than the current pointer-focus transition are discarded
// as stale and scenario S6.
func (d *DragOffer) Accept(time uint32, mime string, ok bool) {
	if time < d.pointerFocusTime {
		return
	}
	d.targetClient = d.focusClient
	d.haveTarget = false
	if ok {
		for _, m := range d.MimeTypes {
			if m == mime {
				d.chosenMime = mime
				d.haveTarget = true
				break
			}
		}
	}
	d.SourceSink.Target(d.chosenMime, d.haveTarget)
}

// Receive implements receive(fd) on the offer: forwards FINISH(fd) to the
// source and closes the local fd (the kernel retains the peer open via
// SCM_RIGHTS).
func (d *DragOffer) Receive(fd int, closeFD func(int) error) error {
	d.SourceSink.Finish(fd)
	return closeFD(fd)
}

// End implements grab end-of-drag: DROP if a target was recorded, always
// retract focus afterward.
func (d *DragOffer) End(time uint32) {
	if d.haveTarget {
		d.Sink.Drop()
	}
	d.retractFocus(time)
}

// SelectionSink is the per-recipient protocol object the shell emits
// selection events through.
type SelectionSink interface {
	Offer(mime string)
	KeyboardFocus(device model.InputDevice)
}

// Selection tracks one input device's current clipboard selection, per
// keyboard-focus-driven protocol.
type Selection struct {
	MimeTypes  []string
	SourceSink SelectionSourceSink

	focus       *model.Surface
	focusSinkOf func(*model.Surface) SelectionSink // resolves a surface's client to its offer sink
	device      model.InputDevice

	Log zerolog.Logger
}

// NewSelection constructs a selection; resolveSink maps a newly-focused
// surface to the SelectionSink its owning client should receive OFFER/
// KEYBOARD_FOCUS events on (the protocol layer keeps one offer resource per
// client connection).
func NewSelection(source SelectionSourceSink, mimes []string, device model.InputDevice, resolveSink func(*model.Surface) SelectionSink, log zerolog.Logger) *Selection {
	return &Selection{SourceSink: source, MimeTypes: append([]string(nil), mimes...), device: device, focusSinkOf: resolveSink, Log: log}
}

// Cancel emits CANCELLED to this selection's own source, per "activating a
// new selection cancels the previous one".
func (s *Selection) Cancel() {
	if s.SourceSink != nil {
		s.SourceSink.Cancelled()
	}
}

// FocusChanged mirrors drag focus tracking for the keyboard: OFFER to the
// new focus for every MIME then KEYBOARD_FOCUS(device-surface); to the
// previous focus (if different), KEYBOARD_FOCUS(null).
func (s *Selection) FocusChanged(newFocus *model.Surface) {
	if s.focus == newFocus {
		return
	}
	old := s.focus
	if old != nil {
		if sink := s.focusSinkOf(old); sink != nil {
			sink.KeyboardFocus(nil)
		}
	}
	s.focus = newFocus
	if newFocus != nil {
		if sink := s.focusSinkOf(newFocus); sink != nil {
			for _, mime := range s.MimeTypes {
				sink.Offer(mime)
			}
			sink.KeyboardFocus(s.device)
		}
	}
}

// Receive implements receive(mime, fd) on the selection offer: posts
// SEND(mime, fd) to the source and closes the local fd.
func (s *Selection) Receive(mime string, fd int, closeFD func(int) error) error {
	s.SourceSink.Send(mime, fd)
	return closeFD(fd)
}

// Bureau owns the one-active-grab/one-active-selection-per-device
// invariant from (invariant 4).
type Bureau struct {
	dragByDevice      map[model.InputDevice]*DragOffer
	selectionByDevice map[model.InputDevice]*Selection
	Log               zerolog.Logger
}

func NewBureau(log zerolog.Logger) *Bureau {
	return &Bureau{
		dragByDevice:      make(map[model.InputDevice]*DragOffer),
		selectionByDevice: make(map[model.InputDevice]*Selection),
		Log:               log,
	}
}

func (b *Bureau) StartDrag(dev model.InputDevice, offer *DragOffer) {
	b.dragByDevice[dev] = offer
}
func (b *Bureau) EndDrag(dev model.InputDevice) { delete(b.dragByDevice, dev) }
func (b *Bureau) Drag(dev model.InputDevice) *DragOffer { return b.dragByDevice[dev] }

// SetSelection installs a new selection on dev, cancelling any previous one
// first (CANCELLED precedes the first OFFER of the new one).
func (b *Bureau) SetSelection(dev model.InputDevice, sel *Selection) {
	if prev, ok := b.selectionByDevice[dev]; ok && prev != nil {
		prev.Cancel()
	}
	b.selectionByDevice[dev] = sel
	sel.FocusChanged(dev.KeyboardFocus())
}

func (b *Bureau) Selection(dev model.InputDevice) *Selection { return b.selectionByDevice[dev] }

// SetSelectionFocus implements the host-facing
// set_selection_focus(selection, surface, time) interface from.
func (b *Bureau) SetSelectionFocus(dev model.InputDevice, surf *model.Surface) {
	if sel := b.selectionByDevice[dev]; sel != nil {
		sel.FocusChanged(surf)
	}
}
