package xbridge

import (
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/andr2000/weston-shell/internal/model"
)

// Run pumps the WM connection in its own goroutine, funneling every
// decoded X event back through done so the actual window-map and surface
// mutation happens on the host's own turn — the same single-channel
// funnel internal/procsup uses for child reaping, since xgb's
// WaitForEvent is itself a blocking call with no non-blocking or
// fd-registration counterpart exposed to callers. The host drains done
// from its own poll loop; each value means "at least one event is ready,
// call Drain". stop is Close: WaitForEvent only returns once the
// connection itself is gone, so there is no separate quiescent stop state.
func (w *WM) Run() (done <-chan struct{}, stop func()) {
	out := make(chan struct{}, 1)
	w.mu() // allocate the queue before the pump goroutine and Drain can race for it
	go func() {
		for {
			ev, err := w.conn.WaitForEvent()
			if err != nil {
				w.log.Debug().Err(err).Msg("xbridge: WM connection closed")
				return
			}
			if ev == nil {
				continue
			}
			w.enqueue(ev)
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, w.Close
}

// enqueue appends ev to the pending slice drained by Drain on the host's
// turn.
func (w *WM) enqueue(ev xgb.Event) {
	box := w.mu()
	box.lock.Lock()
	box.pending = append(box.pending, ev)
	box.lock.Unlock()
}

// pendingBox is the queue between Run's goroutine, which only ever appends,
// and Drain (called from the host's single-threaded turn), which only ever
// drains. lock guards pending, the same way procsup's pendingMu guards its
// queue of reap results.
type pendingBox struct {
	lock    sync.Mutex
	pending []xgb.Event
}

func (w *WM) mu() *pendingBox {
	if w.pendingBox == nil {
		w.pendingBox = &pendingBox{}
	}
	return w.pendingBox
}

// Drain processes every event queued since the last call and flushes the
// connection afterward.
func (w *WM) Drain() {
	box := w.mu()
	box.lock.Lock()
	events := box.pending
	box.pending = nil
	box.lock.Unlock()
	for _, ev := range events {
		w.dispatch(ev)
	}
	w.conn.Sync()
}

func (w *WM) dispatch(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.CreateNotifyEvent:
		w.onCreateNotify(e)
	case xproto.MapRequestEvent:
		w.onMapRequest(e)
	case xproto.MapNotifyEvent:
		w.onMapNotify(e)
	case xproto.ConfigureRequestEvent:
		w.onConfigureRequest(e)
	case xproto.DestroyNotifyEvent:
		w.onDestroyNotify(e)
	case xproto.PropertyNotifyEvent:
		w.onPropertyNotify(e)
	case xproto.SelectionNotifyEvent:
		w.onSelectionNotify(e)
	default:
		w.dispatchXFixes(ev)
	}
}

// onCreateNotify: "Insert a fresh WM window into the map."
func (w *WM) onCreateNotify(e xproto.CreateNotifyEvent) {
	if e.Window == w.selWin {
		return
	}
	if _, exists := w.windows[e.Window]; exists {
		return
	}
	w.windows[e.Window] = &Window{XID: e.Window}
}

// onMapRequest: "Enable property-change events, map the window."
func (w *WM) onMapRequest(e xproto.MapRequestEvent) {
	xproto.ChangeWindowAttributesChecked(w.conn, e.Window, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check()
	xproto.MapWindowChecked(w.conn, e.Window).Check()
}

// onMapNotify: "Fetch WM_CLASS, WM_TRANSIENT_FOR, WM_PROTOCOLS,
// _NET_WM_WINDOW_TYPE, _NET_WM_NAME; activate."
func (w *WM) onMapNotify(e xproto.MapNotifyEvent) {
	win, ok := w.windows[e.Window]
	if !ok {
		win = &Window{XID: e.Window}
		w.windows[e.Window] = win
	}

	props := w.fetchProps(e.Window)
	win.Class = props.class
	win.Name = props.name
	win.Protocols = props.protocols
	win.WindowType = props.windowType
	win.propsFetched = true

	if props.transientFor != 0 {
		var parent *model.Surface
		if parentWin, ok := w.windows[props.transientFor]; ok {
			parent = parentWin.Surface
		}
		win.TransientFor = model.NewWeakSurface(parent)
	}

	if win.Surface == nil {
		win.Surface = w.host.NewXSurface(uint32(e.Window))
	}
	if win.Surface != nil {
		w.host.Activate(win.Surface)
	}
}

// onConfigureRequest: "Forward configure with supplied value-mask."
func (w *WM) onConfigureRequest(e xproto.ConfigureRequestEvent) {
	var mask uint16
	var values []uint32
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		mask |= xproto.ConfigWindowX
		values = append(values, uint32(e.X))
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		mask |= xproto.ConfigWindowY
		values = append(values, uint32(e.Y))
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		mask |= xproto.ConfigWindowWidth
		values = append(values, uint32(e.Width))
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		mask |= xproto.ConfigWindowHeight
		values = append(values, uint32(e.Height))
	}
	if e.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(e.BorderWidth))
	}
	if e.ValueMask&xproto.ConfigWindowSibling != 0 {
		mask |= xproto.ConfigWindowSibling
		values = append(values, uint32(e.Sibling))
	}
	if e.ValueMask&xproto.ConfigWindowStackMode != 0 {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, uint32(e.StackMode))
	}
	xproto.ConfigureWindowChecked(w.conn, e.Window, mask, values).Check()
}

// onDestroyNotify: "Remove from map; detach surface listener; free."
func (w *WM) onDestroyNotify(e xproto.DestroyNotifyEvent) {
	win, ok := w.windows[e.Window]
	if !ok {
		return
	}
	delete(w.windows, e.Window)
	w.propLRU.Remove(e.Window)
	if win.destroyUnhook != nil {
		win.destroyUnhook()
	}
}

// onPropertyNotify: clipboard INCR chunk reads table
// row "PROPERTY_NOTIFY on selection_window + atom = _WL_SELECTION while
// INCR mode".
func (w *WM) onPropertyNotify(e xproto.PropertyNotifyEvent) {
	if e.Window != w.selWin || e.Atom != w.atoms.WLSelection {
		return
	}
	if e.State != xproto.PropertyNewValue {
		return
	}
	if !w.clip.incrInProgress {
		return
	}
	w.readIncrChunk()
}

// onSelectionNotify: "If target=TARGETS: rebuild native selection; else:
// start reading selection data."
func (w *WM) onSelectionNotify(e xproto.SelectionNotifyEvent) {
	if e.Selection != w.atoms.Clipboard || e.Property == 0 {
		return
	}
	if e.Target == w.atoms.Targets {
		w.rebuildNativeSelection()
		return
	}
	w.beginReceiveSelection()
}

// Window looks up a tracked WM window by xid.
func (w *WM) Window(xid uint32) *Window {
	return w.windows[xproto.Window(xid)]
}

// BindSurface implements xserver.set_window_id: the xid's Window record
// gets a back-pointer to surf, and a destroy listener so a later
// DESTROY_NOTIFY detaches cleanly even if the native surface dies first.
func (w *WM) BindSurface(xid uint32, surf *model.Surface) {
	win, ok := w.windows[xproto.Window(xid)]
	if !ok {
		win = &Window{XID: xproto.Window(xid)}
		w.windows[xproto.Window(xid)] = win
	}
	win.Surface = surf
	live := true
	win.destroyUnhook = func() { live = false }
	surf.OnDestroy(func(*model.Surface) {
		if live && win.Surface == surf {
			win.Surface = nil
		}
	})
}

// TakeFocus implements Activate's X-backed branch: activation must emit
// WM_PROTOCOLS/WM_TAKE_FOCUS and SetInputFocus(POINTER_ROOT, xid).
func (w *WM) TakeFocus(xid uint32) {
	win, ok := w.windows[xproto.Window(xid)]
	if !ok {
		return
	}
	if win.Protocols.Has(ProtocolTakeFocus) {
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: win.XID,
			Type:   w.atoms.WMProtocols,
			Data: xproto.ClientMessageDataUnionData32New([]uint32{
				uint32(w.atoms.WMTakeFocus), xproto.TimeCurrentTime, 0, 0, 0,
			}),
		}
		xproto.SendEventChecked(w.conn, false, win.XID, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
	}
	xproto.SetInputFocusChecked(w.conn, xproto.InputFocusPointerRoot, win.XID, xproto.TimeCurrentTime).Check()
}
