package xbridge

import (
	"os"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/andr2000/weston-shell/internal/transfer"
)

// clipboardState is the INCR transfer state: whether a chunked transfer is
// in progress, the target fd, and the MIME types last offered. There is no
// property-reply, write-offset or writable-source field: this module has no
// host-registered writable-fd abstraction, so each chunk is written in full
// with a synchronous retry loop instead (see writeChunk below).
type clipboardState struct {
	incrInProgress bool
	targetFD       *os.File
	mimeTypes      []string
}

func newClipboardState() *clipboardState {
	return &clipboardState{}
}

// ClipboardHost receives the native data source the bridge constructs once
// it learns what MIME types the X side's clipboard owner can produce.
type ClipboardHost interface {
	SetXClipboardSource(mimeTypes []string, source transfer.SelectionSourceSink)
}

// rebuildNativeSelection handles SELECTION_NOTIFY(target=TARGETS): the
// reply property on selWin holds an ATOM list of offered targets. Of
// those, only UTF8_STRING is currently recognized and is mapped to
// "text/plain;charset=utf-8".
func (w *WM) rebuildNativeSelection() {
	reply, err := xproto.GetProperty(w.conn, true, w.selWin, w.atoms.WLSelection,
		xproto.GetPropertyTypeAny, 0, ^uint32(0)).Reply()
	if err != nil || reply == nil {
		w.log.Warn().Err(err).Msg("xbridge: failed to read TARGETS reply")
		return
	}

	var mimes []string
	for v := reply.Value; len(v) >= 4; v = v[4:] {
		atom := xproto.Atom(uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16 | uint32(v[3])<<24)
		if atom == w.atoms.UTF8String {
			mimes = append(mimes, "text/plain;charset=utf-8")
		}
	}
	if len(mimes) == 0 {
		return
	}
	w.clip.mimeTypes = mimes

	host, ok := w.host.(ClipboardHost)
	if !ok {
		w.log.Warn().Msg("xbridge: host does not implement ClipboardHost, dropping X clipboard offer")
		return
	}
	host.SetXClipboardSource(mimes, w)
}

// Cancelled implements transfer.SelectionSourceSink: the native selection
// bureau cancelled the source the bridge installed (e.g. a new selection
// replaced it). Nothing X-side to undo; the bridge just stops being asked
// for data until the next XFixes notify rebuilds it.
func (w *WM) Cancelled() {}

// Send implements transfer.SelectionSourceSink: a native client called
// receive(mime, fd) on the X-backed selection. Per, this
// issues a second ConvertSelection(target=UTF8_STRING) and remembers fd so
// the eventual SELECTION_NOTIFY/PROPERTY_NOTIFY sequence can write into it.
func (w *WM) Send(mime string, fd int) {
	f := os.NewFile(uintptr(fd), "clipboard-target")
	w.clip.targetFD = f
	xproto.ConvertSelectionChecked(w.conn, w.selWin, w.atoms.Clipboard, w.atoms.UTF8String,
		w.atoms.WLSelection, xproto.TimeCurrentTime).Check()
}

// beginReceiveSelection handles SELECTION_NOTIFY(target=UTF8_STRING): read
// the reply; if its type is INCR, enter chunked mode, else
// write the single payload and close the target fd immediately.
func (w *WM) beginReceiveSelection() {
	reply, err := xproto.GetProperty(w.conn, true, w.selWin, w.atoms.WLSelection,
		xproto.GetPropertyTypeAny, 0, ^uint32(0)).Reply()
	if err != nil || reply == nil {
		w.closeClipboardTarget()
		return
	}
	if reply.Type == w.atoms.Incr {
		w.clip.incrInProgress = true
		return
	}
	w.writeChunk(reply.Value)
	w.closeClipboardTarget()
}

// readIncrChunk handles one PROPERTY_NOTIFY(NEW_VALUE) during an INCR
// transfer: a zero-length property marks the end.
func (w *WM) readIncrChunk() {
	reply, err := xproto.GetProperty(w.conn, true, w.selWin, w.atoms.WLSelection,
		xproto.GetPropertyTypeAny, 0, ^uint32(0)).Reply()
	if err != nil || reply == nil {
		w.clip.incrInProgress = false
		w.closeClipboardTarget()
		return
	}
	if len(reply.Value) == 0 {
		w.clip.incrInProgress = false
		w.closeClipboardTarget()
		return
	}
	w.writeChunk(reply.Value)
}

// writeChunk writes b to the current target fd in full, retrying on short
// writes — the synchronous stand-in for writable-fd pacing
// source (see clipboardState's doc comment).
func (w *WM) writeChunk(b []byte) {
	if w.clip.targetFD == nil {
		return
	}
	for len(b) > 0 {
		n, err := w.clip.targetFD.Write(b)
		if err != nil {
			w.log.Warn().Err(err).Msg("xbridge: clipboard target write failed")
			return
		}
		b = b[n:]
	}
}

func (w *WM) closeClipboardTarget() {
	if w.clip.targetFD != nil {
		w.clip.targetFD.Close()
		w.clip.targetFD = nil
	}
}
