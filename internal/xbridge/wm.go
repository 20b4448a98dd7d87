package xbridge

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/andr2000/weston-shell/internal/model"
)

// propCacheSize bounds the decoded-property cache: rapid re-activation of the same handful of X windows (e.g.
// alt-tabbing) shouldn't re-round-trip WM_CLASS/_NET_WM_NAME every time.
const propCacheSize = 256

type decodedProps struct {
	class        string
	name         string
	transientFor xproto.Window
	protocols    Protocols
	windowType   xproto.Atom
}

// Host is the subset of the shell's host-facing surface the bridge drives:
// creating a native surface for a newly mapped X window, and activating
// that surface.
type Host interface {
	// NewXSurface is called on MAP_NOTIFY to obtain (or look up, if
	// set_window_id already ran) the native surface standing in for an X
	// window, so the bridge can hand it to the stacking policy.
	NewXSurface(xid uint32) *model.Surface
	Activate(s *model.Surface)
}

// WM is the window-manager connection attached to one running rootless X
// server. It owns the X11 connection, the atom table, the window map,
// and the clipboard proxy state.
type WM struct {
	xu       *xgbutil.XUtil // owns property/atom decoding (icccm, ewmh)
	conn     *xgb.Conn      // same underlying connection, for raw xproto calls
	root     xproto.Window
	selWin   xproto.Window
	atoms    *AtomTable
	windows  map[xproto.Window]*Window
	propLRU  *lru.Cache[xproto.Window, decodedProps]
	host     Host
	log      zerolog.Logger
	clip     *clipboardState
	fixesExt xfixesState

	pendingBox *pendingBox
}

// xfixesState is resolved once via QueryExtension; kept narrow since this
// bridge only needs XFixes selection-notify events, not the full extension
// surface.
type xfixesState struct {
	opcode      byte
	eventBase   byte
	initialized bool
}

// AttachWM opens the WM connection for display n, interning
// the atom table in one batched round trip and selecting substructure
// redirect on the root window. The X server for n must already be running
// and accepting connections.
//
// A compositor-internal embedding would hand the WM the far end of a
// dedicated socketpair instead; here the WM connects as an ordinary
// client of display n, which is observably identical from the X
// server's perspective (see DESIGN.md).
func AttachWM(n int, host Host, log zerolog.Logger) (*WM, error) {
	xu, err := xgbutil.NewConnDisplay(fmt.Sprintf(":%d", n))
	if err != nil {
		return nil, fmt.Errorf("xbridge: connect WM to display %d: %w", n, err)
	}
	conn := xu.Conn()

	atoms, err := InternAtoms(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	setup := xproto.Setup(conn)
	if setup == nil || len(setup.Roots) == 0 {
		conn.Close()
		return nil, fmt.Errorf("xbridge: display %d has no screens", n)
	}
	root := setup.Roots[0].Root

	err = xproto.ChangeWindowAttributesChecked(conn, root, xproto.CwEventMask, []uint32{
		xproto.EventMaskSubstructureRedirect |
			xproto.EventMaskSubstructureNotify |
			xproto.EventMaskPropertyChange,
	}).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("xbridge: select root events on display %d: %w", n, err)
	}

	selWin, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("xbridge: allocate selection window id: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, setup.Roots[0].RootDepth, selWin, root,
		-1, -1, 1, 1, 0, xproto.WindowClassInputOnly, setup.Roots[0].RootVisual, 0, nil).Check()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("xbridge: create selection window: %w", err)
	}

	propLRU, err := lru.New[xproto.Window, decodedProps](propCacheSize)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("xbridge: allocate property cache: %w", err)
	}

	wm := &WM{
		xu:      xu,
		conn:    conn,
		root:    root,
		selWin:  selWin,
		atoms:   atoms,
		windows: make(map[xproto.Window]*Window),
		propLRU: propLRU,
		host:    host,
		log:     log,
		clip:    newClipboardState(),
	}

	if err := wm.initXFixes(); err != nil {
		log.Warn().Err(err).Msg("xbridge: XFixes unavailable, clipboard proxy disabled")
	} else if err := wm.subscribeClipboard(); err != nil {
		log.Warn().Err(err).Msg("xbridge: failed to subscribe to CLIPBOARD selection events")
	}

	return wm, nil
}

// Close tears down the WM connection. It does not destroy any bound native
// surfaces; the caller's Host is responsible for that. The WM's own
// teardown here is a pure X-side cleanup, run on server death.
func (w *WM) Close() {
	w.conn.Close()
}

