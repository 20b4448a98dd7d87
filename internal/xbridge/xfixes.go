package xbridge

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
)

// initXFixes resolves the XFixes extension once per connection; every WM
// needs it to learn when the X side becomes CLIPBOARD owner without
// polling.
func (w *WM) initXFixes() error {
	if err := xfixes.Init(w.conn); err != nil {
		return fmt.Errorf("xbridge: init XFixes extension: %w", err)
	}
	ver, err := xfixes.QueryVersion(w.conn, xfixes.MajorVersion, xfixes.MinorVersion).Reply()
	if err != nil {
		return fmt.Errorf("xbridge: XFixes QueryVersion: %w", err)
	}
	ext, err := xproto.QueryExtension(w.conn, uint16(len("XFIXES")), "XFIXES").Reply()
	if err != nil || ext == nil || !ext.Present {
		return fmt.Errorf("xbridge: XFIXES extension not present on server")
	}
	w.fixesExt = xfixesState{
		opcode:      ext.MajorOpcode,
		eventBase:   ext.FirstEvent,
		initialized: true,
	}
	w.log.Debug().Uint32("major", uint32(ver.MajorVersion)).Uint32("minor", uint32(ver.MinorVersion)).
		Msg("xbridge: XFixes initialized")
	return nil
}

// subscribeClipboard selects set-owner | window-destroy | client-close
// selection events on CLIPBOARD WM attachment.
func (w *WM) subscribeClipboard() error {
	mask := uint32(xfixes.SelectionEventMaskSetSelectionOwner |
		xfixes.SelectionEventMaskSelectionWindowDestroy |
		xfixes.SelectionEventMaskSelectionClientClose)
	return xfixes.SelectSelectionInputChecked(w.conn, w.root, w.atoms.Clipboard, mask).Check()
}

// dispatchXFixes recognizes the XFixes selection-notify event, which xgb
// delivers as a generic event whose Go type is only known once the
// extension's event base has been resolved (xgb's code generator gives it
// a concrete struct, xfixes.SelectionNotifyEvent, but the connection only
// tags it with the right opcode after Init, which we've already run).
func (w *WM) dispatchXFixes(ev xgb.Event) {
	e, ok := ev.(xfixes.SelectionNotifyEvent)
	if !ok {
		return
	}
	if e.Selection != w.atoms.Clipboard {
		return
	}
	// "XFIXES selection notify: Issue convert-selection(TARGETS -> _WL_SELECTION)."
	xproto.ConvertSelectionChecked(w.conn, w.selWin, w.atoms.Clipboard, w.atoms.Targets,
		w.atoms.WLSelection, xproto.TimeCurrentTime).Check()
}
