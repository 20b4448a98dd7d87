package xbridge

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// atomNames is the compile-time list of every atom the bridge ever looks
// up, resolved with a single batched InternAtom round-trip at WM-attach
// time instead of one request per lookup. Fields are typed
// (AtomTable.WMTakeFocus, not atoms["WM_TAKE_FOCUS"]) so callers get
// compile-time checked access instead of a name->Atom map.
var atomNames = []string{
	"WM_PROTOCOLS",
	"WM_DELETE_WINDOW",
	"WM_TAKE_FOCUS",
	"WM_CLASS",
	"WM_NAME",
	"WM_TRANSIENT_FOR",
	"WM_HINTS",
	"WM_NORMAL_HINTS",
	"_NET_WM_NAME",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_NORMAL",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"UTF8_STRING",
	"CLIPBOARD",
	"TARGETS",
	"_WL_SELECTION",
	"INCR",
	"ATOM",
	"STRING",
	"MULTIPLE",
}

// AtomTable holds every interned atom the bridge needs, resolved in one
// batched round trip.
type AtomTable struct {
	WMProtocols           xproto.Atom
	WMDeleteWindow        xproto.Atom
	WMTakeFocus           xproto.Atom
	WMClass               xproto.Atom
	WMName                xproto.Atom
	WMTransientFor        xproto.Atom
	WMHints               xproto.Atom
	WMNormalHints         xproto.Atom
	NetWMName             xproto.Atom
	NetWMWindowType       xproto.Atom
	NetWMWindowTypeNormal xproto.Atom
	NetWMWindowTypeDialog xproto.Atom
	NetWMState            xproto.Atom
	NetWMStateFullscreen  xproto.Atom
	UTF8String            xproto.Atom
	Clipboard             xproto.Atom
	Targets               xproto.Atom
	WLSelection           xproto.Atom
	Incr                  xproto.Atom
	Atom                  xproto.Atom
	String                xproto.Atom
	Multiple              xproto.Atom

	byValue map[xproto.Atom]string
}

// InternAtoms sends one InternAtom request per name back-to-back and then
// collects every reply, so the round trip cost is one network flush instead
// of len(atomNames) sequential request/reply pairs.
func InternAtoms(conn *xgb.Conn) (*AtomTable, error) {
	cookies := make([]xproto.InternAtomCookie, len(atomNames))
	for i, name := range atomNames {
		cookies[i] = xproto.InternAtom(conn, false, uint16(len(name)), name)
	}

	values := make(map[string]xproto.Atom, len(atomNames))
	byValue := make(map[xproto.Atom]string, len(atomNames))
	for i, name := range atomNames {
		reply, err := cookies[i].Reply()
		if err != nil {
			return nil, fmt.Errorf("xbridge: intern atom %s: %w", name, err)
		}
		values[name] = reply.Atom
		byValue[reply.Atom] = name
	}

	t := &AtomTable{
		WMProtocols:           values["WM_PROTOCOLS"],
		WMDeleteWindow:        values["WM_DELETE_WINDOW"],
		WMTakeFocus:           values["WM_TAKE_FOCUS"],
		WMClass:               values["WM_CLASS"],
		WMName:                values["WM_NAME"],
		WMTransientFor:        values["WM_TRANSIENT_FOR"],
		WMHints:               values["WM_HINTS"],
		WMNormalHints:         values["WM_NORMAL_HINTS"],
		NetWMName:             values["_NET_WM_NAME"],
		NetWMWindowType:       values["_NET_WM_WINDOW_TYPE"],
		NetWMWindowTypeNormal: values["_NET_WM_WINDOW_TYPE_NORMAL"],
		NetWMWindowTypeDialog: values["_NET_WM_WINDOW_TYPE_DIALOG"],
		NetWMState:            values["_NET_WM_STATE"],
		NetWMStateFullscreen:  values["_NET_WM_STATE_FULLSCREEN"],
		UTF8String:            values["UTF8_STRING"],
		Clipboard:             values["CLIPBOARD"],
		Targets:               values["TARGETS"],
		WLSelection:           values["_WL_SELECTION"],
		Incr:                  values["INCR"],
		Atom:                  values["ATOM"],
		String:                values["STRING"],
		Multiple:              values["MULTIPLE"],
		byValue:               byValue,
	}
	return t, nil
}

// Name returns the interned name for a, or "" if it isn't one of ours.
func (t *AtomTable) Name(a xproto.Atom) string {
	return t.byValue[a]
}
