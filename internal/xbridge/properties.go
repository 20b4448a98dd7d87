package xbridge

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// fetchProps decodes WM_CLASS, WM_TRANSIENT_FOR, WM_PROTOCOLS,
// _NET_WM_WINDOW_TYPE and _NET_WM_NAME for win on MAP_NOTIFY, caching the
// result behind the window's xid, using the xgbutil/icccm/ewmh trio
// against a *xgbutil.XUtil.
func (w *WM) fetchProps(win xproto.Window) decodedProps {
	if cached, ok := w.propLRU.Get(win); ok {
		return cached
	}

	var p decodedProps

	if class, err := icccm.WmClassGet(w.xu, win); err == nil && class != nil {
		p.class = class.Class
	}

	if name, err := ewmh.WmNameGet(w.xu, win); err == nil && name != "" {
		p.name = name
	} else if name, err := icccm.WmNameGet(w.xu, win); err == nil {
		p.name = name
	}

	if tf, err := icccm.WmTransientForGet(w.xu, win); err == nil {
		p.transientFor = tf
	}

	if protos, err := icccm.WmProtocolsGet(w.xu, win); err == nil {
		for _, proto := range protos {
			switch proto {
			case "WM_DELETE_WINDOW":
				p.protocols |= ProtocolDeleteWindow
			case "WM_TAKE_FOCUS":
				p.protocols |= ProtocolTakeFocus
			}
		}
	}

	if types, err := ewmh.WmWindowTypeGet(w.xu, win); err == nil && len(types) > 0 {
		switch types[0] {
		case "_NET_WM_WINDOW_TYPE_DIALOG":
			p.windowType = w.atoms.NetWMWindowTypeDialog
		default:
			p.windowType = w.atoms.NetWMWindowTypeNormal
		}
	}

	w.propLRU.Add(win, p)
	return p
}
