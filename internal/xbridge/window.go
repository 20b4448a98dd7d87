package xbridge

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/andr2000/weston-shell/internal/model"
)

// Window is an X11 top-level tracked by the bridge, independent of
// whether it has been bound to a native surface yet.
type Window struct {
	XID           xproto.Window
	Surface       *model.Surface // nil until set_window_id binds it
	Class         string
	Name          string
	TransientFor  *model.WeakSurface
	Protocols     Protocols
	WindowType    xproto.Atom
	propsFetched  bool
	destroyUnhook func()
}

// Protocols is the WM_PROTOCOLS bitmap a window advertises support for.
type Protocols uint8

const (
	ProtocolDeleteWindow Protocols = 1 << iota
	ProtocolTakeFocus
)

func (p Protocols) Has(bit Protocols) bool { return p&bit != 0 }
