// Package model holds the data the shell annotates onto compositor-owned
// objects: surfaces, outputs, and the client/input-device handles the host
// exposes. None of these types own the objects they describe — ownership
// stays with the compositor's own registries, tracked here through weak
// references instead.
package model

// MapType classifies how a surface is currently presented.
type MapType int

const (
	Toplevel MapType = iota
	Transient
	Fullscreen
)

func (t MapType) String() string {
	switch t {
	case Toplevel:
		return "toplevel"
	case Transient:
		return "transient"
	case Fullscreen:
		return "fullscreen"
	default:
		return "unknown"
	}
}

// Mode is an output's current video mode.
type Mode struct {
	Width, Height int
}

// Output is the external display abstraction; the shell only ever needs its
// current mode to center fullscreen surfaces and rewrite their configure.
type Output interface {
	CurrentMode() Mode
}

// Client identifies the owning client connection of a surface. Two surfaces
// are "same client" iff their Client values compare equal; the zero value
// (nil) means the surface has no owning client.
type Client interface {
	// IsHelper reports whether this connection is the launched
	// desktop-shell helper, used to gate the desktop_shell interface bind.
	IsHelper() bool
}

// Surface is the external entity the shell annotates with stacking and
// placement policy. The compositor owns its lifetime; the shell never frees
// one, it only reacts to destruction via OnDestroy.
type Surface struct {
	X, Y, W, H int

	// SavedX/SavedY are meaningful only while MapType == Fullscreen.
	SavedX, SavedY int

	MapType          MapType
	FullscreenOutput Output

	Client Client

	// XID is nonzero when this surface is backed by an X11 window; the
	// xbridge package is the only reader.
	XID uint32

	destroyListeners []func(*Surface)
	destroyed        bool
}

// OnDestroy registers fn to run exactly once, when the surface is
// destroyed. Order of invocation matches registration order, like a
// chain of intrusive destroy-listeners.
func (s *Surface) OnDestroy(fn func(*Surface)) {
	if s.destroyed {
		fn(s)
		return
	}
	s.destroyListeners = append(s.destroyListeners, fn)
}

// Destroy notifies every registered listener. The compositor calls this
// once, when the underlying client resource goes away.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	listeners := s.destroyListeners
	s.destroyListeners = nil
	for _, fn := range listeners {
		fn(s)
	}
}

// SameClient reports whether s and other are owned by the same client
// connection, treating nil clients as never equal to anything (including
// another nil) so an unowned surface never counts as "same client" as
// another unowned surface.
func SameClient(a, b *Surface) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Client == nil || b.Client == nil {
		return false
	}
	return a.Client == b.Client
}

// WeakSurface models "option<weak<Surface>>": a holder that is
// automatically cleared when its target is destroyed, without the holder
// needing to poll or the target needing to know its holders' types.
type WeakSurface struct {
	target *Surface
}

// NewWeakSurface returns a weak reference to s (nil-safe).
func NewWeakSurface(s *Surface) *WeakSurface {
	w := &WeakSurface{}
	w.Set(s)
	return w
}

// Set repoints the weak reference, registering a destroy listener on the
// new target and doing nothing about the old one (any stale listener will
// simply fire against an already-nulled field).
func (w *WeakSurface) Set(s *Surface) {
	w.target = s
	if s != nil {
		s.OnDestroy(func(destroyed *Surface) {
			if w.target == destroyed {
				w.target = nil
			}
		})
	}
}

// Get returns the live target, or nil if it was destroyed or never set.
func (w *WeakSurface) Get() *Surface {
	if w == nil {
		return nil
	}
	return w.target
}
