package model

// CursorImage enumerates the cursor shapes the shell installs during a
// grab. Values after CursorDragging correspond to the eight resize-edge
// combinations.
type CursorImage int

const (
	CursorDefault CursorImage = iota
	CursorDragging
	CursorResizeTop
	CursorResizeBottom
	CursorResizeLeft
	CursorResizeRight
	CursorResizeTopLeft
	CursorResizeTopRight
	CursorResizeBottomLeft
	CursorResizeBottomRight
)

// Point is an integer surface-local or global coordinate pair.
type Point struct{ X, Y int }

// InputDevice is the host's pointer/keyboard abstraction. The shell drives
// it but never owns it; PickSurface in particular is implemented by the
// compositor's own hit-testing over its surface registry.
type InputDevice interface {
	// GrabPosition returns the pointer position at the moment a grab is
	// installed.
	GrabPosition() (x, y int)

	// SetCursor installs a cursor image for the duration of the grab.
	SetCursor(CursorImage)

	// PickSurface returns the surface under the current pointer position,
	// or nil if none.
	PickSurface() *Surface

	// ClearKeyboardFocus is invoked when the shell forces focus to none,
	// e.g. on session lock.
	ClearKeyboardFocus()

	// KeyboardFocus returns the surface currently holding keyboard focus,
	// or nil.
	KeyboardFocus() *Surface
}
