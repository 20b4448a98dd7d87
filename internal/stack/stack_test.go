package stack

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andr2000/weston-shell/internal/model"
)

type fakeOutput struct{ mode model.Mode }

func (o fakeOutput) CurrentMode() model.Mode { return o.mode }

type fakeDevice struct{ pick *model.Surface }

func (d *fakeDevice) GrabPosition() (int, int)       { return 0, 0 }
func (d *fakeDevice) SetCursor(model.CursorImage)     {}
func (d *fakeDevice) PickSurface() *model.Surface     { return d.pick }
func (d *fakeDevice) ClearKeyboardFocus()             {}
func (d *fakeDevice) KeyboardFocus() *model.Surface   { return nil }

// S4 — Fullscreen centering.
func TestSetFullscreen_S4(t *testing.T) {
	p := NewPolicy(zerolog.Nop())
	out := fakeOutput{mode: model.Mode{Width: 1920, Height: 1080}}
	surf := &model.Surface{X: 50, Y: 60, W: 800, H: 600}

	p.SetFullscreen(surf, []model.Output{out})

	assert.Equal(t, 560, surf.X)
	assert.Equal(t, 240, surf.Y)
	assert.Equal(t, 50, surf.SavedX)
	assert.Equal(t, 60, surf.SavedY)
	assert.Equal(t, model.Fullscreen, surf.MapType)

	p.Configure(surf, 0, 0, 800, 600)
	assert.Equal(t, 560, surf.X)
	assert.Equal(t, 240, surf.Y)
	assert.Equal(t, 800, surf.W)
	assert.Equal(t, 600, surf.H)
}

// Round-trip law: set_fullscreen then set_toplevel restores (x,y) exactly.
func TestFullscreenToplevelRoundTrip(t *testing.T) {
	p := NewPolicy(zerolog.Nop())
	out := fakeOutput{mode: model.Mode{Width: 1920, Height: 1080}}
	surf := &model.Surface{X: 50, Y: 60, W: 800, H: 600}

	p.SetFullscreen(surf, []model.Output{out})
	p.SetToplevel(surf)

	assert.Equal(t, 50, surf.X)
	assert.Equal(t, 60, surf.Y)
	assert.Equal(t, model.Toplevel, surf.MapType)
}

func TestCanGrab_RejectsPanelBackgroundFullscreen(t *testing.T) {
	p := NewPolicy(zerolog.Nop())
	panel := &model.Surface{}
	bg := &model.Surface{}
	p.Panel.Set(panel)
	p.Background.Set(bg)
	fs := &model.Surface{MapType: model.Fullscreen}
	ordinary := &model.Surface{MapType: model.Toplevel}

	assert.False(t, p.CanGrab(panel))
	assert.False(t, p.CanGrab(bg))
	assert.False(t, p.CanGrab(fs))
	assert.True(t, p.CanGrab(ordinary))
}

type noopHidden struct{ pushed []*model.Surface }

func (h *noopHidden) PushFront(s *model.Surface) { h.pushed = append(h.pushed, s) }

func TestMap_OrdinarySurfaceGoesBelowPanel(t *testing.T) {
	p := NewPolicy(zerolog.Nop())
	panel := &model.Surface{}
	p.Panel.Set(panel)
	p.Visible.PushFront(panel)

	a := &model.Surface{MapType: model.Toplevel, X: 1, Y: 1}
	hidden := &noopHidden{}
	p.Map(a, 300, 200, hidden)

	require.Equal(t, 2, p.Visible.Len())
	assert.Equal(t, panel, p.Visible.Front())
	assert.Empty(t, hidden.pushed)
}

func TestActivate_PromotesJustUnderPanel(t *testing.T) {
	p := NewPolicy(zerolog.Nop())
	panel := &model.Surface{}
	p.Panel.Set(panel)
	a := &model.Surface{}
	b := &model.Surface{}
	p.Visible.PushFront(panel)
	p.Visible.PushBack(a)
	p.Visible.PushBack(b)

	dev := &fakeDevice{}
	p.Activate(b, dev, nil)

	order := p.Visible.Slice()
	require.Len(t, order, 3)
	assert.Equal(t, panel, order[0])
	assert.Equal(t, b, order[1])
	assert.Equal(t, a, order[2])
}

func TestImplicitResizeEdges_Thirds(t *testing.T) {
	surf := &model.Surface{X: 0, Y: 0, W: 90, H: 90}
	assert.EqualValues(t, 0, ImplicitResizeEdges(surf, 45, 45))
	assert.NotZero(t, ImplicitResizeEdges(surf, 5, 5))
}
