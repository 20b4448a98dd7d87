package shell

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andr2000/weston-shell/internal/config"
	"github.com/andr2000/weston-shell/internal/grab"
	"github.com/andr2000/weston-shell/internal/model"
)

type fakeDevice struct {
	gx, gy  int
	picked  *model.Surface
	cursor  model.CursorImage
	focus   *model.Surface
}

func (d *fakeDevice) GrabPosition() (int, int)        { return d.gx, d.gy }
func (d *fakeDevice) SetCursor(c model.CursorImage)    { d.cursor = c }
func (d *fakeDevice) PickSurface() *model.Surface      { return d.picked }
func (d *fakeDevice) ClearKeyboardFocus()              { d.focus = nil }
func (d *fakeDevice) KeyboardFocus() *model.Surface    { return d.focus }

type fakeClient struct{ helper bool }

func (c fakeClient) IsHelper() bool { return c.helper }

type fakeReply struct {
	calls int
}

func (r *fakeReply) Configure(time uint32, edges grab.Edges, surf *model.Surface, w, h int) {
	r.calls++
}

func newTestShell() *Shell {
	return New(zerolog.Nop(), nil, nil, nil)
}

func TestMove_RejectsPanelAndBusyDevice(t *testing.T) {
	s := newTestShell()
	panel := &model.Surface{W: 100, H: 100}
	s.Policy.Panel.Set(panel)
	dev := &fakeDevice{}

	err := s.Move(panel, dev)
	assert.ErrorIs(t, err, ErrCannotGrab)

	ordinary := &model.Surface{W: 100, H: 100}
	require.NoError(t, s.Move(ordinary, dev))
	assert.Equal(t, model.CursorDragging, dev.cursor)

	other := &model.Surface{W: 50, H: 50}
	err = s.Move(other, dev)
	assert.ErrorIs(t, err, ErrDeviceBusy)
}

func TestMove_PointerMotionRepositionsSurface(t *testing.T) {
	s := newTestShell()
	surf := &model.Surface{X: 100, Y: 100, W: 40, H: 40}
	dev := &fakeDevice{gx: 110, gy: 120}
	require.NoError(t, s.Move(surf, dev))

	s.PointerMotion(dev, 1, 210, 220)
	assert.Equal(t, 200, surf.X)
	assert.Equal(t, 200, surf.Y)

	s.PointerButtonRelease(dev, 2)
	assert.Equal(t, model.CursorDefault, dev.cursor)
	_, busy := s.grabs[dev]
	assert.False(t, busy)
}

func TestResize_InvalidEdgesRejected(t *testing.T) {
	s := newTestShell()
	surf := &model.Surface{W: 100, H: 100}
	dev := &fakeDevice{}
	reply := &fakeReply{}

	err := s.Resize(surf, dev, grab.EdgeLeft|grab.EdgeRight, reply)
	assert.ErrorIs(t, err, grab.ErrInvalidEdges)
}

func TestResize_PostsConfigureOnMotion(t *testing.T) {
	s := newTestShell()
	surf := &model.Surface{X: 0, Y: 0, W: 100, H: 100}
	dev := &fakeDevice{gx: 100, gy: 100}
	reply := &fakeReply{}

	require.NoError(t, s.Resize(surf, dev, grab.EdgeRight, reply))
	s.PointerMotion(dev, 5, 150, 100)
	assert.Equal(t, 1, reply.calls)
}

func TestHandleButtonBinding_ClickToActivateOnDisallowedSurface(t *testing.T) {
	s := newTestShell()
	bg := &model.Surface{}
	s.Policy.Background.Set(bg)
	dev := &fakeDevice{picked: bg}
	kb := &config.Keybindings{ClickToActivate: true}

	s.HandleButtonBinding(dev, 1, nil, 0, kb, &fakeReply{})
	assert.Equal(t, bg, s.Policy.Visible.Front())
}

func TestHandleButtonBinding_MatchesMoveBinding(t *testing.T) {
	s := newTestShell()
	surf := &model.Surface{W: 100, H: 100}
	dev := &fakeDevice{picked: surf}
	kb := &config.Keybindings{
		Move:            config.Binding{Button: 1, Modifiers: []string{"super"}},
		ClickToActivate: true,
	}

	s.HandleButtonBinding(dev, 1, []string{"super"}, 0, kb, &fakeReply{})
	_, busy := s.grabs[dev]
	assert.True(t, busy)
}

func TestActivateDrag_ReleaseEndsDrag(t *testing.T) {
	s := newTestShell()
	source := &model.Surface{}
	dev := &fakeDevice{}
	offer := s.CreateDrag(source, noopSourceSink{}, []string{"text/plain"}, noopDragSink{})

	require.NoError(t, s.ActivateDrag(offer, dev))
	assert.Equal(t, offer, s.Bureau.Drag(dev))

	s.PointerButtonRelease(dev, 1)
	assert.Nil(t, s.Bureau.Drag(dev))
}

func TestBindDesktopShell_PermissionDenied(t *testing.T) {
	s := newTestShell()
	_, err := s.BindDesktopShell(fakeClient{helper: false})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	binder, err := s.BindDesktopShell(fakeClient{helper: true})
	require.NoError(t, err)
	require.NotNil(t, binder)
}

func TestArmIdleLock_OnIdleLocksDesktop(t *testing.T) {
	s := newTestShell()
	s.ArmIdleLock(30 * time.Second)
	assert.Equal(t, 30*time.Second, s.IdleTimeout())

	s.OnIdle()
	assert.True(t, s.Lock.IsLocked())
}

type noopSourceSink struct{}

func (noopSourceSink) Target(mime string, ok bool) {}
func (noopSourceSink) Finish(fd int)                {}

type noopDragSink struct{}

func (noopDragSink) PointerFocus(time uint32, surf *model.Surface, x, y, sx, sy int) {}
func (noopDragSink) Offer(mime string)                                              {}
func (noopDragSink) Motion(time uint32, x, y, sx, sy int)                           {}
func (noopDragSink) Drop()                                                          {}
