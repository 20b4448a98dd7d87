package lock

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andr2000/weston-shell/internal/model"
	"github.com/andr2000/weston-shell/internal/stack"
)

type fakeHelper struct {
	alive       bool
	prepareSent int
}

func (h *fakeHelper) Alive() bool               { return h.alive }
func (h *fakeHelper) SendPrepareLockSurface() { h.prepareSent++ }

type fakeClient struct{ helper bool }

func (c *fakeClient) IsHelper() bool { return c.helper }

type fakeDevice struct{ focusCleared bool }

func (d *fakeDevice) GrabPosition() (int, int)     { return 0, 0 }
func (d *fakeDevice) SetCursor(model.CursorImage)   {}
func (d *fakeDevice) PickSurface() *model.Surface   { return nil }
func (d *fakeDevice) ClearKeyboardFocus()           { d.focusCleared = true }
func (d *fakeDevice) KeyboardFocus() *model.Surface { return nil }

type fakeDevices struct{ devs []*fakeDevice }

func (d *fakeDevices) Each(fn func(model.InputDevice)) {
	for _, dev := range d.devs {
		fn(dev)
	}
}

// S3 — Lock/unlock round trip.
func TestLockUnlock_S3(t *testing.T) {
	policy := stack.NewPolicy(zerolog.Nop())
	panel := &model.Surface{Client: &fakeClient{helper: true}}
	background := &model.Surface{Client: &fakeClient{helper: true}}
	a := &model.Surface{Client: &fakeClient{}, X: 10, Y: 20, W: 300, H: 200}
	b := &model.Surface{Client: &fakeClient{}, X: 50, Y: 60, W: 100, H: 100}

	policy.Panel.Set(panel)
	policy.Background.Set(background)
	policy.Visible.PushFront(panel)
	policy.Visible.PushBack(background)
	policy.Visible.InsertAfter(a, panel)
	policy.Visible.InsertAfter(b, a)

	helper := &fakeHelper{alive: true}
	dev1, dev2 := &fakeDevice{}, &fakeDevice{}
	devices := &fakeDevices{devs: []*fakeDevice{dev1, dev2}}
	session := New(policy, helper, devices, zerolog.Nop())

	session.Lock()

	assert.True(t, session.IsLocked())
	// Panel also carries a non-null (helper) client, so it
	// moves to hidden alongside the ordinary toplevels — only background is
	// exempt.
	assert.Equal(t, []*model.Surface{background}, policy.Visible.Slice())
	assert.Equal(t, []*model.Surface{panel, a, b}, session.Hidden.Slice())
	assert.True(t, dev1.focusCleared)
	assert.True(t, dev2.focusCleared)

	// Helper sends set_lock_surface(L) then unlock.
	session.Unlock()
	assert.True(t, session.PrepareEventSent())
	assert.Equal(t, 1, helper.prepareSent)

	lockSurf := &model.Surface{Client: &fakeClient{helper: true}}
	session.SetLockSurface(lockSurf)
	assert.False(t, session.PrepareEventSent())

	session.ResumeDesktop(nil)

	assert.False(t, session.IsLocked())
	require.Equal(t, []*model.Surface{panel, a, b, background}, policy.Visible.Slice())
	assert.Equal(t, 10, a.X)
	assert.Equal(t, 20, a.Y)
	assert.Equal(t, 50, b.X)
	assert.Equal(t, 60, b.Y)
}

func TestUnlock_NoLiveHelperForceResumes(t *testing.T) {
	policy := stack.NewPolicy(zerolog.Nop())
	background := &model.Surface{Client: &fakeClient{helper: true}}
	policy.Background.Set(background)
	policy.Visible.PushBack(background)

	helper := &fakeHelper{alive: false}
	session := New(policy, helper, &fakeDevices{}, zerolog.Nop())
	session.Lock()
	session.Unlock()

	assert.False(t, session.IsLocked())
	assert.False(t, session.PrepareEventSent())
}

func TestUnlock_NotLockedIsNoop(t *testing.T) {
	policy := stack.NewPolicy(zerolog.Nop())
	session := New(policy, &fakeHelper{alive: true}, &fakeDevices{}, zerolog.Nop())
	session.Unlock()
	assert.False(t, session.PrepareEventSent())
}
