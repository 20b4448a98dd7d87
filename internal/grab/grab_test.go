package grab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andr2000/weston-shell/internal/model"
)

type fakeConfigurer struct {
	x, y, w, h int
	called     bool
}

func (f *fakeConfigurer) Configure(s *model.Surface, x, y, w, h int) {
	f.called = true
	f.x, f.y, f.w, f.h = x, y, w, h
}

// S1 — Move.
func TestMove_S1(t *testing.T) {
	s := &model.Surface{X: 100, Y: 200, W: 300, H: 200}
	m := NewMove(s, 150, 220)
	require.Equal(t, -50, m.DX)
	require.Equal(t, -20, m.DY)

	cfg := &fakeConfigurer{}
	m.OnMotion(cfg, 160, 225)

	assert.True(t, cfg.called)
	assert.Equal(t, 110, cfg.x)
	assert.Equal(t, 205, cfg.y)
	assert.Equal(t, 300, cfg.w)
	assert.Equal(t, 200, cfg.h)
	assert.Equal(t, model.CursorDragging, m.Cursor())
}

// S2 — Resize rejection: TOP|BOTTOM simultaneously must be rejected.
func TestResize_S2_RejectsOpposingEdges(t *testing.T) {
	s := &model.Surface{}
	_, err := NewResize(s, EdgeTop|EdgeBottom, 0, 0, nil)
	require.ErrorIs(t, err, ErrInvalidEdges)

	_, err = NewResize(s, EdgeLeft|EdgeRight, 0, 0, nil)
	require.ErrorIs(t, err, ErrInvalidEdges)

	_, err = NewResize(s, 0, 0, 0, nil)
	require.ErrorIs(t, err, ErrInvalidEdges)

	_, err = NewResize(s, 16, 0, 0, nil)
	require.ErrorIs(t, err, ErrInvalidEdges)
}

func TestEdges_ValidCombinationsAreExactlyEight(t *testing.T) {
	count := 0
	for e := Edges(0); e <= 15; e++ {
		if e.Valid() {
			count++
		}
	}
	assert.Equal(t, 8, count)
}

type recordingReply struct {
	time   uint32
	edges  Edges
	w, h   int
	called bool
}

func (r *recordingReply) Configure(time uint32, edges Edges, s *model.Surface, w, h int) {
	r.time, r.edges, r.w, r.h, r.called = time, edges, w, h, true
}

func TestResize_DerivesSizeFromAnchorAndEdges(t *testing.T) {
	s := &model.Surface{X: 0, Y: 0, W: 200, H: 100}
	reply := &recordingReply{}
	r, err := NewResize(s, EdgeRight|EdgeBottom, 0, 0, reply)
	require.NoError(t, err)

	r.OnMotion(42, 50, 30)

	assert.True(t, reply.called)
	assert.Equal(t, uint32(42), reply.time)
	assert.Equal(t, 250, reply.w)
	assert.Equal(t, 130, reply.h)
}
