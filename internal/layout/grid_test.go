package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_RejectsNonAlternating(t *testing.T) {
	_, err := NewGrid([]Layer{
		{ID: 1, Name: "M1", Dir: DirHorizontal, Pitch: 100, Width: 50},
		{ID: 2, Name: "M2", Dir: DirHorizontal, Pitch: 100, Width: 50},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alternate")
}

func TestNewGrid_RejectsWidthOverPitch(t *testing.T) {
	_, err := NewGrid([]Layer{
		{ID: 1, Name: "M1", Dir: DirHorizontal, Pitch: 100, Width: 100},
	})
	require.Error(t, err)
}

func TestTrackID_Arithmetic(t *testing.T) {
	tr := NewTrack(2, 3)
	assert.Equal(t, TrackID{Layer: 2, Index: 3, Width: 1}, tr)
	assert.Equal(t, TrackID{Layer: 2, Index: 7, Width: 1}, tr.Shift(4))
	assert.Equal(t, TrackID{Layer: 2, Index: 1, Width: 1}, tr.Shift(-2))
	assert.Equal(t, TrackID{Layer: 2, Index: 3, Width: 3}, tr.Widen(2))
	// Value semantics: the receiver is untouched.
	assert.Equal(t, TrackID{Layer: 2, Index: 3, Width: 1}, tr)
}

func TestTrackCenter(t *testing.T) {
	g := DefaultGrid()

	c, err := g.TrackCenter(NewTrack(1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(50), c)

	c, err = g.TrackCenter(NewTrack(1, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(350), c)

	c, err = g.TrackCenter(NewTrack(1, -1))
	require.NoError(t, err)
	assert.Equal(t, int64(-50), c)
}

func TestTrackRect_Directions(t *testing.T) {
	g := DefaultGrid()

	// M1 horizontal: track coordinate is Y.
	r, err := g.TrackRect(NewTrack(1, 2), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, NewRect(0, 225, 1000, 275), r)

	// M2 vertical: track coordinate is X.
	r, err = g.TrackRect(NewTrack(2, 2), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, NewRect(225, 0, 275, 1000), r)
}

func TestTrackRect_WidthInTracks(t *testing.T) {
	g := DefaultGrid()

	// A 2-track wire on M1 covers tracks 2 and 3: one pitch wider than
	// the single-track wire, same lower edge.
	r, err := g.TrackRect(NewTrack(1, 2).Widen(1), 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, NewRect(0, 225, 1000, 375), r)

	_, err = g.TrackRect(TrackID{Layer: 1, Index: 0, Width: 0}, 0, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width")
}

func TestNearestTrack_RoundTrips(t *testing.T) {
	g := DefaultGrid()
	for _, track := range []int64{-3, -1, 0, 1, 7} {
		c, err := g.TrackCenter(NewTrack(2, track))
		require.NoError(t, err)
		got, err := g.NearestTrack(2, c)
		require.NoError(t, err)
		assert.Equal(t, NewTrack(2, track), got)

		// Off-center coordinates snap to the same track.
		got, err = g.NearestTrack(2, c+30)
		require.NoError(t, err)
		assert.Equal(t, NewTrack(2, track), got)
	}
}

func TestOrient_Apply(t *testing.T) {
	p := Point{X: 3, Y: 5}
	assert.Equal(t, p, R0.Apply(p))
	assert.Equal(t, Point{X: 3, Y: -5}, MX.Apply(p))
	assert.Equal(t, Point{X: -3, Y: 5}, MY.Apply(p))
	assert.Equal(t, Point{X: -3, Y: -5}, R180.Apply(p))
}

func TestOrient_ApplyIn(t *testing.T) {
	box := NewRect(0, 100, 400, 500)
	r := NewRect(50, 150, 150, 250)

	assert.Equal(t, r, R0.ApplyIn(r, box))
	assert.Equal(t, NewRect(50, 350, 150, 450), MX.ApplyIn(r, box))
	assert.Equal(t, NewRect(250, 150, 350, 250), MY.ApplyIn(r, box))
	assert.Equal(t, NewRect(250, 350, 350, 450), R180.ApplyIn(r, box))

	// The box maps onto itself under every orientation.
	for _, o := range []Orient{R0, MX, MY, R180} {
		assert.Equal(t, box, o.ApplyIn(box, box))
	}
}

func TestRect_OverlapsIsStrict(t *testing.T) {
	a := NewRect(0, 0, 100, 100)
	assert.True(t, a.Overlaps(NewRect(50, 50, 150, 150)))
	// Touching edges are not electrical contact.
	assert.False(t, a.Overlaps(NewRect(100, 0, 200, 100)))
	assert.False(t, a.Overlaps(NewRect(0, 100, 100, 200)))
}

func TestRect_UnionWithEmpty(t *testing.T) {
	var zero Rect
	a := NewRect(10, 10, 20, 20)
	assert.Equal(t, a, zero.Union(a))
	assert.Equal(t, a, a.Union(zero))
}
