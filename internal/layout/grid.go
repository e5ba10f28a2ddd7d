package layout

import "fmt"

// LayerDir is the routing direction of a metal layer.
type LayerDir string

const (
	DirHorizontal LayerDir = "horizontal"
	DirVertical   LayerDir = "vertical"
)

// Layer describes one routing layer of the grid.
type Layer struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Dir   LayerDir `json:"dir"`
	Pitch int64    `json:"pitch"` // track-to-track distance, nm
	Width int64    `json:"width"` // default wire width, nm
}

// Grid is the routing grid generators place wires on. Layers alternate
// direction; track index 0 is centered at half a pitch from the origin.
type Grid struct {
	layers []Layer
}

// NewGrid builds a grid from a layer stack. Layer IDs must be
// contiguous starting at 1 and directions must alternate.
func NewGrid(layers []Layer) (*Grid, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("grid needs at least one layer")
	}
	for i, l := range layers {
		if l.ID != i+1 {
			return nil, fmt.Errorf("layer %q: ID %d out of order (want %d)", l.Name, l.ID, i+1)
		}
		if l.Pitch <= 0 || l.Width <= 0 || l.Width >= l.Pitch {
			return nil, fmt.Errorf("layer %q: invalid pitch/width %d/%d", l.Name, l.Pitch, l.Width)
		}
		if i > 0 && l.Dir == layers[i-1].Dir {
			return nil, fmt.Errorf("layer %q: direction must alternate with %q", l.Name, layers[i-1].Name)
		}
	}
	return &Grid{layers: append([]Layer(nil), layers...)}, nil
}

// DefaultGrid is the grid used when a spec does not override layers:
// M1 horizontal, M2 vertical, M3 horizontal.
func DefaultGrid() *Grid {
	g, err := NewGrid([]Layer{
		{ID: 1, Name: "M1", Dir: DirHorizontal, Pitch: 100, Width: 50},
		{ID: 2, Name: "M2", Dir: DirVertical, Pitch: 100, Width: 50},
		{ID: 3, Name: "M3", Dir: DirHorizontal, Pitch: 200, Width: 100},
	})
	if err != nil {
		panic(err) // static layer table
	}
	return g
}

// NumLayers returns the number of routing layers.
func (g *Grid) NumLayers() int { return len(g.layers) }

// Layer returns the layer with the given ID.
func (g *Grid) Layer(id int) (Layer, error) {
	if id < 1 || id > len(g.layers) {
		return Layer{}, fmt.Errorf("no such layer %d", id)
	}
	return g.layers[id-1], nil
}

// TrackID addresses a wire on the routing grid: a layer, a track index
// and a width in tracks. A wire of width w occupies tracks
// [Index, Index+w-1].
type TrackID struct {
	Layer int   `json:"layer"`
	Index int64 `json:"index"`
	Width int64 `json:"width"` // in tracks, >= 1
}

// NewTrack returns a single-track ID on the given layer.
func NewTrack(layer int, index int64) TrackID {
	return TrackID{Layer: layer, Index: index, Width: 1}
}

// Shift returns the ID moved n track indices over on the same layer.
func (t TrackID) Shift(n int64) TrackID {
	t.Index += n
	return t
}

// Widen returns the ID grown by n tracks.
func (t TrackID) Widen(n int64) TrackID {
	t.Width += n
	return t
}

// TrackCenter returns the center coordinate of the ID's index track.
// For horizontal layers the coordinate is a Y value, for vertical
// layers an X value.
func (g *Grid) TrackCenter(t TrackID) (int64, error) {
	l, err := g.Layer(t.Layer)
	if err != nil {
		return 0, err
	}
	return t.Index*l.Pitch + l.Pitch/2, nil
}

// TrackSpan returns the cross-direction extent [lo, hi] of a track
// wire: the layer's default width around the index track center, grown
// by one pitch per extra track of width.
func (g *Grid) TrackSpan(t TrackID) (int64, int64, error) {
	l, err := g.Layer(t.Layer)
	if err != nil {
		return 0, 0, err
	}
	if t.Width < 1 {
		return 0, 0, fmt.Errorf("layer %d track %d: width %d tracks, want >= 1", t.Layer, t.Index, t.Width)
	}
	first := t.Index*l.Pitch + l.Pitch/2
	last := first + (t.Width-1)*l.Pitch
	return first - l.Width/2, last + l.Width/2, nil
}

// TrackRect returns the wire rectangle for a track spanning [lo, hi]
// along the track direction.
func (g *Grid) TrackRect(t TrackID, lo, hi int64) (Rect, error) {
	l, err := g.Layer(t.Layer)
	if err != nil {
		return Rect{}, err
	}
	clo, chi, err := g.TrackSpan(t)
	if err != nil {
		return Rect{}, err
	}
	if l.Dir == DirHorizontal {
		return NewRect(lo, clo, hi, chi), nil
	}
	return NewRect(clo, lo, chi, hi), nil
}

// NearestTrack returns the single-track ID whose center is closest to
// the given coordinate.
func (g *Grid) NearestTrack(layerID int, coord int64) (TrackID, error) {
	l, err := g.Layer(layerID)
	if err != nil {
		return TrackID{}, err
	}
	// Round (coord - pitch/2) / pitch to nearest integer.
	off := coord - l.Pitch/2
	t := off / l.Pitch
	rem := off % l.Pitch
	if rem < 0 {
		rem += l.Pitch
		t--
	}
	if rem*2 >= l.Pitch {
		t++
	}
	return NewTrack(layerID, t), nil
}
