package forest

import (
	"math"

	errs "github.com/matzehuels/sptree/pkg/errors"
)

// DisplayRange bounds |scale·diff| for every vertex.
const DisplayRange = 127

// Diff holds the per-vertex depth difference between two forests.
type Diff struct {
	Values []int   `json:"values"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Scale  float64 `json:"scale"`
}

// Compare computes a.Depth(i) - b.Depth(i) for every vertex, along with the
// extremes and the normalization scale 127 / max(1, Max, -Min).
//
// Both forests must cover the same number of vertices; otherwise Compare
// returns INVALID_INPUT. Empty forests give Min = Max = 0 and Scale = 127.
func Compare(a, b *Forest) (*Diff, error) {
	if a.Len() != b.Len() {
		return nil, errs.New(errs.ErrCodeInvalidInput,
			"forests cover different graphs (%d and %d vertices)", a.Len(), b.Len())
	}

	d := &Diff{Values: make([]int, a.Len())}
	for i := range d.Values {
		v := a.Depth(i) - b.Depth(i)
		d.Values[i] = v
		if i == 0 || v < d.Min {
			d.Min = v
		}
		if i == 0 || v > d.Max {
			d.Max = v
		}
	}
	d.Scale = DisplayRange / float64(max(1, d.Max, -d.Min))
	return d, nil
}

// At returns the difference at v, or 0 for unknown ids.
func (d *Diff) At(v int) int {
	if v < 0 || v >= len(d.Values) {
		return 0
	}
	return d.Values[v]
}

// Colour maps the difference at v to an RGB triple: vertices closer to the
// first root lean red, vertices closer to the second lean green.
func (d *Diff) Colour(v int) (r, g, b uint8) {
	s := d.Scale * float64(d.At(v))
	return channel(128 - s), channel(128 + s), 0
}

func channel(x float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(x))))
}
