// Package colormap generates 2D color lookup tables sampled from the CIELAB
// color space.
//
// The table assigns a color to each retained coordinate of a conceptual
// Dim x Dim grid: the two grid coordinates are mapped linearly onto the a*
// (green-red) and b* (blue-yellow) chromatic axes while the lightness L* is
// held constant, so the color varies smoothly and perceptually uniformly
// across the plane. Colors falling outside the sRGB gamut are clamped to the
// nearest displayable color. The grid is downsampled with an integer stride
// so the serialized table stays small enough for external viewers.
package colormap

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/tbruckner/warpviz/pkg/errors"
)

// Chromatic range spanned by the grid axes. go-colorful expresses a* and b*
// on a unit-ish scale; +-1 covers the full usable range before gamut
// clamping takes over at the edges.
const (
	chromaMin = -1.0
	chromaMax = 1.0
)

// DefaultDim is the default full resolution of the color grid.
const DefaultDim = 512

// Options configures colormap generation.
type Options struct {
	// Dim is the full resolution of the conceptual 2D grid before
	// downsampling. Defaults to DefaultDim.
	Dim int `json:"dim,omitempty"`

	// Bright fixes the CIELAB lightness channel, in [0, 1].
	Bright float64 `json:"bright"`

	// Downsample is the integer stride: only every Downsample-th sample
	// along each axis is retained. Dim/Downsample must be at least 1.
	Downsample int `json:"downsample"`
}

// Validate checks the options and fills defaults.
func (o *Options) Validate() error {
	if o.Dim == 0 {
		o.Dim = DefaultDim
	}
	if o.Dim < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "dim must be positive, got %d", o.Dim)
	}
	if o.Downsample <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "downsample must be positive, got %d", o.Downsample)
	}
	if o.Dim/o.Downsample < 1 {
		return errors.New(errors.ErrCodeInvalidInput,
			"downsample %d leaves no samples on a %d-wide grid", o.Downsample, o.Dim)
	}
	if o.Bright < 0 || o.Bright > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "bright must be in [0,1], got %g", o.Bright)
	}
	return nil
}

// RGB is an 8-bit color triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Entry maps one retained grid coordinate to its color.
type Entry struct {
	I     int `json:"i"`
	J     int `json:"j"`
	Color RGB `json:"color"`
}

// Generate produces the color table for the given options. The result is
// deterministic: identical options yield an identical table, including after
// gamut clamping.
func Generate(opts Options) (*Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	side := opts.Dim / opts.Downsample
	entries := make([]Entry, 0, side*side)

	for i := 0; i < opts.Dim; i += opts.Downsample {
		if i/opts.Downsample >= side {
			break // drop the last partial stride
		}
		a := chromaMin + (chromaMax-chromaMin)*float64(i)/float64(opts.Dim)
		for j := 0; j < opts.Dim; j += opts.Downsample {
			if j/opts.Downsample >= side {
				break
			}
			b := chromaMin + (chromaMax-chromaMin)*float64(j)/float64(opts.Dim)
			c := colorful.Lab(opts.Bright, a, b).Clamped()
			r8, g8, b8 := c.RGB255()
			entries = append(entries, Entry{
				I:     i,
				J:     j,
				Color: RGB{R: r8, G: g8, B: b8},
			})
		}
	}

	return &Table{
		Dim:        opts.Dim,
		Downsample: opts.Downsample,
		Bright:     opts.Bright,
		Entries:    entries,
	}, nil
}
