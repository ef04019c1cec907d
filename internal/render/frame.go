package render

import (
	"image/color"
	"math"

	"github.com/san-kum/dpendulum/internal/physics"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	rodColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	innerColor = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	outerColor = color.RGBA{R: 210, G: 40, B: 40, A: 255}
	background = color.White
)

// Options control the rendered output.
type Options struct {
	FPS    int // GIF frame rate
	Width  int // pixels
	Height int // pixels
	Trail  int // GIF frames of outer-bob history, 0 disables the trail
	DPI    int
	Title  bool // print the simulation time on each frame
}

func DefaultOptions() Options {
	return Options{FPS: 30, Width: 480, Height: 480, Trail: 45, DPI: 96, Title: true}
}

func (o Options) size() (vg.Length, vg.Length) {
	dpi := o.DPI
	if dpi <= 0 {
		dpi = 96
	}
	w := vg.Length(o.Width) * vg.Inch / vg.Length(dpi)
	h := vg.Length(o.Height) * vg.Inch / vg.Length(dpi)
	return w, h
}

// toPlot flips the downward Cartesian y so that a hanging pendulum points
// down on screen.
func toPlot(x, y float64) plotter.XY { return plotter.XY{X: x, Y: -y} }

// newFrame draws the rods and bobs at pos on top of the under plotters.
// The view is centred on the pivot and fits the fully extended pendulum.
func newFrame(pos physics.Position, under []plot.Plotter, p physics.Params, opts Options) (*plot.Plot, error) {
	plt := plot.New()
	plt.HideAxes()
	plt.BackgroundColor = background
	plt.Add(under...)

	rods, err := plotter.NewLine(plotter.XYs{toPlot(0, 0), toPlot(pos.X1, pos.Y1), toPlot(pos.X2, pos.Y2)})
	if err != nil {
		return nil, err
	}
	rods.LineStyle.Width = vg.Points(2)
	rods.LineStyle.Color = rodColor
	plt.Add(rods)

	heavy := math.Max(p.M1, p.M2)
	for _, bob := range []struct {
		at   plotter.XY
		mass float64
		col  color.Color
	}{
		{toPlot(pos.X1, pos.Y1), p.M1, innerColor},
		{toPlot(pos.X2, pos.Y2), p.M2, outerColor},
	} {
		s, err := plotter.NewScatter(plotter.XYs{bob.at})
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Color = bob.col
		s.GlyphStyle.Radius = vg.Points(math.Max(3, 8*math.Cbrt(bob.mass/heavy)))
		plt.Add(s)
	}

	fitView(plt, p, opts)
	return plt, nil
}

// trailSegments draws the trail as segments fading from the background to
// the outer bob colour.
func trailSegments(trail []plotter.XY) ([]plot.Plotter, error) {
	var out []plot.Plotter
	for i := 1; i < len(trail); i++ {
		seg, err := plotter.NewLine(plotter.XYs{trail[i-1], trail[i]})
		if err != nil {
			return nil, err
		}
		seg.LineStyle.Width = vg.Points(1.5)
		seg.LineStyle.Color = fade(outerColor, float64(i)/float64(len(trail)-1))
		out = append(out, seg)
	}
	return out, nil
}

// fade mixes c with white; strength 1 is c itself.
func fade(c color.RGBA, strength float64) color.RGBA {
	mix := func(v uint8) uint8 { return uint8(255 - strength*float64(255-int(v))) }
	return color.RGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 255}
}

func fitView(plt *plot.Plot, p physics.Params, opts Options) {
	extent := 1.1 * (p.L1 + p.L2)
	xExt, yExt := extent, extent
	if opts.Width > opts.Height {
		xExt = extent * float64(opts.Width) / float64(opts.Height)
	} else if opts.Height > opts.Width {
		yExt = extent * float64(opts.Height) / float64(opts.Width)
	}
	plt.X.Min, plt.X.Max = -xExt, xExt
	plt.Y.Min, plt.Y.Max = -yExt, yExt
}
