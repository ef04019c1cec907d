package render

import (
	"fmt"
	"io"

	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// SVG writes the full path of the outer bob with the pendulum drawn at its
// final position.
func SVG(w io.Writer, tr *sim.Trajectory, p physics.Params, opts Options) error {
	if tr.Len() == 0 {
		return fmt.Errorf("empty trajectory")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid render options %+v", opts)
	}

	positions := tr.Positions(p)
	path := make(plotter.XYs, len(positions))
	for i, pos := range positions {
		path[i] = toPlot(pos.X2, pos.Y2)
	}

	var under []plot.Plotter
	if len(path) > 1 {
		line, err := plotter.NewLine(path)
		if err != nil {
			return err
		}
		line.LineStyle.Color = fade(outerColor, 0.6)
		under = append(under, line)
	}

	plt, err := newFrame(positions[len(positions)-1], under, p, opts)
	if err != nil {
		return err
	}

	width, height := opts.size()
	c := vgsvg.New(width, height)
	plt.Draw(draw.New(c))

	_, err = c.WriteTo(w)
	return err
}
