package render

import (
	"fmt"
	"image"
	imgdraw "image/draw"
	"image/color/palette"
	"image/gif"
	"io"
	"math"

	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// FrameIndices picks the trajectory index shown at each frame time k/fps.
func FrameIndices(tr *sim.Trajectory, fps int) []int {
	if tr.Len() == 0 || fps <= 0 {
		return nil
	}
	dt := tr.Dt()
	if dt == 0 {
		return []int{0}
	}

	stride := 1 / (float64(fps) * dt)
	var out []int
	for k := 0; ; k++ {
		idx := int(math.Round(float64(k) * stride))
		if idx >= tr.Len() {
			break
		}
		out = append(out, idx)
	}
	return out
}

// GIF encodes an animation of tr at opts.FPS.
func GIF(w io.Writer, tr *sim.Trajectory, p physics.Params, opts Options) error {
	if opts.FPS <= 0 || opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid render options %+v", opts)
	}
	indices := FrameIndices(tr, opts.FPS)
	if len(indices) == 0 {
		return fmt.Errorf("empty trajectory")
	}

	positions := tr.Positions(p)
	delay := max(1, int(math.Round(100/float64(opts.FPS))))

	anim := &gif.GIF{LoopCount: 0}
	trail := make([]plotter.XY, 0, opts.Trail+1)

	for _, idx := range indices {
		pos := positions[idx]
		if opts.Trail > 0 {
			trail = append(trail, toPlot(pos.X2, pos.Y2))
			if len(trail) > opts.Trail {
				trail = trail[1:]
			}
		}

		img, err := rasterize(pos, trail, p, opts, tr.Times[idx])
		if err != nil {
			return fmt.Errorf("frame at t=%g: %w", tr.Times[idx], err)
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)
	}

	return gif.EncodeAll(w, anim)
}

func rasterize(pos physics.Position, trail []plotter.XY, p physics.Params, opts Options, t float64) (*image.Paletted, error) {
	under, err := trailSegments(trail)
	if err != nil {
		return nil, err
	}
	plt, err := newFrame(pos, under, p, opts)
	if err != nil {
		return nil, err
	}
	if opts.Title {
		plt.Title.Text = fmt.Sprintf("t = %.2f s", t)
	}

	w, h := opts.size()
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi(opts)))
	plt.Draw(draw.New(c))

	src := c.Image()
	bounds := image.Rect(0, 0, opts.Width, opts.Height)
	frame := image.NewPaletted(bounds, palette.Plan9)
	imgdraw.Draw(frame, bounds, src, src.Bounds().Min, imgdraw.Src)
	return frame, nil
}

func dpi(opts Options) int {
	if opts.DPI <= 0 {
		return 96
	}
	return opts.DPI
}
