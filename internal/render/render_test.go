package render

import (
	"bytes"
	"image/color"
	"image/gif"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
)

func shortRun(t *testing.T) *sim.Trajectory {
	t.Helper()
	tr, err := sim.Integrate(dynamo.NewState(2, 0, 2.5, 0), physics.DefaultParams(), 1.5, 0.01)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	return tr
}

func TestFrameIndices(t *testing.T) {
	tr := shortRun(t)

	idx := FrameIndices(tr, 10)
	if len(idx) != 16 {
		t.Fatalf("expected 16 frames, got %d", len(idx))
	}
	for k, i := range idx {
		if i != 10*k {
			t.Errorf("frame %d: index %d, want %d", k, i, 10*k)
		}
	}

	if got := FrameIndices(tr, 100); len(got) != tr.Len() {
		t.Errorf("fps matching the grid should show every point, got %d", len(got))
	}
	if FrameIndices(tr, 0) != nil {
		t.Error("expected no frames at zero fps")
	}
	if got := FrameIndices(sim.FromRows([]sim.Row{{}}), 30); len(got) != 1 {
		t.Errorf("single point trajectory: got %v", got)
	}
}

func TestGIF(t *testing.T) {
	tr := shortRun(t)
	opts := Options{FPS: 10, Width: 64, Height: 48, Trail: 5, DPI: 96}

	var buf bytes.Buffer
	if err := GIF(&buf, tr, physics.DefaultParams(), opts); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("output is not a GIF: %v", err)
	}
	if len(anim.Image) != 16 {
		t.Errorf("expected 16 frames, got %d", len(anim.Image))
	}
	if anim.Delay[0] != 10 {
		t.Errorf("expected delay 10, got %d", anim.Delay[0])
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("unexpected frame size %v", b)
	}
}

func TestGIFInvalid(t *testing.T) {
	var buf bytes.Buffer
	if err := GIF(&buf, shortRun(t), physics.DefaultParams(), Options{FPS: 0, Width: 10, Height: 10}); err == nil {
		t.Error("expected error for zero fps")
	}
	if err := GIF(&buf, sim.FromRows(nil), physics.DefaultParams(), DefaultOptions()); err == nil {
		t.Error("expected error for an empty trajectory")
	}
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, shortRun(t), physics.DefaultParams(), DefaultOptions()); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Error("output is not an SVG document")
	}
	if err := SVG(&buf, sim.FromRows(nil), physics.DefaultParams(), DefaultOptions()); err == nil {
		t.Error("expected error for an empty trajectory")
	}
}

func TestFade(t *testing.T) {
	c := color.RGBA{R: 200, G: 0, B: 100, A: 255}
	if fade(c, 1) != c {
		t.Errorf("full strength must keep the colour, got %v", fade(c, 1))
	}
	if fade(c, 0) != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("zero strength must be white, got %v", fade(c, 0))
	}
}

func TestToPlotFlipsY(t *testing.T) {
	pos := physics.ToCartesian(0, 0, physics.DefaultParams())
	xy := toPlot(pos.X2, pos.Y2)
	if math.Abs(xy.X) > 1e-12 || xy.Y != -2 {
		t.Errorf("hanging outer bob should plot at (0, -2), got %+v", xy)
	}
}
