package analysis

import (
	"strings"

	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/sim"
)

type Point struct {
	X, Y float64
}

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortrait projects tr onto the (xIdx, yIdx) plane.
func PhasePortrait(tr *sim.Trajectory, xIdx, yIdx int) *PhasePortrait2D {
	if !validIndex(xIdx) || !validIndex(yIdx) {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, tr.Len()),
	}
	for i, x := range tr.States {
		portrait.Points[i] = Point{X: x[xIdx], Y: x[yIdx]}
	}
	return portrait
}

func validIndex(idx int) bool { return idx >= 0 && idx < dynamo.Dim }

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 1 || height <= 1 {
		return ""
	}
	return scatterASCII(portrait.Points, width, height)
}

func scatterASCII(points []Point, width, height int) string {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y

	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Axes, where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records points when a trajectory crosses a plane
type PoincareSection struct {
	CrossIndex int
	Level      float64
	Points     []Point
	Times      []float64
}

// NewPoincareSection records (x[xIdx], x[yIdx]) each time component
// crossIdx of tr crosses level upwards. Values at the crossing are linearly
// interpolated between the two grid points around it.
func NewPoincareSection(tr *sim.Trajectory, crossIdx int, level float64, xIdx, yIdx int) *PoincareSection {
	if !validIndex(crossIdx) || !validIndex(xIdx) || !validIndex(yIdx) {
		return nil
	}

	section := &PoincareSection{CrossIndex: crossIdx, Level: level}

	for i := 1; i < tr.Len(); i++ {
		t0, prev := tr.At(i - 1)
		t1, curr := tr.At(i)

		if !(prev[crossIdx] < level && curr[crossIdx] >= level) {
			continue
		}

		frac := (level - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
		section.Points = append(section.Points, Point{
			X: lerp(prev[xIdx], curr[xIdx], frac),
			Y: lerp(prev[yIdx], curr[yIdx], frac),
		})
		section.Times = append(section.Times, lerp(t0, t1, frac))
	}

	return section
}

func lerp(a, b, frac float64) float64 { return a + (b-a)*frac }

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(section *PoincareSection, width, height int) string {
	if section == nil || len(section.Points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: section.Points}, width, height)
}
