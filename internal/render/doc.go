// Package render turns trajectories into images: an animated GIF of the
// swinging pendulum and an SVG trace of the outer bob. Frames are drawn with
// gonum/plot.
package render
