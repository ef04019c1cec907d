// Package viz replays stored double pendulum runs in the terminal.
//
// The replay is a Bubble Tea program drawing on a [Canvas] of braille
// characters, with a lipgloss side panel showing time, angles and energy.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+ / - - Double/halve the playback speed
//	R     - Restart from the first point
//	T     - Cycle color themes
//	Q     - Quit
package viz
