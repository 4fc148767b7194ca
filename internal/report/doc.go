// Package report turns recorded depth sessions into charts: an interactive
// HTML chart of depth band statistics and a PNG of how far the head turned
// between depth capture and render on each frame.
package report
