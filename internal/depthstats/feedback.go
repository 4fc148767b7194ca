package depthstats

// Guidance lines shown to the user.
const (
	MsgNoHand    = "Move hand into the square"
	MsgCloser    = "Move hand closer"
	MsgFurther   = "Move hand further"
	MsgFlatter   = "Try to make your hand flatter"
	MsgLooksGood = "Looks good!"
)

// Thresholds is the acceptance window for a hand placement.
type Thresholds struct {
	MeanMin, MeanMax float64
	StdMin, StdMax   float64
}

// InRange reports whether s has samples and both its mean and population
// standard deviation fall inside the windows.
func (t Thresholds) InRange(s Stats) bool {
	if s.Count <= 0 {
		return false
	}
	meanOK := s.Mean >= t.MeanMin && s.Mean <= t.MeanMax
	stdOK := s.StdPop >= t.StdMin && s.StdPop <= t.StdMax
	return meanOK && stdOK
}

// Feedback returns the guidance lines for s. Distance advice comes first;
// "further" is only given when the hand is still inside the band.
func Feedback(s Stats, t Thresholds, band Band) []string {
	if s.Count == 0 {
		return []string{MsgNoHand}
	}
	var lines []string
	switch {
	case s.Mean > t.MeanMax:
		lines = append(lines, MsgCloser)
	case s.Mean < t.MeanMin && s.Mean >= band.Min:
		lines = append(lines, MsgFurther)
	}
	if s.StdPop >= t.StdMax {
		lines = append(lines, MsgFlatter)
	}
	if len(lines) == 0 {
		lines = append(lines, MsgLooksGood)
	}
	return lines
}
