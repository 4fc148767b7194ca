package depthstats

import (
	"github.com/banshee-data/depth.report/internal/config"
	"github.com/banshee-data/depth.report/internal/monitoring"
	"github.com/banshee-data/depth.report/internal/timeutil"
)

// Result is one evaluation of the runner.
type Result struct {
	Stats    Stats
	InRange  bool
	Feedback []string
}

// RunnerConfig wires a Runner.
type RunnerConfig struct {
	Settings *config.DepthConfig
	Clock    timeutil.Clock

	// OnThresholdMet fires when the placement enters the acceptance
	// window, not while it stays there.
	OnThresholdMet func(Stats)
}

// Runner evaluates depth images at a throttled rate. It is not safe for
// concurrent use.
type Runner struct {
	band       Band
	thresholds Thresholds
	throttle   *timeutil.Throttle
	onMet      func(Stats)

	wasInRange bool
	last       Result
	evaluated  bool
}

// NewRunner builds a Runner from cfg. A nil Settings uses the defaults.
func NewRunner(cfg RunnerConfig) *Runner {
	s := cfg.Settings
	if s == nil {
		s = config.EmptyDepthConfig()
	}
	return &Runner{
		band: Band{Min: s.GetBandMin(), Max: s.GetBandMax()},
		thresholds: Thresholds{
			MeanMin: s.GetMeanThresholdMin(),
			MeanMax: s.GetMeanThresholdMax(),
			StdMin:  s.GetStdThresholdMin(),
			StdMax:  s.GetStdThresholdMax(),
		},
		throttle: timeutil.NewThrottle(cfg.Clock, s.GetStatsUpdateInterval()),
		onMet:    cfg.OnThresholdMet,
	}
}

// Band returns the depth band the runner measures.
func (r *Runner) Band() Band { return r.band }

// Thresholds returns the acceptance window.
func (r *Runner) Thresholds() Thresholds { return r.thresholds }

// Update evaluates img if the update interval has elapsed. It returns the
// result and whether an evaluation happened.
func (r *Runner) Update(img Image) (Result, bool) {
	if !r.throttle.Ready() {
		return r.last, false
	}
	s := Compute(img, r.band)
	res := Result{
		Stats:    s,
		InRange:  r.thresholds.InRange(s),
		Feedback: Feedback(s, r.thresholds, r.band),
	}
	if res.InRange && !r.wasInRange {
		monitoring.Logf("[depthstats] threshold met: %s", s)
		if r.onMet != nil {
			r.onMet(s)
		}
	}
	r.wasInRange = res.InRange
	r.last = res
	r.evaluated = true
	return res, true
}

// Last returns the most recent result and whether there is one.
func (r *Runner) Last() (Result, bool) { return r.last, r.evaluated }
