package corridor

import (
	"time"
)

type Time struct {
	Time time.Time
	Dt   time.Duration
	// Frame counts completed time steps.
	Frame uint64

	fixed time.Duration
}

// Delta is the last frame's duration in seconds.
func (t *Time) Delta() float32 {
	return float32(t.Dt.Seconds())
}

// TimeModule advances a Time resource once per frame. A non-zero FixedStep
// replaces the wall clock, which keeps headless runs and tests deterministic.
type TimeModule struct {
	FixedStep time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time:  time.Now(),
		fixed: mod.FixedStep,
	})
	cmd.UseSystem(System(timeSystem).InStage(Prelude).RunAlways())
}

func timeSystem(timeResource *Time) {
	if timeResource.fixed > 0 {
		timeResource.Dt = timeResource.fixed
		timeResource.Time = timeResource.Time.Add(timeResource.fixed)
	} else {
		now := time.Now()
		timeResource.Dt = now.Sub(timeResource.Time)
		timeResource.Time = now
	}
	timeResource.Frame++
}
