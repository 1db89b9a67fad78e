package corridor

const (
	StateLoading State = iota
	StateRunning
	StateFinished
)

// MotionSource reports how fast the world scrolls towards the camera.
type MotionSource interface {
	MovingSpeed() float32
}

// RunState is the shared progress of one run: scroll speed, distance covered
// and the settings the run was configured with.
type RunState struct {
	Speed        float32
	Acceleration float32
	MaxSpeed     float32

	DistanceTravelled float64
	// Goal ends the run once reached. Zero runs forever.
	Goal     float64
	Settings *SettingsStore

	initialSpeed  float32
	resetHandlers []func()
}

func NewRunState(speed, acceleration, maxSpeed float32, settings *SettingsStore) *RunState {
	return &RunState{
		Speed:        speed,
		Acceleration: acceleration,
		MaxSpeed:     maxSpeed,
		Settings:     settings,
		initialSpeed: speed,
	}
}

func (r *RunState) MovingSpeed() float32 {
	return r.Speed
}

// Advance integrates one tick of motion.
func (r *RunState) Advance(delta float32) {
	if r.Acceleration != 0 {
		r.Speed += r.Acceleration * delta
		if r.MaxSpeed > 0 && r.Speed > r.MaxSpeed {
			r.Speed = r.MaxSpeed
		}
	}
	r.DistanceTravelled += float64(r.Speed * delta)
}

// OnReset registers fn to run on every Reset, in registration order.
func (r *RunState) OnReset(fn func()) {
	r.resetHandlers = append(r.resetHandlers, fn)
}

// Reset restarts the run from zero distance at the initial speed.
func (r *RunState) Reset() {
	r.DistanceTravelled = 0
	r.Speed = r.initialSpeed
	for _, fn := range r.resetHandlers {
		fn()
	}
}

func (r *RunState) Finished() bool {
	return r.Goal > 0 && r.DistanceTravelled >= r.Goal
}

type RunStateModule struct {
	Speed        float32
	Acceleration float32
	MaxSpeed     float32
	Goal         float64
	Settings     *SettingsStore
}

func (mod RunStateModule) Install(app *App, cmd *Commands) {
	settings := mod.Settings
	if settings == nil {
		settings = NewSettingsStore(nil, app.Logger())
	}
	run := NewRunState(mod.Speed, mod.Acceleration, mod.MaxSpeed, settings)
	run.Goal = mod.Goal
	cmd.AddResources(settings, run)
	cmd.UseSystem(
		System(runStateSystem).
			InStage(PreUpdate).
			InState(OnExecute(StateRunning)),
	)
	cmd.UseSystem(
		System(runGoalSystem).
			InStage(Finale).
			InState(OnExecute(StateRunning)),
	)
}

func runStateSystem(t *Time, run *RunState) {
	run.Advance(t.Delta())
}

func runGoalSystem(run *RunState, cmd *Commands) {
	if run.Finished() {
		cmd.ChangeState(StateFinished)
	}
}
