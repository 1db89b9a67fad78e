package corridor

import (
	"math/rand/v2"
)

// EnvironmentModule builds the environment manager from a config and drives
// it once per running frame. It needs the run state, scene and asset server
// modules installed before it.
type EnvironmentModule struct {
	Config *EnvironmentConfig
	// Rand seeds set rotation and transition spacing. Nil picks a random seed.
	Rand *rand.Rand
}

func (mod EnvironmentModule) Install(app *App, cmd *Commands) {
	run := MustResource[RunState](app)
	scene := MustResource[EcsScene](app)
	assets := MustResource[AssetServer](app)

	settings, _ := run.Settings.Get()
	manager, err := NewEnvironmentManager(
		EnvironmentDeps{
			Run:           run,
			Scene:         scene,
			Log:           app.Logger(),
			Rand:          mod.Rand,
			LampIntensity: mod.Config.LampIntensity,
		},
		SegmentFactory(mod.Config.Sets, run, settings),
		len(mod.Config.Transitions),
	)
	if err != nil {
		panic(err)
	}
	manager.LoadTransitions(assets, mod.Config.Transitions)

	cmd.AddResources(manager)
	cmd.UseSystem(
		System(loadingSystem).
			InStage(PostUpdate).
			InState(OnExecute(StateLoading)),
	)
	cmd.UseSystem(
		System(loadCompleteSystem).
			InStage(Prelude).
			InState(OnEnter(StateRunning)),
	)
	cmd.UseSystem(
		System(environmentSettingsSystem).
			InStage(PreUpdate).
			InState(OnExecute(StateRunning)),
	)
	cmd.UseSystem(
		System(environmentSystem).
			InStage(Update).
			InState(OnExecute(StateRunning)),
	)
	cmd.UseSystem(
		System(environmentSummarySystem).
			InStage(Finale).
			InState(OnExit(StateRunning)),
	)
}

func loadingSystem(assets *AssetServer, cmd *Commands) {
	if assets.Pending() == 0 {
		cmd.ChangeState(StateRunning)
	}
}

func loadCompleteSystem(env *EnvironmentManager) {
	env.OnLoadComplete()
}

func environmentSettingsSystem(env *EnvironmentManager) {
	env.SyncSettings()
}

func environmentSystem(t *Time, env *EnvironmentManager) {
	env.Update(t.Delta())
}

func environmentSummarySystem(env *EnvironmentManager, run *RunState, cmd *Commands) {
	cmd.app.Logger().Infof("run stopped at %.1f after %d set rotations and %d transitions",
		run.DistanceTravelled, env.Rotations(), env.TransitionsPlayed())
}
