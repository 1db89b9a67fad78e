package corridor

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testEnvironmentConfig() *EnvironmentConfig {
	return &EnvironmentConfig{
		LampIntensity: DefaultLampIntensity,
		Transitions:   []string{"gate-a", "gate-b"},
		Sets: []SegmentTemplate{
			{Name: "hallway", Length: 40, Lamps: []mgl32.Vec3{{0, 3, -10}, {0, 3, -30}}},
			{Name: "storage", Length: 60, Transition: slot(1), Lamps: []mgl32.Vec3{{0, 3, -20}}},
			{Name: "reactor", Length: 50, NotInitial: true},
		},
		Run: RunConfig{Speed: 10},
	}
}

// buildEnvironmentApp installs first ahead of the environment stack, which
// lets a test put its own logger in place.
func buildEnvironmentApp(t *testing.T, loader ModelLoader, goal float64, first ...Module) *App {
	t.Helper()
	cfg := testEnvironmentConfig()
	require.NoError(t, cfg.Validate())

	modules := append(first,
		TimeModule{FixedStep: 100 * time.Millisecond},
		RunStateModule{Speed: cfg.Run.Speed, Goal: goal},
		SceneModule{},
		AssetServerModule{Loader: loader},
		EnvironmentModule{Config: cfg, Rand: newTestRand(21)},
	)
	app := NewAppBuilder().
		UseStates(StateLoading, StateFinished).
		UseModule(modules...).
		Build()
	t.Cleanup(func() { MustResource[AssetServer](app).Close() })
	return app
}

func TestEnvironmentModule_LoadThenRun(t *testing.T) {
	loader := newGatedLoader()
	app := buildEnvironmentApp(t, loader, 400)
	env := MustResource[EnvironmentManager](app)
	run := MustResource[RunState](app)

	for i := 0; i < 5; i++ {
		app.Step()
	}
	assert.Equal(t, StateLoading, app.State())
	assert.Zero(t, run.DistanceTravelled, "nothing moves while loading")

	loader.open("gate-b")
	assert.Eventually(t, func() bool {
		app.Step()
		return env.Transitions()[1] != nil
	}, time.Second, time.Millisecond)
	assert.Equal(t, StateLoading, app.State())
	assert.True(t, env.Transitions()[1].Model().Visible, "shown while loading")

	loader.open("gate-a")
	assert.Eventually(t, func() bool {
		app.Step()
		return app.State() == StateRunning
	}, time.Second, time.Millisecond)
	for _, tr := range env.Transitions() {
		require.NotNil(t, tr)
		assert.False(t, tr.Model().Visible, "hidden once loading completes")
	}

	triggers := 0
	for app.Step() {
		if tr := env.ActiveTransition(); tr != nil && tr.State() == TransitionActivating {
			triggers++
		}
		require.True(t, env.ActiveSet() != env.NextActiveSet())
	}

	assert.Equal(t, StateFinished, app.State())
	assert.GreaterOrEqual(t, run.DistanceTravelled, 400.0)
	assert.GreaterOrEqual(t, triggers, 2)
	assert.Equal(t, triggers, env.TransitionsPlayed())
	assert.Positive(t, env.Rotations())
	assert.Positive(t, env.LastTransitionDistance())
}

func TestEnvironmentModule_LogsSummaryWhenRunStops(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	loader := newGatedLoader()
	loader.open("gate-a")
	loader.open("gate-b")
	app := buildEnvironmentApp(t, loader, 150, LoggingModule{Logger: WrapZap(zap.New(core), false)})
	env := MustResource[EnvironmentManager](app)

	app.Run()

	stopped := logs.FilterMessageSnippet("run stopped at").AllUntimed()
	require.Len(t, stopped, 1)
	assert.Contains(t, stopped[0].Message, fmt.Sprintf("after %d set rotations and %d transitions",
		env.Rotations(), env.TransitionsPlayed()))
}

func TestEnvironmentModule_SettingsChangeResetsRun(t *testing.T) {
	loader := newGatedLoader()
	loader.open("gate-a")
	loader.open("gate-b")
	app := buildEnvironmentApp(t, loader, 0)
	env := MustResource[EnvironmentManager](app)
	run := MustResource[RunState](app)

	assert.Eventually(t, func() bool {
		app.Step()
		return app.State() == StateRunning
	}, time.Second, time.Millisecond)

	for i := 0; i < 20; i++ {
		app.Step()
	}
	require.Positive(t, run.DistanceTravelled)
	assert.Equal(t, 13, env.MaxPointLights())

	run.Settings.SetGraphicsPreset(GraphicsLow)
	app.Step()

	assert.Equal(t, 8, env.MaxPointLights())
	assert.Zero(t, run.DistanceTravelled)
	assert.Zero(t, env.LastTransitionDistance())
	assert.False(t, env.ActiveSet().NotInitial())
}

func TestEnvironmentModule_MissingDependenciesPanic(t *testing.T) {
	assert.Panics(t, func() {
		NewAppBuilder().
			UseStates(StateLoading, StateFinished).
			UseModule(EnvironmentModule{Config: testEnvironmentConfig()}).
			Build()
	})
}

func TestEnvironmentModule_InvalidConfigPanics(t *testing.T) {
	cfg := testEnvironmentConfig()
	cfg.Sets = cfg.Sets[:1]

	assert.Panics(t, func() {
		NewAppBuilder().
			UseStates(StateLoading, StateFinished).
			UseModule(
				RunStateModule{Speed: 10},
				SceneModule{},
				AssetServerModule{Loader: newGatedLoader()},
				EnvironmentModule{Config: cfg},
			).
			Build()
	})
}
