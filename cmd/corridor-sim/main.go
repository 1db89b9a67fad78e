// Package main runs a corridor headless at a fixed frame rate and reports how
// the environment rotated.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/quasilyte/gdata/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/gekko3d/corridor"
)

const (
	flagConfig   = "config"
	flagDistance = "distance"
	flagStep     = "step"
	flagSeed     = "seed"
	flagPreset   = "preset"
	flagRush     = "rush"
	flagPersist  = "persist"
	flagDebug    = "debug"
	flagLogJSON  = "log-json"
	flagLoadWait = "load-timeout"
)

type simStats struct {
	frames uint64
}

func main() {
	app := &cli.App{
		Name:  "corridor-sim",
		Usage: "simulate a corridor run without rendering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Value:   "assets/corridor.yaml",
				Usage:   "load the environment from `FILE`",
			},
			&cli.Float64Flag{
				Name:  flagDistance,
				Value: 2000,
				Usage: "stop after travelling this far",
			},
			&cli.DurationFlag{
				Name:  flagStep,
				Value: time.Second / 60,
				Usage: "simulated frame duration",
			},
			&cli.Uint64Flag{
				Name:  flagSeed,
				Usage: "seed for set rotation and transition spacing, 0 picks one",
			},
			&cli.StringFlag{
				Name:  flagPreset,
				Usage: "override the graphics preset (low, medium, high)",
			},
			&cli.BoolFlag{
				Name:  flagRush,
				Usage: "enable rush mode",
			},
			&cli.BoolFlag{
				Name:  flagPersist,
				Usage: "read and save settings in the user data directory",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  flagLogJSON,
				Usage: "write structured JSON logs",
			},
			&cli.DurationFlag{
				Name:  flagLoadWait,
				Value: 10 * time.Second,
				Usage: "give up if transition models take longer than this to load",
			},
		},
		Action: runSim,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSim(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := corridor.LoadEnvironmentConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	if cfg.AssetRoot == "" {
		cfg.AssetRoot = filepath.Dir(c.String(flagConfig))
	}

	var data *gdata.Manager
	if c.Bool(flagPersist) {
		data, err = gdata.Open(gdata.Config{AppName: "corridor-sim"})
		if err != nil {
			return errors.Wrap(err, "opening settings storage")
		}
	}
	settings := corridor.NewSettingsStore(data, logger)
	if name := c.String(flagPreset); name != "" {
		preset, err := corridor.ParseGraphicsPreset(name)
		if err != nil {
			return err
		}
		settings.SetGraphicsPreset(preset)
	}
	if c.IsSet(flagRush) {
		settings.SetRushMode(c.Bool(flagRush))
	}

	seed := c.Uint64(flagSeed)
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.Infof("seed %d", seed)

	game := corridor.NewAppBuilder().
		UseStates(corridor.StateLoading, corridor.StateFinished).
		UseModule(
			corridor.LoggingModule{Logger: logger},
			corridor.TimeModule{FixedStep: c.Duration(flagStep)},
			corridor.RunStateModule{
				Speed:        cfg.Run.Speed,
				Acceleration: cfg.Run.Acceleration,
				MaxSpeed:     cfg.Run.MaxSpeed,
				Goal:         c.Float64(flagDistance),
				Settings:     settings,
			},
			corridor.SceneModule{},
			corridor.AssetServerModule{Loader: corridor.YAMLModelLoader{Root: cfg.AssetRoot}},
			corridor.EnvironmentModule{
				Config: cfg,
				Rand:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
			},
		).
		Build()

	stats := &simStats{}
	game.Commands().AddResources(stats)
	game.UseSystem(
		corridor.System(statsSystem).
			InStage(corridor.Finale).
			InState(corridor.OnExecute(corridor.StateRunning)),
	)

	assets := corridor.MustResource[corridor.AssetServer](game)
	defer assets.Close()

	ctx, cancel := context.WithTimeout(c.Context, c.Duration(flagLoadWait))
	defer cancel()
	if err := assets.Wait(ctx); err != nil {
		return errors.Wrapf(err, "loading %d transitions", len(cfg.Transitions))
	}

	game.Run()

	run := corridor.MustResource[corridor.RunState](game)
	env := corridor.MustResource[corridor.EnvironmentManager](game)
	logger.Zap().Info("simulation complete",
		zap.Uint64("seed", seed),
		zap.Float64("distance", run.DistanceTravelled),
		zap.Uint64("frames", stats.frames),
		zap.Int("rotations", env.Rotations()),
		zap.Int("transitions", env.TransitionsPlayed()),
	)

	if c.Bool(flagPersist) {
		return settings.Save()
	}
	return nil
}

func statsSystem(stats *simStats) {
	stats.frames++
}

func newLogger(c *cli.Context) (*corridor.DefaultLogger, error) {
	if !c.Bool(flagLogJSON) {
		return corridor.NewDefaultLogger("corridor-sim", c.Bool(flagDebug)), nil
	}

	cfg := zap.NewProductionConfig()
	if c.Bool(flagDebug) {
		cfg.Level.SetLevel(zap.DebugLevel)
	}
	base, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building json logger")
	}
	return corridor.WrapZap(base.Named("corridor-sim"), c.Bool(flagDebug)), nil
}
