// Package main provides the standalone simulation runner for the decision
// engine. It wires together configuration, scripting, role profiles, and an
// agent population, then drives a fixed-step tick loop over a synthetic
// world.
package main

import (
	"flag"
	"log"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/overmind-sim/overmind/internal/agent/brain"
	"github.com/overmind-sim/overmind/internal/agent/profile"
	"github.com/overmind-sim/overmind/internal/agent/target"
	"github.com/overmind-sim/overmind/internal/agent/world"
	"github.com/overmind-sim/overmind/internal/config"
	"github.com/overmind-sim/overmind/internal/observability"
	"github.com/overmind-sim/overmind/internal/scripting"
)

func main() {
	configPath := flag.String("config", "configs/sim.yaml", "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Initialize logger
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting overmind simulation runner",
		zap.String("profiles", cfg.Engine.ProfileDir),
		zap.Duration("step", cfg.Runner.StepInterval),
		zap.Int("steps", cfg.Runner.Steps),
	)

	// Optional Lua sandbox for custom curves and predicates
	var sandbox *scripting.Sandbox
	var curves profile.CurveResolver
	if cfg.Engine.ScriptFile != "" {
		sandbox = scripting.New(0)
		defer sandbox.Close()
		if err := sandbox.DoFile(cfg.Engine.ScriptFile); err != nil {
			logger.Fatal("loading script", zap.Error(err))
		}
		curves = sandbox
		logger.Info("script loaded", zap.String("file", cfg.Engine.ScriptFile))
	}

	// Load role profiles
	profiles, err := profile.Load(cfg.Engine.ProfileDir)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}
	if len(profiles) == 0 {
		logger.Fatal("no profiles found", zap.String("dir", cfg.Engine.ProfileDir))
	}
	logger.Info("profiles loaded", zap.Int("count", len(profiles)))

	sink := brain.CommandSinkFunc(func(cmd brain.Command) {
		logger.Info("command",
			zap.String("agent", cmd.Agent.String()),
			zap.String("command", cmd.String()),
		)
	})
	population := brain.NewPopulation(sink, logger)

	defaults := brain.Defaults{
		TickRate:          cfg.Engine.TickRate,
		UpdateInterval:    cfg.Engine.UpdateInterval,
		ReacquisitionTime: cfg.Engine.ReacquisitionTime,
		StateTimeout:      cfg.Engine.StateTimeout,
	}

	var ids []world.EntityID
	for _, prof := range profiles {
		agent, err := brain.NewAgent(prof, brain.Options{
			Logger:   logger,
			Curves:   curves,
			Defaults: defaults,
			Patrol: []world.Vec3{
				{X: 0, Z: 0},
				{X: 10, Z: 0},
				{X: 10, Z: 10},
				{X: 0, Z: 10},
			},
		})
		if err != nil {
			logger.Fatal("building agent", zap.String("profile", prof.Name), zap.Error(err))
		}
		population.Spawn(agent)
		ids = append(ids, agent.ID())
	}

	runLoop(population, ids, cfg.Runner, logger)
	logger.Info("simulation complete")
}

// runLoop advances the population through a synthetic world: a single enemy
// circling the origin while agent health slowly drains and recovers.
func runLoop(population *brain.Population, ids []world.EntityID, cfg config.RunnerConfig, logger *zap.Logger) {
	enemy := world.NewEntityID()
	dt := cfg.StepInterval

	for step := 0; step < cfg.Steps; step++ {
		now := time.Duration(step) * dt
		elapsed := now.Seconds()

		// Enemy orbits at radius 20, closing slowly.
		radius := math.Max(20.0-elapsed/2, 3.0)
		enemyPos := world.Vec3{
			X: radius * math.Cos(elapsed/5),
			Z: radius * math.Sin(elapsed/5),
		}
		health := 0.5 + 0.5*math.Cos(elapsed/30)

		snapshots := make(map[world.EntityID]*brain.Snapshot, len(ids))
		for _, id := range ids {
			distance := enemyPos.Length()
			snapshots[id] = &brain.Snapshot{
				Position: world.Vec3{},
				Context: world.Context{
					HealthPercent:  health,
					ResourceAmount: 100 + elapsed*5,
					EnemyDistance:  distance,
					AlliedUnits:    float64(len(ids) - 1),
					TimeElapsed:    elapsed,
				},
				Candidates: []target.Candidate{
					{
						Entity:      enemy,
						Position:    enemyPos,
						Distance:    distance,
						Health:      80,
						MaxHealth:   100,
						Damage:      12,
						ThreatLevel: target.ThreatLevel(12, 80, 100, distance),
					},
				},
			}
		}

		population.Tick(now, dt, snapshots)
	}

	logger.Info("steps finished", zap.Int("steps", cfg.Steps))
}
