package brain

import (
	"time"

	"go.uber.org/zap"

	"github.com/overmind-sim/overmind/internal/agent/world"
)

// Population manages the live agents of one simulation and fans their
// commands out to the host's sink.
//
// Iteration order is spawn order, so identical inputs and time sequences
// replay identically. Population is single-threaded like everything beneath
// it; a host that shards agents across workers must give each worker its own
// Population.
type Population struct {
	agents map[world.EntityID]*Agent
	order  []world.EntityID
	sink   CommandSink
	log    *zap.Logger
}

// NewPopulation returns an empty Population dispatching into sink.
//
// Precondition: sink must not be nil. A nil logger disables logging.
func NewPopulation(sink CommandSink, logger *zap.Logger) *Population {
	if sink == nil {
		panic("brain.NewPopulation: sink must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Population{
		agents: make(map[world.EntityID]*Agent),
		sink:   sink,
		log:    logger,
	}
}

// Spawn adds agent to the population.
//
// Precondition: agent must not be nil or already spawned.
func (p *Population) Spawn(agent *Agent) {
	if agent == nil {
		panic("brain.Population.Spawn: agent must not be nil")
	}
	if _, exists := p.agents[agent.ID()]; exists {
		return
	}
	p.agents[agent.ID()] = agent
	p.order = append(p.order, agent.ID())
	p.log.Info("agent spawned",
		zap.String("agent", agent.ID().String()),
		zap.String("profile", agent.Name()),
		zap.String("role", agent.Role()))
}

// Despawn removes the agent with the given ID; removing an unknown ID is a
// no-op. The agent's subsystems are simply dropped; there is no destructor
// logic to run.
func (p *Population) Despawn(id world.EntityID) {
	if _, exists := p.agents[id]; !exists {
		return
	}
	delete(p.agents, id)
	for i, ordered := range p.order {
		if ordered == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.log.Info("agent despawned", zap.String("agent", id.String()))
}

// Get returns the agent with the given ID, or false if not spawned.
func (p *Population) Get(id world.EntityID) (*Agent, bool) {
	a, ok := p.agents[id]
	return a, ok
}

// Len returns the number of live agents.
func (p *Population) Len() int {
	return len(p.agents)
}

// Tick runs one decision cycle for every agent in spawn order, dispatching
// each emitted command to the sink. Agents without a snapshot this tick are
// skipped; they simply stop being invoked, the same as a despawned agent.
func (p *Population) Tick(now, dt time.Duration, snapshots map[world.EntityID]*Snapshot) {
	for _, id := range p.order {
		snap, ok := snapshots[id]
		if !ok {
			continue
		}
		agent := p.agents[id]
		for _, cmd := range agent.Tick(now, dt, snap) {
			p.sink.Dispatch(cmd)
		}
	}
}
