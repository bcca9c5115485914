package agent

// Arena is the single backing store of Agent records for one World. It is
// never shared across worlds or across goroutines: only the world's owning
// supervisor thread touches it (spec.md section 5).
type Arena struct {
	agents []Agent
	epoch  uint32
}

// Handle is a non-owning reference into an Arena, used by the contacts
// buffer and the test queue. It carries the epoch the Arena had when the
// handle was minted so a stale handle surviving a Reset is detectable
// rather than silently resolving to a reused AgentID (spec.md section 3:
// "no dangling weak reference survives such a transfer").
type Handle struct {
	ID    AgentID
	Epoch uint32
}

// NewArena allocates an arena sized for n agents, all zero-valued
// (Susceptible, Location LocField, ID 0) until Reset populates them.
func NewArena(n int) *Arena {
	return &Arena{agents: make([]Agent, n)}
}

// Reset reinitializes every agent to the zero record and bumps the epoch,
// invalidating every previously minted Handle.
func (a *Arena) Reset() {
	for i := range a.agents {
		a.agents[i] = Agent{ID: AgentID(i), CellIndex: -1}
	}
	a.epoch++
}

// Len returns the number of agents in the arena (the immutable population
// size N).
func (a *Arena) Len() int {
	return len(a.agents)
}

// Epoch returns the arena's current epoch.
func (a *Arena) Epoch() uint32 {
	return a.epoch
}

// Get returns a pointer to the agent with the given id. The returned
// pointer is valid only until the next Reset.
func (a *Arena) Get(id AgentID) *Agent {
	return &a.agents[id]
}

// Handle mints a Handle bound to the arena's current epoch for the given
// agent id.
func (a *Arena) Handle(id AgentID) Handle {
	return Handle{ID: id, Epoch: a.epoch}
}

// Resolve returns the agent for h, or nil if h was minted in a prior
// epoch (i.e. the world was reset since).
func (a *Arena) Resolve(h Handle) *Agent {
	if h.Epoch != a.epoch {
		return nil
	}
	return &a.agents[h.ID]
}

// All iterates over every agent in the arena in ID order.
func (a *Arena) All(fn func(*Agent)) {
	for i := range a.agents {
		fn(&a.agents[i])
	}
}

// CountByHealth returns a census of agents by health state, used both for
// statistics recording and for the conservation invariant in spec.md
// section 8.
func (a *Arena) CountByHealth() map[Health]int {
	counts := make(map[Health]int, 7)
	for i := range a.agents {
		counts[a.agents[i].Health]++
	}
	return counts
}
