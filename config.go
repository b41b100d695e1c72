package shard

// Config holds process-wide tuning knobs for every World created in this
// process. Individual Worlds never need their own copy — these are cheap
// defaults, not per-world state.
var Config config = config{
	jobWorkers: 0, // 0 means GOMAXPROCS at Job-runner construction time
}

type config struct {
	// jobWorkers is the default fixed worker-pool size for the Job runner.
	// 0 selects runtime.GOMAXPROCS(0) lazily.
	jobWorkers int

	// events, if set, is notified on spawn/despawn/add/remove across every
	// World, for host applications that want a single hook point (metrics,
	// replay capture) instead of per-World wiring.
	events Events
}

// SetJobWorkers overrides the Job runner's default worker-pool size. Zero
// restores the GOMAXPROCS default.
func (c *config) SetJobWorkers(n int) {
	c.jobWorkers = n
}

// SetEvents installs a process-wide structural event sink.
func (c *config) SetEvents(e Events) {
	c.events = e
}

// Events is a lightweight observer seam for structural changes, used
// instead of baking a specific logging library into the core — see
// World.Logger for the per-world, development-time equivalent.
type Events interface {
	OnSpawn(EntityId)
	OnDespawn(EntityId)
	OnAddComponent(EntityId, KeyId)
	OnRemoveComponent(EntityId, KeyId)
}
