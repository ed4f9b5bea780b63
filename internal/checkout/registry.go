package checkout

import (
	"context"
	"sync"
	"time"
)

const registrySweep = time.Minute

type registryEntry struct {
	machine  *Machine
	lastSeen time.Time
}

// Registry keeps one Machine per browser session. Machines idle for idleTTL
// are dropped unless a backend call is in flight.
type Registry struct {
	mu       sync.Mutex
	machines map[string]*registryEntry
	bridge   *Bridge
	idleTTL  time.Duration
}

func NewRegistry(bridge *Bridge, idleTTL time.Duration) *Registry {
	return &Registry{machines: make(map[string]*registryEntry), bridge: bridge, idleTTL: idleTTL}
}

// Machine returns the session's machine, creating it around cart on first use.
// A session whose cart was re-hydrated gets its machine bound to the new cart.
func (r *Registry) Machine(sessionID string, cart Cart) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.machines[sessionID]; ok {
		e.lastSeen = time.Now()
		e.machine.bind(cart)
		return e.machine
	}
	m := r.bridge.NewMachine(cart)
	r.machines[sessionID] = &registryEntry{machine: m, lastSeen: time.Now()}
	return m
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.machines)
}

// Run evicts idle machines until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	t := time.NewTicker(registrySweep)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			r.sweep(time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sid, e := range r.machines {
		if now.Sub(e.lastSeen) > r.idleTTL && !e.machine.State().Status.Busy() {
			delete(r.machines, sid)
		}
	}
}
