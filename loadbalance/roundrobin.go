package loadbalance

import (
	"sync/atomic"

	"mini-echo/registry"
)

// RoundRobinBalancer distributes exchanges evenly across all instances in
// order. Uses an atomic counter for lock-free, goroutine-safe operation.
//
// Best for: instances with similar capacity.
type RoundRobinBalancer struct {
	counter int64 // Atomic counter, incremented on each Pick
}

// Pick selects the next instance in round-robin order.
func (b *RoundRobinBalancer) Pick(_ string, instances []registry.ServiceInstance) (*registry.ServiceInstance, error) {
	if len(instances) == 0 {
		return nil, ErrNoInstances
	}
	index := atomic.AddInt64(&b.counter, 1) % int64(len(instances))
	return &instances[index], nil
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
