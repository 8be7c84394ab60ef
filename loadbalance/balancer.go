// Package loadbalance provides strategies for spreading exchanges across
// multiple discovered echo servers.
//
// Three strategies are implemented:
//   - RoundRobin:      Equal-capacity instances
//   - WeightedRandom:  Heterogeneous instances (different CPU/memory)
//   - ConsistentHash:  The same message always lands on the same instance
package loadbalance

import (
	"errors"
	"fmt"

	"mini-echo/registry"
)

// ErrNoInstances is returned by Pick when discovery found no servers.
var ErrNoInstances = errors.New("loadbalance: no instances available")

// Balancer is the interface for load balancing strategies.
// The client calls Pick before each exchange to select a target instance.
type Balancer interface {
	// Pick selects one instance from the available list. key is the request
	// message; strategies without affinity ignore it. Called on every
	// exchange, so it must be goroutine-safe.
	Pick(key string, instances []registry.ServiceInstance) (*registry.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}

// New maps a strategy name to a fresh Balancer. Recognized names are
// "roundrobin", "random" and "hash".
func New(strategy string) (Balancer, error) {
	switch strategy {
	case "roundrobin":
		return &RoundRobinBalancer{}, nil
	case "random":
		return &WeightedRandomBalancer{}, nil
	case "hash":
		return NewConsistentHashBalancer(), nil
	default:
		return nil, fmt.Errorf("loadbalance: unknown strategy %q", strategy)
	}
}
