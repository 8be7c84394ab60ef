package registry

import "sync"

// Cache keeps a watch-fed snapshot of a service's instance list so that
// lookups never block on the registry. One initial Discover seeds it, then a
// background goroutine applies every Watch update.
type Cache struct {
	mu        sync.RWMutex
	instances []ServiceInstance
}

// NewCache seeds a cache for serviceName and starts following updates.
func NewCache(reg Registry, serviceName string) (*Cache, error) {
	instances, err := reg.Discover(serviceName)
	if err != nil {
		return nil, err
	}
	c := &Cache{instances: instances}
	go c.follow(reg.Watch(serviceName))
	return c, nil
}

// Instances returns the latest known instance list. The returned slice is a
// copy; callers may keep it without racing the watcher.
func (c *Cache) Instances() []ServiceInstance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ServiceInstance, len(c.instances))
	copy(out, c.instances)
	return out
}

func (c *Cache) follow(updates <-chan []ServiceInstance) {
	for instances := range updates {
		c.mu.Lock()
		c.instances = instances
		c.mu.Unlock()
	}
}
