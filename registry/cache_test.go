package registry

import (
	"testing"
	"time"
)

// fakeRegistry 仅用于测试：Watch 推送由测试直接控制
type fakeRegistry struct {
	instances []ServiceInstance
	updates   chan []ServiceInstance
}

func (f *fakeRegistry) Register(string, ServiceInstance, int64) error { return nil }
func (f *fakeRegistry) Deregister(string, string) error               { return nil }
func (f *fakeRegistry) Discover(string) ([]ServiceInstance, error)    { return f.instances, nil }
func (f *fakeRegistry) Watch(string) <-chan []ServiceInstance         { return f.updates }

func TestCacheSeedsFromDiscover(t *testing.T) {
	f := &fakeRegistry{
		instances: []ServiceInstance{{Addr: "127.0.0.1:4000", Weight: 1}},
		updates:   make(chan []ServiceInstance),
	}

	c, err := NewCache(f, ServiceName)
	if err != nil {
		t.Fatal(err)
	}

	got := c.Instances()
	if len(got) != 1 || got[0].Addr != "127.0.0.1:4000" {
		t.Fatalf("unexpected seed: %v", got)
	}
}

func TestCacheFollowsWatch(t *testing.T) {
	f := &fakeRegistry{updates: make(chan []ServiceInstance)}

	c, err := NewCache(f, ServiceName)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Instances(); len(got) != 0 {
		t.Fatalf("expect empty seed, got %v", got)
	}

	f.updates <- []ServiceInstance{{Addr: "127.0.0.1:4001"}, {Addr: "127.0.0.1:4002"}}

	// 应用更新是异步的，轮询等待
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(c.Instances()) == 2 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("cache never saw the update, have %v", c.Instances())
}
