package loadbalance

import (
	"errors"
	"fmt"
	"testing"

	"mini-echo/registry"
)

var testInstances = []registry.ServiceInstance{
	{Addr: ":4001", Weight: 10, Version: "1.0"},
	{Addr: ":4002", Weight: 5, Version: "1.0"},
	{Addr: ":4003", Weight: 10, Version: "1.0"},
}

func TestRoundRobin(t *testing.T) {
	b := &RoundRobinBalancer{}

	// Pick 3 times, should cycle through all instances
	results := make([]string, 3)
	for i := 0; i < 3; i++ {
		inst, err := b.Pick("", testInstances)
		if err != nil {
			t.Fatal(err)
		}
		results[i] = inst.Addr
	}

	// Pick again, should wrap around to first
	inst, _ := b.Pick("", testInstances)
	if inst.Addr != results[0] {
		t.Fatalf("expect wrap around to %s, got %s", results[0], inst.Addr)
	}
}

func TestRoundRobinEmpty(t *testing.T) {
	b := &RoundRobinBalancer{}
	if _, err := b.Pick("", nil); !errors.Is(err, ErrNoInstances) {
		t.Fatalf("expect ErrNoInstances, got %v", err)
	}
}

func TestWeightedRandom(t *testing.T) {
	b := &WeightedRandomBalancer{}

	counts := map[string]int{}
	n := 10000
	for i := 0; i < n; i++ {
		inst, err := b.Pick("", testInstances)
		if err != nil {
			t.Fatal(err)
		}
		counts[inst.Addr]++
	}

	// Weight ratio is 10:5:10, so :4001 and :4003 should be ~2x of :4002
	ratio := float64(counts[":4001"]) / float64(counts[":4002"])
	if ratio < 1.5 || ratio > 2.5 {
		t.Fatalf("weight ratio :4001/:4002 = %.2f, expect ~2.0", ratio)
	}
}

func TestWeightedRandomZeroWeights(t *testing.T) {
	b := &WeightedRandomBalancer{}
	zero := []registry.ServiceInstance{{Addr: ":4001"}, {Addr: ":4002"}}

	// 权重全 0 不能 panic，应退化为均匀随机
	for i := 0; i < 100; i++ {
		if _, err := b.Pick("", zero); err != nil {
			t.Fatal(err)
		}
	}
}

func TestConsistentHash(t *testing.T) {
	b := NewConsistentHashBalancer()

	// Same key should always map to the same instance
	inst1, err := b.Pick("Hello", testInstances)
	if err != nil {
		t.Fatal(err)
	}
	inst2, _ := b.Pick("Hello", testInstances)
	if inst1.Addr != inst2.Addr {
		t.Fatalf("same key mapped to different instances: %s vs %s", inst1.Addr, inst2.Addr)
	}

	// Different keys should (likely) map to different instances
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		inst, _ := b.Pick(fmt.Sprintf("key-%d", i), testInstances)
		seen[inst.Addr] = true
	}

	// With 100 different keys and 3 nodes, we should hit at least 2
	if len(seen) < 2 {
		t.Fatalf("expect at least 2 different instances, got %d", len(seen))
	}
}

func TestConsistentHashStability(t *testing.T) {
	b := NewConsistentHashBalancer()

	before := map[string]string{}
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		inst, err := b.Pick(key, testInstances)
		if err != nil {
			t.Fatal(err)
		}
		before[key] = inst.Addr
	}

	// Drop :4002. Keys owned by the survivors must not move
	smaller := []registry.ServiceInstance{testInstances[0], testInstances[2]}
	for key, addr := range before {
		if addr == ":4002" {
			continue
		}
		inst, err := b.Pick(key, smaller)
		if err != nil {
			t.Fatal(err)
		}
		if inst.Addr != addr {
			t.Errorf("key %s moved from %s to %s", key, addr, inst.Addr)
		}
	}
}

func TestNewBalancer(t *testing.T) {
	for name, want := range map[string]string{
		"roundrobin": "RoundRobin",
		"random":     "WeightedRandom",
		"hash":       "ConsistentHash",
	} {
		b, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", name, err)
		}
		if b.Name() != want {
			t.Errorf("New(%q).Name() = %s, want %s", name, b.Name(), want)
		}
	}

	if _, err := New("bogus"); err == nil {
		t.Fatal("expect error for unknown strategy")
	}
}
