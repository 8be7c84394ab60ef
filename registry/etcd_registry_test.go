package registry

import (
	"context"
	"testing"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// These tests need a local etcd. Skip when none is listening so the rest of
// the suite stays runnable on a bare machine.
func skipWithoutEtcd(t *testing.T) {
	t.Helper()
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{"localhost:2379"},
		DialTimeout: time.Second,
	})
	if err != nil {
		t.Skipf("etcd not reachable: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := c.Status(ctx, "localhost:2379"); err != nil {
		t.Skipf("etcd not reachable: %v", err)
	}
}

func TestRegisterAndDiscover(t *testing.T) {
	skipWithoutEtcd(t)

	reg, err := NewEtcdRegistry([]string{"localhost:2379"})
	if err != nil {
		t.Fatal(err)
	}
	defer reg.Close()

	inst1 := ServiceInstance{Addr: "127.0.0.1:4001", Weight: 10, Version: "1.0"}
	inst2 := ServiceInstance{Addr: "127.0.0.1:4002", Weight: 5, Version: "1.0"}

	if err := reg.Register(ServiceName, inst1, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(ServiceName, inst2, 10); err != nil {
		t.Fatal(err)
	}

	instances, err := reg.Discover(ServiceName)
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 2 {
		t.Fatalf("expect 2 instances, got %d", len(instances))
	}

	if err := reg.Deregister(ServiceName, inst1.Addr); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)

	instances, err = reg.Discover(ServiceName)
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 1 {
		t.Fatalf("expect 1 instance after deregister, got %d", len(instances))
	}
	if instances[0].Addr != inst2.Addr {
		t.Fatalf("expect %s, got %s", inst2.Addr, instances[0].Addr)
	}

	// Cleanup
	reg.Deregister(ServiceName, inst2.Addr)
}
