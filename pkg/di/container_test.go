package di

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-clinic/config"
	"github.com/goliatone/go-clinic/pkg/testsupport"
	"github.com/goliatone/go-clinic/store"
)

func memoryConfig() config.Config {
	cfg := config.Load()
	cfg.Cache.Driver = config.DriverMemory
	cfg.Cache.TTL = time.Minute
	return cfg
}

func TestNewContainerMemoryDriver(t *testing.T) {
	c, err := NewContainer(memoryConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if c.Backend() == nil {
		t.Fatal("container has no backend")
	}
}

func TestNewContainerUnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Cache.Driver = "memcached"

	if _, err := NewContainer(cfg); err == nil {
		t.Error("unknown cache driver accepted")
	}
}

func TestContainerOpsUsesConfiguredTTL(t *testing.T) {
	c, err := NewContainer(memoryConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	ops, err := c.Ops("pet")
	if err != nil {
		t.Fatalf("Ops: %v", err)
	}
	if ops.Prefix() != "pet" {
		t.Errorf("Prefix() = %q, want pet", ops.Prefix())
	}
	if ops.TTL() != time.Minute {
		t.Errorf("TTL() = %v, want 1m", ops.TTL())
	}
}

func TestContainerUsersEndToEnd(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(memoryConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	st := testsupport.NewFakeUserStore()
	st.Seed(42, store.Record{"tenant_id": int64(7), "email": "a@b.com"})

	users, err := c.Users(st)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}

	rec, err := users.FindByTenantAndID(ctx, 7, 42)
	if err != nil {
		t.Fatalf("FindByTenantAndID: %v", err)
	}
	if rec == nil || rec.ID() != 42 {
		t.Fatalf("FindByTenantAndID = %#v", rec)
	}

	// Second read is served by the memory backend.
	st.ClearCalls()
	if _, err := users.FindByTenantAndID(ctx, 7, 42); err != nil {
		t.Fatalf("FindByTenantAndID: %v", err)
	}
	if len(st.Calls()) != 0 {
		t.Errorf("cached read hit the store: %v", st.Calls())
	}
}
