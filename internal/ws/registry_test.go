package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRegisterLookupUnregister(t *testing.T) {
	registry := NewRegistry()

	client := NewClient(&fakeConn{}, 1, "alice", "participant", nil)
	registry.Register(client)

	got, ok := registry.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, client, got)

	registry.Unregister(client)
	_, ok = registry.Lookup(1)
	assert.False(t, ok)

	// Unregistering an absent client is a no-op.
	registry.Unregister(client)
	assert.Equal(t, 0, registry.Count())
}

func TestRegistryReplaceKeepsNewest(t *testing.T) {
	registry := NewRegistry()

	old := NewClient(&fakeConn{}, 1, "alice", "participant", nil)
	replacement := NewClient(&fakeConn{}, 1, "alice", "participant", nil)

	registry.Register(old)
	registry.Register(replacement)

	got, ok := registry.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, replacement, got)

	// A stale disconnect for the old handle must not evict the new one.
	registry.Unregister(old)
	got, ok = registry.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			c := NewClient(&fakeConn{}, userID, fmt.Sprintf("user-%d", userID), "participant", nil)
			registry.Register(c)
			registry.Lookup(userID)
			registry.Unregister(c)
		}(uint(i))
	}
	wg.Wait()

	assert.Equal(t, 0, registry.Count())
}
