package schema

import (
	"fmt"
	"sync"
)

var (
	registry   = make(map[string]Table)
	order      []string
	registryMu sync.RWMutex
)

// Register adds a table definition to the registry.
// Panics if a table with the same key is already registered.
func Register(t Table) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[t.Key]; exists {
		panic(fmt.Sprintf("table already registered: %s", t.Key))
	}

	registry[t.Key] = t
	order = append(order, t.Key)
}

// Get returns a table definition by key.
// Returns false if not found.
func Get(key string) (Table, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	t, ok := registry[key]
	return t, ok
}

// MustGet returns a registered table definition or panics.
func MustGet(key string) Table {
	t, ok := Get(key)
	if !ok {
		panic(fmt.Sprintf("table not registered: %s", key))
	}
	return t
}

// All returns every registered table in registration order.
func All() []Table {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Table, 0, len(order))
	for _, key := range order {
		result = append(result, registry[key])
	}
	return result
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
