package checks

import (
	"fmt"
	"sort"
	"sync"
)

// Builder constructs a ready-to-run Suite. Suites are built lazily so that
// only the selected suites touch their external collaborators.
type Builder func() Suite

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Builder)
)

// Register adds a suite Builder to the global registry.
// It panics if a suite with the same name is already registered.
func Register(name string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("suite already registered: %s", name))
	}
	registry[name] = b
}

// Get retrieves a suite Builder by name from the global registry.
func Get(name string) (Builder, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	b, ok := registry[name]
	return b, ok
}

// Names returns the sorted names of all registered suites.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
