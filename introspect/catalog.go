package introspect

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned by Lookup for unknown type names
var ErrNotRegistered = errors.New("introspect: type not registered")

// Catalog keeps type descriptors by their qualified name
type Catalog struct {
	descriptors map[string]*TypeDescriptor
	mu          sync.RWMutex
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		descriptors: make(map[string]*TypeDescriptor),
	}
}

// Register adds a descriptor under its own name
func (c *Catalog) Register(d *TypeDescriptor) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrMalformed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.descriptors[d.Name]; exists {
		if existing == d || existing.Type == d.Type {
			// Same type, keep the latest shape
			c.descriptors[d.Name] = d
			return nil
		}
		return fmt.Errorf("type name %s already registered to %v", d.Name, existing.Type)
	}

	c.descriptors[d.Name] = d
	return nil
}

// Lookup retrieves the descriptor registered under name
func (c *Catalog) Lookup(name string) (*TypeDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, exists := c.descriptors[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return d, nil
}

// IsRegistered checks if a type name is known
func (c *Catalog) IsRegistered(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.descriptors[name]
	return exists
}

// Names returns all registered type names in sorted order
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.descriptors))
	for name := range c.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes every descriptor
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptors = make(map[string]*TypeDescriptor)
}
