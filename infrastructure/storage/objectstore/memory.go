package objectstore

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryClient is an in-process Client for tests and dry runs.
type MemoryClient struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryClient creates an empty in-memory bucket.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		objects: make(map[string][]byte),
	}
}

// Create implements Client.Create.
func (c *MemoryClient) Create(ctx context.Context, object string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.objects[object]; ok {
		return ErrObjectExists
	}
	c.objects[object] = slices.Clone(data)
	return nil
}

// Put implements Client.Put.
func (c *MemoryClient) Put(ctx context.Context, object string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.objects[object] = slices.Clone(data)
	return nil
}

// Get implements Client.Get.
func (c *MemoryClient) Get(ctx context.Context, object string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.objects[object]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return slices.Clone(data), nil
}

// Delete implements Client.Delete.
func (c *MemoryClient) Delete(ctx context.Context, object string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.objects[object]; !ok {
		return ErrObjectNotFound
	}
	delete(c.objects, object)
	return nil
}

// List implements Client.List.
func (c *MemoryClient) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name := range c.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// ObjectCount returns the number of stored objects.
func (c *MemoryClient) ObjectCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}

var _ Client = (*MemoryClient)(nil)
