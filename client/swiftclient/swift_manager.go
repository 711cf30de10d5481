package swiftclient

import (
	"context"
	"fmt"
)

// Manager hands out StorageClients from a bounded free list so concurrent
// transfers each get a client of their own without unbounded growth.
// Clients returned to a full list are simply dropped.
type Manager struct {
	factory func() (*StorageClient, error)
	free    chan *StorageClient
}

func NewManager(size int, factory func() (*StorageClient, error)) *Manager {
	if size < 1 {
		size = 1
	}
	return &Manager{
		factory: factory,
		free:    make(chan *StorageClient, size),
	}
}

// Get returns a pooled client or builds a fresh one when the list is empty.
func (m *Manager) Get() (*StorageClient, error) {
	select {
	case c := <-m.free:
		return c, nil
	default:
		return m.factory()
	}
}

// Put returns a client to the free list.
func (m *Manager) Put(c *StorageClient) {
	if c == nil {
		return
	}
	select {
	case m.free <- c:
	default:
	}
}

// With runs fn with a pooled client, returning it afterwards. The client is
// not returned when fn fails, since its connection state is suspect.
func (m *Manager) With(ctx context.Context, fn func(*StorageClient) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := m.Get()
	if err != nil {
		return fmt.Errorf("client manager: %w", err)
	}
	if err := fn(c); err != nil {
		return err
	}
	m.Put(c)
	return nil
}
