package swiftclient

import (
	"context"
)

type Middleware func(ctx context.Context, req *StoreRequest) error

// StorageClientConfig defines the static per-client properties; session
// level settings (attempts, timeouts, auth credentials) come from the
// service config.
type StorageClientConfig struct {
	Middlewares []Middleware
}

func DefaultStorageClientConfig() StorageClientConfig {
	return StorageClientConfig{
		Middlewares: make([]Middleware, 0),
	}
}

func (c *StorageClientConfig) WithMiddleware(m ...Middleware) *StorageClientConfig {
	c.Middlewares = append(c.Middlewares, m...)
	return c
}
