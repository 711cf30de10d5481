package dto

import (
	"context"
)

// StoreInterface is the high-level surface of the store service.
type StoreInterface interface {
	Hydrate(ctx context.Context) error
	State() *StoreState
	RegisterClient(ref string, client ClientInterface)
	Request(ctx context.Context, cfg *RequestConfig) (Response, error)
	DownloadObject(ctx context.Context, cfg *DownloadObjectConfig) error
	UploadObject(ctx context.Context, cfg *UploadObjectConfig) error
}

// ClientInterface abstracts a storage backend (swift transport, s3, ...)
// for mocking and for registering alternates under their own refs.
type ClientInterface interface {
	Ref() string
	Type() ClientType
	ProcessRequest(ctx context.Context, cfg *RequestConfig) (Response, error)
}

// ReqConfigInterface is implemented by backend-specific request configs.
// NewRequest creates the per-call mutable request object so middleware
// never mutates the reusable config.
type ReqConfigInterface interface {
	Ref() ClientType
	NewRequest(ctx context.Context) (any, error)
}
