package swiftkit

import (
	"context"
	"net/http"

	"github.com/joy-dx/swiftkit/client/swiftclient"
	"github.com/joy-dx/swiftkit/dto"
)

// GetObject fetches an object's content buffered in memory. Use
// DownloadObject for large payloads.
func (s *StoreSvc) GetObject(ctx context.Context, container, object string, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodGet, swiftclient.ObjectPath(container, object), nil, headers, nil, nil)
}

// HeadObject returns the object metadata headers.
func (s *StoreSvc) HeadObject(ctx context.Context, container, object string, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodHead, swiftclient.ObjectPath(container, object), nil, headers, nil, nil)
}

// PutObjectData writes an object from an in-memory payload. Use
// UploadObject for files, segmentation and conditional uploads.
func (s *StoreSvc) PutObjectData(ctx context.Context, container, object string, data []byte, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodPut, swiftclient.ObjectPath(container, object), nil, headers, dto.BytesBody(data), nil)
}

// PostObject replaces the object's user metadata headers.
func (s *StoreSvc) PostObject(ctx context.Context, container, object string, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodPost, swiftclient.ObjectPath(container, object), nil, headers, nil, nil)
}

// DeleteObject removes an object. Deleting a manifest removes only the
// manifest, never the segments it points at.
func (s *StoreSvc) DeleteObject(ctx context.Context, container, object string, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodDelete, swiftclient.ObjectPath(container, object), nil, headers, nil, nil)
}
