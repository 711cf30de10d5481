package swiftkit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joy-dx/swiftkit/client/swiftclient"
	"github.com/joy-dx/swiftkit/dto"
)

// PutContainer creates a container; creating an existing container is not
// an error.
func (s *StoreSvc) PutContainer(ctx context.Context, container string, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodPut, swiftclient.ContainerPath(container), nil, headers, nil, nil)
}

// HeadContainer returns the container metadata headers.
func (s *StoreSvc) HeadContainer(ctx context.Context, container string, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodHead, swiftclient.ContainerPath(container), nil, headers, nil, nil)
}

// PostContainer updates container metadata headers.
func (s *StoreSvc) PostContainer(ctx context.Context, container string, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodPost, swiftclient.ContainerPath(container), nil, headers, nil, nil)
}

// DeleteContainer removes an empty container.
func (s *StoreSvc) DeleteContainer(ctx context.Context, container string, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodDelete, swiftclient.ContainerPath(container), nil, headers, nil, nil)
}

// ListObjects lists a container's objects.
func (s *StoreSvc) ListObjects(ctx context.Context, container string, opts ListOptions) ([]dto.ListingItem, dto.Response, error) {
	var items []dto.ListingItem
	resp, err := s.storeRequest(ctx, http.MethodGet, swiftclient.ContainerPath(container), opts.query(), nil, nil, &items)
	if err != nil {
		return nil, resp, err
	}
	if !resp.OK() {
		return nil, resp, fmt.Errorf("list objects in %s: %d %s", container, resp.StatusCode, resp.Reason)
	}
	return items, resp, nil
}
