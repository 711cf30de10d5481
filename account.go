package swiftkit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/joy-dx/swiftkit/client/swiftclient"
	"github.com/joy-dx/swiftkit/dto"
)

// ListOptions narrows account and container listings. Zero values are
// omitted from the query.
type ListOptions struct {
	Prefix    string
	Delimiter string
	Marker    string
	EndMarker string
	Limit     int
}

func (o ListOptions) query() map[string]string {
	q := map[string]string{"format": "json"}
	if o.Prefix != "" {
		q["prefix"] = o.Prefix
	}
	if o.Delimiter != "" {
		q["delimiter"] = o.Delimiter
	}
	if o.Marker != "" {
		q["marker"] = o.Marker
	}
	if o.EndMarker != "" {
		q["end_marker"] = o.EndMarker
	}
	if o.Limit > 0 {
		q["limit"] = strconv.Itoa(o.Limit)
	}
	return q
}

// storeRequest builds and dispatches one swift-backend request.
func (s *StoreSvc) storeRequest(ctx context.Context, method, path string, query map[string]string, headers map[string]string, body dto.Body, responseObject any) (dto.Response, error) {
	reqCfg := swiftclient.DefaultStoreRequestConfig()
	reqCfg.WithMethod(method).
		WithPath(path).
		WithBody(body)
	if query != nil {
		reqCfg.WithQuery(query)
	}
	if headers != nil {
		reqCfg.WithHeaders(headers)
	}

	cfg := dto.DefaultRequestConfig()
	cfg.WithClientRef(dto.STORE_DEFAULT_CLIENT_REF).
		WithReqConfig(&reqCfg).
		WithTaskName(method + " " + path)
	if responseObject != nil {
		cfg.WithResponseObject(responseObject)
	}
	return s.Request(ctx, &cfg)
}

// HeadAccount returns the account metadata headers.
func (s *StoreSvc) HeadAccount(ctx context.Context, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodHead, "", nil, headers, nil, nil)
}

// ListContainers lists the account's containers.
func (s *StoreSvc) ListContainers(ctx context.Context, opts ListOptions) ([]dto.ListingItem, dto.Response, error) {
	var items []dto.ListingItem
	resp, err := s.storeRequest(ctx, http.MethodGet, "", opts.query(), nil, nil, &items)
	if err != nil {
		return nil, resp, err
	}
	if !resp.OK() {
		return nil, resp, fmt.Errorf("list containers: %d %s", resp.StatusCode, resp.Reason)
	}
	return items, resp, nil
}

// PostAccount updates account metadata headers.
func (s *StoreSvc) PostAccount(ctx context.Context, headers map[string]string) (dto.Response, error) {
	return s.storeRequest(ctx, http.MethodPost, "", nil, headers, nil, nil)
}

// DeleteAccount issues an account DELETE, a destructive operation some
// providers honor for account resets. The confirm flag is a deliberate
// speed bump.
func (s *StoreSvc) DeleteAccount(ctx context.Context, confirm bool, headers map[string]string) (dto.Response, error) {
	if !confirm {
		return dto.Response{}, errors.New("account deletion requires confirmation")
	}
	return s.storeRequest(ctx, http.MethodDelete, "", nil, headers, nil, nil)
}
