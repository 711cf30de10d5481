package swiftkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joy-dx/swiftkit/dto"
)

func (s *StoreSvc) Request(ctx context.Context, cfg *dto.RequestConfig) (dto.Response, error) {
	if cfg == nil {
		return dto.Response{}, errors.New("nil RequestConfig provided")
	}
	if cfg.ClientRef == "" {
		cfg.ClientRef = dto.STORE_DEFAULT_CLIENT_REF
	}
	if cfg.ReqConfig == nil {
		return dto.Response{}, errors.New("nil ReqConfig provided")
	}
	if cfg.TaskName == "" {
		cfg.TaskName = "store_request"
	}

	client, isOK := s.clients[cfg.ClientRef]
	if !isOK {
		return dto.Response{}, fmt.Errorf("client not found: %s", cfg.ClientRef)
	}

	// Sanity check that the req config matches the client type to avoid later casting confusion
	if client.Type() != cfg.ReqConfig.Ref() {
		return dto.Response{}, fmt.Errorf(
			"client type mismatch: client=%s(%s) req=%s",
			cfg.ClientRef,
			client.Type(),
			cfg.ReqConfig.Ref(),
		)
	}

	// The deferred cancel would tear down a streamed body, so only an
	// explicit per-request timeout is honored here.
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	response, err := client.ProcessRequest(ctx, cfg)
	if err != nil {
		return dto.Response{}, fmt.Errorf("perform request: %w", err)
	}

	if cfg.ResponseObject != nil && len(response.Body) > 0 {
		if unmarshalErr := json.Unmarshal(response.Body, cfg.ResponseObject); unmarshalErr != nil {
			return response, fmt.Errorf("unmarshal response: %w", unmarshalErr)
		}
	}

	return response, nil
}
