package swiftclient

import (
	"context"

	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/swiftkit/relays"
)

// StaticHeaderMiddleware stamps fixed headers onto every request unless the
// request already sets them.
func StaticHeaderMiddleware(headers map[string]string) Middleware {
	return func(ctx context.Context, r *StoreRequest) error {
		for k, v := range headers {
			if r.Header(k) == "" {
				r.SetHeader(k, v)
			}
		}
		return nil
	}
}

// LoggingMiddleware announces each outbound request before the transport
// loop takes over.
func LoggingMiddleware(relay relayDTO.RelayInterface) Middleware {
	return func(ctx context.Context, r *StoreRequest) error {
		relay.Meta(&relays.RlyStoreRequest{
			Method: r.Method,
			Path:   r.Path,
			Msg:    "dispatching request",
		})
		return nil
	}
}
