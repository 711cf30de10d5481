package s3client

import (
	"context"
	"fmt"
	"strings"
)

// StaticMetaMiddleware adds default metadata to every put operation.
// Request-level metadata wins on key collisions.
func StaticMetaMiddleware(meta map[string]string) Middleware {
	return func(ctx context.Context, r *S3Request) error {
		if r.Operation != "put" {
			return nil
		}
		if r.Metadata == nil {
			r.Metadata = map[string]string{}
		}
		for k, v := range meta {
			if _, ok := r.Metadata[k]; !ok {
				r.Metadata[k] = v
			}
		}
		return nil
	}
}

func LoggingMiddleware(logger func(msg string)) Middleware {
	return func(ctx context.Context, r *S3Request) error {
		logger(fmt.Sprintf(
			"[S3] %s s3://%s/%s",
			strings.ToUpper(r.Operation),
			r.Container,
			r.Object,
		))
		return nil
	}
}
