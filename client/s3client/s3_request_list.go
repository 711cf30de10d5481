package s3client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/joy-dx/swiftkit/dto"
)

// doList renders the bucket listing in the same JSON shape as a container
// listing with format=json, so callers decode one structure for either
// backend. Common prefixes come back as subdir entries.
func (c *S3Client) doList(ctx context.Context, r *S3Request) (dto.Response, error) {
	out, err := c.client.ListObjectsV2(ctx, r.ListInput)
	if err != nil {
		return dto.Response{}, fmt.Errorf("s3 list objects: %w", err)
	}

	items := make([]dto.ListingItem, 0, len(out.Contents)+len(out.CommonPrefixes))
	for _, obj := range out.Contents {
		item := dto.ListingItem{
			Name:  aws.ToString(obj.Key),
			Bytes: aws.ToInt64(obj.Size),
			Hash:  strings.Trim(aws.ToString(obj.ETag), `"`),
		}
		if obj.LastModified != nil {
			item.LastModified = obj.LastModified.UTC().Format("2006-01-02T15:04:05.000000")
		}
		items = append(items, item)
	}
	for _, cp := range out.CommonPrefixes {
		items = append(items, dto.ListingItem{Subdir: aws.ToString(cp.Prefix)})
	}

	body, err := json.Marshal(items)
	if err != nil {
		return dto.Response{}, fmt.Errorf("encode listing: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	return dto.Response{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    headers,
	}, nil
}
