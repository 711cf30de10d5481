package s3client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/utils"
)

func (c *S3Client) doGet(ctx context.Context, r *S3Request) (dto.Response, error) {
	out, err := c.client.GetObject(ctx, r.GetInput)
	if err != nil {
		return dto.Response{}, fmt.Errorf("s3 get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return dto.Response{}, fmt.Errorf("read s3 object: %w", err)
	}

	headers := utils.MapToHeader(out.Metadata)
	setObjectHeaders(headers, out.ETag, out.ContentLength, out.ContentType)

	return dto.Response{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers:    headers,
	}, nil
}

func (c *S3Client) doHead(ctx context.Context, r *S3Request) (dto.Response, error) {
	out, err := c.client.HeadObject(ctx, r.HeadInput)
	if err != nil {
		return dto.Response{}, fmt.Errorf("s3 head object: %w", err)
	}

	headers := utils.MapToHeader(out.Metadata)
	setObjectHeaders(headers, out.ETag, out.ContentLength, out.ContentType)

	return dto.Response{
		StatusCode: http.StatusOK,
		Headers:    headers,
	}, nil
}

// setObjectHeaders mirrors the header surface the swift client exposes so
// callers can stay backend-agnostic. S3 etags arrive quoted.
func setObjectHeaders(h http.Header, etag *string, length *int64, contentType *string) {
	if etag != nil {
		h.Set("Etag", strings.Trim(aws.ToString(etag), `"`))
	}
	if length != nil {
		h.Set("Content-Length", strconv.FormatInt(aws.ToInt64(length), 10))
	}
	if contentType != nil {
		h.Set("Content-Type", aws.ToString(contentType))
	}
}
