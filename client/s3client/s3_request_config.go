package s3client

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joy-dx/swiftkit/dto"
)

// S3RequestConfig describes one store operation against an S3 backend
// using the same container/object vocabulary as the swift client.
type S3RequestConfig struct {
	Operation string // "get", "head", "put", "delete", "list"
	Container string
	Object    string

	// Optional depending on operation
	Body        []byte
	Prefix      string
	Delimiter   string
	Marker      string
	Limit       int32
	ContentType string
	Metadata    map[string]string
}

func (c *S3RequestConfig) Ref() dto.ClientType {
	return ClientS3Ref
}

func (c *S3RequestConfig) NewRequest(ctx context.Context) (any, error) {
	r := &S3Request{
		Operation:   c.Operation,
		Container:   c.Container,
		Object:      c.Object,
		Body:        c.Body,
		Prefix:      c.Prefix,
		Delimiter:   c.Delimiter,
		Marker:      c.Marker,
		Limit:       c.Limit,
		ContentType: c.ContentType,
		Metadata:    make(map[string]string, len(c.Metadata)),
	}
	for k, v := range c.Metadata {
		r.Metadata[k] = v
	}
	return r, nil
}

type S3Request struct {
	Operation string
	Container string
	Object    string

	Body        []byte
	Prefix      string
	Delimiter   string
	Marker      string
	Limit       int32
	ContentType string
	Metadata    map[string]string

	// Prepared AWS inputs, built once after middleware has run.
	GetInput    *s3.GetObjectInput
	HeadInput   *s3.HeadObjectInput
	PutInput    *s3.PutObjectInput
	DeleteInput *s3.DeleteObjectInput
	ListInput   *s3.ListObjectsV2Input
}
