package s3client

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Finalize builds the AWS SDK input struct for the operation. Call exactly
// once, after middleware has run and before executing.
func (r *S3Request) Finalize() error {
	r.GetInput = nil
	r.HeadInput = nil
	r.PutInput = nil
	r.DeleteInput = nil
	r.ListInput = nil

	switch r.Operation {
	case "get":
		r.GetInput = &s3.GetObjectInput{
			Bucket: aws.String(r.Container),
			Key:    aws.String(r.Object),
		}
		return nil

	case "head":
		r.HeadInput = &s3.HeadObjectInput{
			Bucket: aws.String(r.Container),
			Key:    aws.String(r.Object),
		}
		return nil

	case "put":
		in := &s3.PutObjectInput{
			Bucket: aws.String(r.Container),
			Key:    aws.String(r.Object),
			Body:   bytes.NewReader(r.Body),
		}
		if r.ContentType != "" {
			in.ContentType = aws.String(r.ContentType)
		}
		if len(r.Metadata) > 0 {
			md := make(map[string]string, len(r.Metadata))
			for k, v := range r.Metadata {
				md[k] = v
			}
			in.Metadata = md
		}
		r.PutInput = in
		return nil

	case "delete":
		r.DeleteInput = &s3.DeleteObjectInput{
			Bucket: aws.String(r.Container),
			Key:    aws.String(r.Object),
		}
		return nil

	case "list":
		in := &s3.ListObjectsV2Input{
			Bucket: aws.String(r.Container),
		}
		if r.Prefix != "" {
			in.Prefix = aws.String(r.Prefix)
		}
		if r.Delimiter != "" {
			in.Delimiter = aws.String(r.Delimiter)
		}
		if r.Marker != "" {
			in.StartAfter = aws.String(r.Marker)
		}
		if r.Limit > 0 {
			in.MaxKeys = aws.Int32(r.Limit)
		}
		r.ListInput = in
		return nil

	default:
		return fmt.Errorf("unsupported s3 operation: %s", r.Operation)
	}
}
