package dto

import (
	"io"
	"net/http"
	"time"
)

type ClientType string

type TransferStatus string

const (
	IN_PROGRESS TransferStatus = "in_progress"
	COMPLETE    TransferStatus = "complete"
	ERROR       TransferStatus = "error"
	STOPPED     TransferStatus = "stopped"
)

const STORE_DEFAULT_CLIENT_REF = "store.client.default"

// ClientInfo describes a registered backend client.
type ClientInfo struct {
	Name        string     `json:"name" yaml:"name"`
	Ref         string     `json:"ref" yaml:"ref"`
	ClientType  ClientType `json:"client_type" yaml:"client_type"`
	Description string     `json:"description" yaml:"description"`
}

type TransferNotification struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
	// Status MetaType of message
	Status TransferStatus `json:"status" yaml:"status"`
	// Percentage completion status as a percentage
	Percentage float64 `json:"percentage" yaml:"percentage"`
	// TotalSize length content in bytes. The value -1 indicates that the length is unknown
	TotalSize int64 `json:"total_size,omitempty" yaml:"total_size,omitempty"`
	// Transferred body length moved so far, in bytes
	Transferred int64 `json:"transferred,omitempty" yaml:"transferred,omitempty"`
}

type StoreState struct {
	AuthURL         string                          `json:"store_auth_url,omitempty" yaml:"store_auth_url,omitempty"`
	Region          string                          `json:"store_region,omitempty" yaml:"store_region,omitempty"`
	Snet            bool                            `json:"store_snet,omitempty" yaml:"store_snet,omitempty"`
	Attempts        int                             `json:"store_attempts,omitempty" yaml:"store_attempts,omitempty"`
	SegmentSize     int64                           `json:"store_segment_size,omitempty" yaml:"store_segment_size,omitempty"`
	Concurrency     int                             `json:"store_concurrency,omitempty" yaml:"store_concurrency,omitempty"`
	RequestTimeout  time.Duration                   `json:"store_request_timeout,omitempty" yaml:"store_request_timeout,omitempty"`
	UserAgent       string                          `json:"store_user_agent,omitempty" yaml:"store_user_agent,omitempty"`
	ExtraHeaders    ExtraHeaders                    `json:"store_extra_headers,omitempty" yaml:"store_extra_headers,omitempty"`
	TransfersStatus map[string]TransferNotification `json:"store_transfers_status,omitempty" yaml:"store_transfers_status,omitempty"`
}

// Response is a single HTTP exchange result. When the request asked for a
// streamed body, Stream is set and Body is nil; the stream must be consumed
// (and closed) exactly once before the owning client is reused.
type Response struct {
	StatusCode int
	Reason     string
	Headers    http.Header
	Body       []byte
	Stream     io.ReadCloser
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode/100 == 2
}

// ListingItem is one entry of a format=json account or container listing.
// Subdir is set instead of Name when a delimiter query rolls names up.
type ListingItem struct {
	Name         string `json:"name,omitempty"`
	Bytes        int64  `json:"bytes,omitempty"`
	Count        int64  `json:"count,omitempty"`
	Hash         string `json:"hash,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Subdir       string `json:"subdir,omitempty"`
}

// SegmentInfo records one uploaded segment with its service-confirmed
// size and etag; manifests are built only from confirmed values.
type SegmentInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size_bytes"`
	ETag string `json:"etag"`
}

// DownloadObjectConfig drives StoreSvc.DownloadObject.
type DownloadObjectConfig struct {
	ClientRef string
	Container string
	Object    string
	// DestinationFolder Used if OutputFileName not set appending
	DestinationFolder string
	OutputFileName    string
	// Checksum optional sha256 to verify the written file against
	Checksum string
	Headers  map[string]string
}

// UploadObjectConfig drives StoreSvc.UploadObject.
type UploadObjectConfig struct {
	Container string
	Object    string
	// InputPath names the local source file. Size and mtime are taken from it.
	InputPath string
	// Empty sends a zero-length body instead of reading InputPath.
	Empty bool
	// StaticSegments selects static large object manifests over dynamic ones.
	StaticSegments bool
	// Newer skips the upload unless the local mtime is newer than the remote.
	Newer bool
	// Different skips the upload unless local mtime or size differ from remote.
	Different bool
	Headers   map[string]string
	Query     map[string]string
}
