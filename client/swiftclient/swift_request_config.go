package swiftclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/utils"
)

// StoreRequestConfig is immutable input (safe to reuse).
type StoreRequestConfig struct {
	Method string `json:"method" yaml:"method"`
	// Path is rooted at the account, e.g. "/container/object"; empty for
	// account-level requests. Build it with ContainerPath / ObjectPath.
	Path    string            `json:"path" yaml:"path"`
	Query   map[string]string `json:"query" yaml:"query"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	// Body is the request payload; nil for bodyless methods.
	Body dto.Body `json:"-" yaml:"-"`
	// Stream requests the response body as a stream instead of buffered bytes.
	Stream bool `json:"stream" yaml:"stream"`
	// CDN directs the request at the CDN management endpoint.
	CDN bool `json:"cdn" yaml:"cdn"`
}

func DefaultStoreRequestConfig() StoreRequestConfig {
	return StoreRequestConfig{
		Method:  http.MethodGet,
		Query:   make(map[string]string),
		Headers: make(map[string]string),
	}
}

func (c *StoreRequestConfig) Ref() dto.ClientType {
	return ClientSwiftRef
}

func (c *StoreRequestConfig) WithMethod(method string) *StoreRequestConfig {
	c.Method = method
	return c
}

func (c *StoreRequestConfig) WithPath(path string) *StoreRequestConfig {
	c.Path = path
	return c
}

func (c *StoreRequestConfig) WithQuery(query map[string]string) *StoreRequestConfig {
	c.Query = query
	return c
}

func (c *StoreRequestConfig) WithHeaders(headers map[string]string) *StoreRequestConfig {
	c.Headers = headers
	return c
}

func (c *StoreRequestConfig) WithBody(body dto.Body) *StoreRequestConfig {
	c.Body = body
	return c
}

func (c *StoreRequestConfig) WithStream(stream bool) *StoreRequestConfig {
	c.Stream = stream
	return c
}

func (c *StoreRequestConfig) WithCDN(cdn bool) *StoreRequestConfig {
	c.CDN = cdn
	return c
}

// NewRequest creates a per-call mutable request object so middleware never
// leaks changes back into the reusable config.
func (c *StoreRequestConfig) NewRequest(ctx context.Context) (any, error) {
	r := &StoreRequest{
		Method:  c.Method,
		Path:    c.Path,
		Body:    c.Body,
		Stream:  c.Stream,
		CDN:     c.CDN,
		Query:   make(map[string]string, len(c.Query)),
		Headers: make(map[string]string, len(c.Headers)),
	}
	for k, v := range c.Query {
		r.Query[k] = v
	}
	for k, v := range c.Headers {
		r.Headers[k] = v
	}
	return r, nil
}

// StoreRequest is per-call mutable state.
type StoreRequest struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    dto.Body
	Stream  bool
	CDN     bool
}

func (r *StoreRequest) ClientType() dto.ClientType { return ClientSwiftRef }

func (r *StoreRequest) SetHeader(k, v string) {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[k] = v
}

func (r *StoreRequest) Header(k string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[k]
}

// ContainerPath returns the request path for a container. Leading slashes
// in the given name are preserved so already-rooted paths pass through.
func ContainerPath(container string) string {
	container = strings.TrimRight(container, "/")
	if strings.HasPrefix(container, "/") {
		return utils.QuotePath(container)
	}
	return "/" + utils.QuotePath(container)
}

// ObjectPath returns the request path for an object. Leading and trailing
// slashes are legal in object names and are kept intact.
func ObjectPath(container, object string) string {
	return ContainerPath(container) + "/" + utils.QuotePath(object)
}
