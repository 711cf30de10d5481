package config

import (
	"time"

	relayDTO "github.com/joy-dx/relay/dto"
	"golang.org/x/oauth2"

	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/utils"
)

const (
	DefaultAttempts    = 5
	DefaultChunkSize   = 65536
	DefaultConcurrency = 10
	// DefaultSegmentSize is 5 GiB, the usual single-object ceiling.
	DefaultSegmentSize = int64(5) * 1024 * 1024 * 1024
)

// StoreSvcConfig is the immutable configuration for a store service session.
// Build it once with the With* setters before handing it to ProvideStoreSvc;
// it must not change while clients derived from it are live.
type StoreSvcConfig struct {
	// AuthURL is the endpoint of the auth system.
	AuthURL string
	// AuthUser / AuthKey are the credentials presented to every strategy.
	AuthUser string
	AuthKey  string
	// AuthTenant scopes v2 auth; defaults to AuthUser when a strategy forces one.
	AuthTenant string
	// AuthMethods overrides strategy order, comma separated:
	// auth1,auth2key,auth2password,auth2password_force_tenant
	AuthMethods string
	// AuthCachePath names a file to persist resolved endpoints and token in.
	AuthCachePath string
	Region        string
	// Snet selects the internal endpoint (v2) or the snet- host prefix (v1).
	Snet bool
	// StorageURL presets the storage endpoint. With TokenSource set this
	// bypasses strategy negotiation entirely.
	StorageURL string
	// TokenSource supplies a pre-issued bearer token; consulted before any
	// auth strategy when set.
	TokenSource oauth2.TokenSource

	Attempts    int
	ChunkSize   int
	SegmentSize int64
	Concurrency int

	RequestTimeout time.Duration
	UserAgent      string
	HTTPProxy      string
	ExtraHeaders   dto.ExtraHeaders

	// Delay paces retries; defaults to utils.ExponentialBackoff.
	Delay utils.RetryDelay

	DownloadCallbackInterval time.Duration

	relay relayDTO.RelayInterface
}

func NewStoreSvcConfig() *StoreSvcConfig {
	return &StoreSvcConfig{
		Attempts:       DefaultAttempts,
		ChunkSize:      DefaultChunkSize,
		Concurrency:    DefaultConcurrency,
		SegmentSize:    DefaultSegmentSize,
		RequestTimeout: 0,
		UserAgent:      "swiftkit",
		ExtraHeaders:   dto.ExtraHeaders{},
		Delay:          utils.ExponentialBackoff{},
	}
}

func (c *StoreSvcConfig) Relay() relayDTO.RelayInterface {
	return c.relay
}

func (c *StoreSvcConfig) WithRelay(r relayDTO.RelayInterface) *StoreSvcConfig {
	c.relay = r
	return c
}

func (c *StoreSvcConfig) WithAuth(url, user, key string) *StoreSvcConfig {
	c.AuthURL = url
	c.AuthUser = user
	c.AuthKey = key
	return c
}

func (c *StoreSvcConfig) WithAuthTenant(tenant string) *StoreSvcConfig {
	c.AuthTenant = tenant
	return c
}

func (c *StoreSvcConfig) WithAuthMethods(methods string) *StoreSvcConfig {
	c.AuthMethods = methods
	return c
}

func (c *StoreSvcConfig) WithAuthCachePath(path string) *StoreSvcConfig {
	c.AuthCachePath = path
	return c
}

func (c *StoreSvcConfig) WithRegion(region string) *StoreSvcConfig {
	c.Region = region
	return c
}

func (c *StoreSvcConfig) WithSnet(snet bool) *StoreSvcConfig {
	c.Snet = snet
	return c
}

func (c *StoreSvcConfig) WithStorageURL(url string) *StoreSvcConfig {
	c.StorageURL = url
	return c
}

func (c *StoreSvcConfig) WithTokenSource(ts oauth2.TokenSource) *StoreSvcConfig {
	c.TokenSource = ts
	return c
}

func (c *StoreSvcConfig) WithAttempts(attempts int) *StoreSvcConfig {
	c.Attempts = attempts
	return c
}

func (c *StoreSvcConfig) WithSegmentSize(size int64) *StoreSvcConfig {
	c.SegmentSize = size
	return c
}

func (c *StoreSvcConfig) WithConcurrency(n int) *StoreSvcConfig {
	c.Concurrency = n
	return c
}

func (c *StoreSvcConfig) WithRequestTimeout(d time.Duration) *StoreSvcConfig {
	c.RequestTimeout = d
	return c
}

func (c *StoreSvcConfig) WithUserAgent(ua string) *StoreSvcConfig {
	c.UserAgent = ua
	return c
}

func (c *StoreSvcConfig) WithDelay(d utils.RetryDelay) *StoreSvcConfig {
	c.Delay = d
	return c
}

func (c *StoreSvcConfig) WithExtraHeaders(h dto.ExtraHeaders) *StoreSvcConfig {
	c.ExtraHeaders = h
	return c
}
