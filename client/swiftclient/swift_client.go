package swiftclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/swiftkit/config"
	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/utils"
)

const ClientSwiftRef dto.ClientType = "store.client.swift"

// StorageClient talks to a single object-storage account. It owns the
// transport loop, authentication state and the auth token cache. One
// client serves one goroutine at a time; use Manager for pooling.
type StorageClient struct {
	ClientInfo dto.ClientInfo

	cfg    StorageClientConfig
	svcCfg *config.StoreSvcConfig
	relay  relayDTO.RelayInterface

	httpClient *http.Client
	delay      utils.RetryDelay
	attempts   int

	mu            sync.Mutex
	session       dto.Session
	defaultRegion string
}

func NewStorageClient(ref string, svcCfg *config.StoreSvcConfig, cfg StorageClientConfig) (*StorageClient, error) {
	if svcCfg == nil {
		return nil, fmt.Errorf("swift client %q: nil service config", ref)
	}
	if svcCfg.StorageURL == "" && svcCfg.AuthURL == "" {
		return nil, fmt.Errorf("swift client %q: %w", ref, dto.ErrNoAuthURL)
	}
	if svcCfg.Relay() == nil {
		return nil, fmt.Errorf("swift client %q: no relay implementation", ref)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if svcCfg.RequestTimeout > 0 {
		// A whole-client timeout would cut streamed downloads off
		// mid-body, so the bound applies to waiting on response headers.
		transport.ResponseHeaderTimeout = svcCfg.RequestTimeout
	}
	if svcCfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(svcCfg.HTTPProxy)
		if err != nil {
			return nil, fmt.Errorf("swift client %q: proxy url: %w", ref, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	delay := svcCfg.Delay
	if delay == nil {
		delay = &utils.ExponentialBackoff{}
	}
	attempts := svcCfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	c := &StorageClient{
		ClientInfo: dto.ClientInfo{
			Name:        "Swift Store Client",
			Ref:         ref,
			ClientType:  ClientSwiftRef,
			Description: "Authenticated object-storage client with retry and segmented transfers",
		},
		cfg:        cfg,
		svcCfg:     svcCfg,
		relay:      svcCfg.Relay(),
		httpClient: &http.Client{Transport: transport},
		delay:      delay,
		attempts:   attempts,
	}

	if svcCfg.StorageURL != "" {
		// Pre-authenticated use: the caller supplies the endpoint and a
		// token source, no negotiation happens.
		c.session.StorageURL = svcCfg.StorageURL
	}
	if svcCfg.AuthCachePath != "" {
		if cached, ok := c.loadAuthCache(); ok {
			c.session = cached
		}
	}
	return c, nil
}

func (c *StorageClient) Ref() string {
	return c.ClientInfo.Ref
}

func (c *StorageClient) Type() dto.ClientType {
	return ClientSwiftRef
}

// Session returns a copy of the current auth state.
func (c *StorageClient) Session() dto.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// DefaultRegion reports the account default region learned during v2 auth.
func (c *StorageClient) DefaultRegion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.defaultRegion
}

func (c *StorageClient) ProcessRequest(ctx context.Context, reqCfg *dto.RequestConfig) (dto.Response, error) {
	if reqCfg == nil {
		return dto.Response{}, dto.ErrNilReqConfig
	}
	raw, err := reqCfg.BuildRequest(ctx)
	if err != nil {
		return dto.Response{}, err
	}
	r, ok := raw.(*StoreRequest)
	if !ok {
		return dto.Response{}, fmt.Errorf("swift client %q: unexpected request type %T", c.Ref(), raw)
	}
	for _, mw := range c.cfg.Middlewares {
		if err := mw(ctx, r); err != nil {
			return dto.Response{}, err
		}
	}
	return c.do(ctx, r)
}
