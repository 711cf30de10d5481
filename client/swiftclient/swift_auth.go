package swiftclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/metrics"
	"github.com/joy-dx/swiftkit/relays"
)

const cdnServiceType = "rax:object-cdn"

type authStrategy struct {
	name string
	run  func(ctx context.Context) error
}

// Auth negotiates a session with the auth service. Strategies are tried in
// order until one succeeds; every failure is collected so the final error
// names what was attempted.
func (c *StorageClient) Auth(ctx context.Context) error {
	if c.svcCfg.AuthURL == "" {
		return dto.ErrNoAuthURL
	}

	var failed []string
	for _, s := range c.strategies() {
		err := s.run(ctx)
		if err == nil {
			metrics.AuthAttemptsTotal.WithLabelValues(s.name, "success").Inc()
			c.relay.Meta(&relays.RlyStoreAuth{Strategy: s.name, Status: "ok", Msg: "authenticated"})
			if c.svcCfg.AuthCachePath != "" {
				c.saveAuthCache()
			}
			return nil
		}
		metrics.AuthAttemptsTotal.WithLabelValues(s.name, "failure").Inc()
		c.relay.Meta(&relays.RlyStoreAuth{Strategy: s.name, Status: "failed", Msg: err.Error()})
		failed = append(failed, fmt.Sprintf("%s: %v", s.name, err))
	}
	return &dto.AuthenticationFailure{Attempts: failed}
}

// strategies picks the order of authentication methods. An explicit
// AuthMethods list wins; otherwise a "1.0" auth URL hints at the legacy
// protocol being most likely to succeed first.
func (c *StorageClient) strategies() []authStrategy {
	byName := map[string]authStrategy{
		"auth1":                      {"auth1", c.auth1},
		"auth2key":                   {"auth2key", func(ctx context.Context) error { return c.auth2(ctx, "RAX-KSKEY:apiKeyCredentials", "apiKey", false) }},
		"auth2password":              {"auth2password", func(ctx context.Context) error { return c.auth2(ctx, "passwordCredentials", "password", false) }},
		"auth2key_force_tenant":      {"auth2key_force_tenant", func(ctx context.Context) error { return c.auth2(ctx, "RAX-KSKEY:apiKeyCredentials", "apiKey", true) }},
		"auth2password_force_tenant": {"auth2password_force_tenant", func(ctx context.Context) error { return c.auth2(ctx, "passwordCredentials", "password", true) }},
	}

	if c.svcCfg.AuthMethods != "" {
		var out []authStrategy
		for _, name := range strings.Split(c.svcCfg.AuthMethods, ",") {
			if s, ok := byName[strings.TrimSpace(name)]; ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	var names []string
	if strings.Contains(c.svcCfg.AuthURL, "1.0") {
		names = []string{"auth1", "auth2key", "auth2password"}
		if c.svcCfg.AuthTenant == "" {
			names = append(names, "auth2password_force_tenant")
		}
	} else {
		names = []string{"auth2key", "auth2password"}
		if c.svcCfg.AuthTenant == "" {
			names = append(names, "auth2password_force_tenant")
		}
		names = append(names, "auth1")
	}
	out := make([]authStrategy, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out
}

// authHTTP issues one auth request with its own bounded retry on server
// errors; auth retries are separate from the main transport budget.
func (c *StorageClient) authHTTP(ctx context.Context, method, target string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastStatus int
	var lastReason string
	for attempt := 0; attempt < c.attempts; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if c.svcCfg.UserAgent != "" {
			req.Header.Set("User-Agent", c.svcCfg.UserAgent)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastStatus = 0
			lastReason = err.Error()
			c.httpClient.CloseIdleConnections()
			c.delay.Wait("auth "+target, attempt)
			continue
		}
		if resp.StatusCode >= 500 {
			lastStatus = resp.StatusCode
			lastReason = statusReason(resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.httpClient.CloseIdleConnections()
			c.delay.Wait("auth "+target, attempt)
			continue
		}
		return resp, nil
	}
	return nil, &dto.TransportExhausted{Method: method, Path: target, Status: lastStatus, Reason: lastReason}
}

// auth1 is the legacy protocol: a GET with the credentials in headers, the
// session coming back in headers.
func (c *StorageClient) auth1(ctx context.Context) error {
	resp, err := c.authHTTP(ctx, http.MethodGet, c.svcCfg.AuthURL, nil, map[string]string{
		"X-Auth-User": url.QueryEscape(c.svcCfg.AuthUser),
		"X-Auth-Key":  url.QueryEscape(c.svcCfg.AuthKey),
	})
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("auth response %d %s", resp.StatusCode, statusReason(resp))
	}

	storageURL := resp.Header.Get("X-Storage-Url")
	if storageURL == "" {
		return fmt.Errorf("auth response missing storage url")
	}
	token := resp.Header.Get("X-Auth-Token")
	if token == "" {
		token = resp.Header.Get("X-Storage-Token")
	}
	if token == "" {
		return fmt.Errorf("auth response missing token")
	}
	if c.svcCfg.Snet {
		storageURL = snetURL(storageURL)
	}

	c.mu.Lock()
	c.session = dto.Session{StorageURL: storageURL, Token: token}
	c.mu.Unlock()
	return nil
}

// v2 auth response, only the parts consumed here. Region is a pointer so
// an absent region is distinct from an empty one during catalog matching.
type auth2Response struct {
	Access struct {
		Token struct {
			ID string `json:"id"`
		} `json:"token"`
		ServiceCatalog []struct {
			Type      string `json:"type"`
			Endpoints []struct {
				Region      *string `json:"region"`
				PublicURL   string  `json:"publicURL"`
				InternalURL string  `json:"internalURL"`
			} `json:"endpoints"`
		} `json:"serviceCatalog"`
		User map[string]any `json:"user"`
	} `json:"access"`
}

func (c *StorageClient) auth2(ctx context.Context, credType, secretField string, forceTenant bool) error {
	creds := map[string]string{
		"username":  c.svcCfg.AuthUser,
		secretField: c.svcCfg.AuthKey,
	}
	payload := map[string]any{credType: creds}
	tenant := c.svcCfg.AuthTenant
	if tenant == "" && forceTenant {
		tenant = c.svcCfg.AuthUser
	}
	if tenant != "" {
		payload["tenantName"] = tenant
	}
	body, err := json.Marshal(map[string]any{"auth": payload})
	if err != nil {
		return err
	}

	target := strings.TrimRight(c.svcCfg.AuthURL, "/") + "/tokens"
	resp, err := c.authHTTP(ctx, http.MethodPost, target, body, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("auth response %d %s", resp.StatusCode, statusReason(resp))
	}

	var parsed auth2Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}
	if parsed.Access.Token.ID == "" {
		return fmt.Errorf("auth response missing token")
	}

	defaultRegion, _ := parsed.Access.User["RAX-AUTH:defaultRegion"].(string)

	// The account default region stands in when no region was configured.
	region := c.svcCfg.Region
	if region == "" {
		region = defaultRegion
	}

	var storageURL, cdnURL string
	for _, svc := range parsed.Access.ServiceCatalog {
		switch svc.Type {
		case "object-store":
			storageURL = matchEndpoint(svc.Endpoints, region, c.svcCfg.Snet)
		case cdnServiceType:
			// CDN management traffic always rides the public interface.
			cdnURL = matchEndpoint(svc.Endpoints, region, false)
		}
	}
	if storageURL == "" {
		return fmt.Errorf("no object-store endpoint for region %q", region)
	}

	c.mu.Lock()
	c.session = dto.Session{StorageURL: storageURL, CDNURL: cdnURL, Token: parsed.Access.Token.ID}
	c.defaultRegion = defaultRegion
	c.mu.Unlock()
	return nil
}

type catalogEndpoint = struct {
	Region      *string `json:"region"`
	PublicURL   string  `json:"publicURL"`
	InternalURL string  `json:"internalURL"`
}

// matchEndpoint picks the catalog endpoint best matching the requested
// region: exact match first, then case-insensitive, then a region-less
// endpoint; with no region requested a region-less endpoint still wins
// over the first region-bearing one.
func matchEndpoint(endpoints []catalogEndpoint, region string, snet bool) string {
	pick := func(ep catalogEndpoint) string {
		if snet && ep.InternalURL != "" {
			return ep.InternalURL
		}
		return ep.PublicURL
	}
	if region != "" {
		for _, ep := range endpoints {
			if ep.Region != nil && *ep.Region == region {
				return pick(ep)
			}
		}
		for _, ep := range endpoints {
			if ep.Region != nil && strings.EqualFold(*ep.Region, region) {
				return pick(ep)
			}
		}
		for _, ep := range endpoints {
			if ep.Region == nil {
				return pick(ep)
			}
		}
		return ""
	}
	for _, ep := range endpoints {
		if ep.Region == nil {
			return pick(ep)
		}
	}
	if len(endpoints) > 0 {
		return pick(endpoints[0])
	}
	return ""
}

// snetURL rewrites a storage url for the service network by prefixing the
// host with "snet-".
func snetURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Host = "snet-" + u.Host
	return u.String()
}

// AccountHash returns the account identifier embedded in the storage url,
// its last path element. Useful as a cache or listing key.
func (c *StorageClient) AccountHash() string {
	session := c.Session()
	if session.StorageURL == "" {
		return ""
	}
	return session.StorageURL[strings.LastIndex(session.StorageURL, "/")+1:]
}
