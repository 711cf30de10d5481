package swiftclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joy-dx/swiftkit/config"
	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/utils"
)

func strPtr(s string) *string { return &s }

func TestMatchEndpoint_Golden(t *testing.T) {
	t.Parallel()

	endpoints := []catalogEndpoint{
		{Region: strPtr("DFW"), PublicURL: "http://dfw.public", InternalURL: "http://dfw.internal"},
		{Region: strPtr("ord"), PublicURL: "http://ord.public", InternalURL: "http://ord.internal"},
		{Region: nil, PublicURL: "http://any.public", InternalURL: "http://any.internal"},
	}

	tests := []struct {
		name      string
		endpoints []catalogEndpoint
		region    string
		snet      bool
		want      string
	}{
		{
			name:      "exact region",
			endpoints: endpoints,
			region:    "DFW",
			want:      "http://dfw.public",
		},
		{
			name:      "case-insensitive region",
			endpoints: endpoints,
			region:    "ORD",
			want:      "http://ord.public",
		},
		{
			name:      "unknown region falls back to region-less endpoint",
			endpoints: endpoints,
			region:    "SYD",
			want:      "http://any.public",
		},
		{
			name: "unknown region with no region-less endpoint",
			endpoints: []catalogEndpoint{
				{Region: strPtr("DFW"), PublicURL: "http://dfw.public"},
			},
			region: "SYD",
			want:   "",
		},
		{
			name:      "no region requested prefers region-less endpoint",
			endpoints: endpoints,
			want:      "http://any.public",
		},
		{
			name: "no region requested and all named takes first",
			endpoints: []catalogEndpoint{
				{Region: strPtr("ORD"), PublicURL: "http://ord.public"},
				{Region: strPtr("DFW"), PublicURL: "http://dfw.public"},
			},
			want: "http://ord.public",
		},
		{
			name:      "snet picks internal url",
			endpoints: endpoints,
			region:    "DFW",
			snet:      true,
			want:      "http://dfw.internal",
		},
		{
			name:      "empty catalog",
			endpoints: nil,
			want:      "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := matchEndpoint(tt.endpoints, tt.region, tt.snet); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestStrategies_Order(t *testing.T) {
	t.Parallel()

	names := func(list []authStrategy) []string {
		out := make([]string, len(list))
		for i, s := range list {
			out[i] = s.name
		}
		return out
	}

	tests := []struct {
		name    string
		authURL string
		tenant  string
		methods string
		want    []string
	}{
		{
			name:    "legacy url leads with auth1",
			authURL: "http://auth/v1.0",
			want:    []string{"auth1", "auth2key", "auth2password", "auth2password_force_tenant"},
		},
		{
			name:    "v2 url leads with auth2",
			authURL: "http://auth/v2.0",
			want:    []string{"auth2key", "auth2password", "auth2password_force_tenant", "auth1"},
		},
		{
			name:    "tenant set skips forced variants",
			authURL: "http://auth/v2.0",
			tenant:  "acme",
			want:    []string{"auth2key", "auth2password", "auth1"},
		},
		{
			name:    "explicit methods override",
			authURL: "http://auth/v2.0",
			methods: "auth1,auth2password",
			want:    []string{"auth1", "auth2password"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewStoreSvcConfig()
			cfg.WithAuth(tt.authURL, "u", "k").
				WithAuthTenant(tt.tenant).
				WithAuthMethods(tt.methods).
				WithRelay(&testRelay{})

			c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
			if err != nil {
				t.Fatalf("NewStorageClient: %v", err)
			}

			got := names(c.strategies())
			if len(got) != len(tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v want %v", got, tt.want)
				}
			}
		})
	}
}

func TestAuth1_Golden(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-User") != "user" || r.Header.Get("X-Auth-Key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("X-Storage-Url", "http://store.example/v1/acct")
		w.Header().Set("X-Storage-Token", "legacy-token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.NewStoreSvcConfig()
	cfg.WithAuth(srv.URL+"/v1.0", "user", "key").
		WithDelay(utils.NoDelay{}).
		WithRelay(&testRelay{})

	c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}

	if err := c.Auth(context.Background()); err != nil {
		t.Fatalf("Auth: %v", err)
	}

	session := c.Session()
	if session.StorageURL != "http://store.example/v1/acct" {
		t.Fatalf("storage url=%q", session.StorageURL)
	}
	// X-Storage-Token is the fallback when X-Auth-Token is absent.
	if session.Token != "legacy-token" {
		t.Fatalf("token=%q", session.Token)
	}
}

func TestAuth1_Snet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storage-Url", "http://store.example/v1/acct")
		w.Header().Set("X-Auth-Token", "tok")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.NewStoreSvcConfig()
	cfg.WithAuth(srv.URL+"/v1.0", "user", "key").
		WithSnet(true).
		WithDelay(utils.NoDelay{}).
		WithRelay(&testRelay{})

	c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}
	if err := c.Auth(context.Background()); err != nil {
		t.Fatalf("Auth: %v", err)
	}
	if got := c.Session().StorageURL; got != "http://snet-store.example/v1/acct" {
		t.Fatalf("storage url=%q want snet- host prefix", got)
	}
}

func auth2Catalog() map[string]any {
	return map[string]any{
		"access": map[string]any{
			"token": map[string]any{"id": "v2-token"},
			"user":  map[string]any{"RAX-AUTH:defaultRegion": "DFW"},
			"serviceCatalog": []map[string]any{
				{
					"type": "object-store",
					"endpoints": []map[string]any{
						{"region": "DFW", "publicURL": "http://dfw.public/v1/acct", "internalURL": "http://dfw.internal/v1/acct"},
						{"region": "ORD", "publicURL": "http://ord.public/v1/acct", "internalURL": "http://ord.internal/v1/acct"},
					},
				},
				{
					"type": "rax:object-cdn",
					"endpoints": []map[string]any{
						{"region": "DFW", "publicURL": "http://cdn.dfw.public/v1/acct", "internalURL": "http://cdn.dfw.internal/v1/acct"},
					},
				},
			},
		},
	}
}

func TestAuth2_Golden(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/tokens") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(auth2Catalog())
	}))
	defer srv.Close()

	cfg := config.NewStoreSvcConfig()
	cfg.WithAuth(srv.URL+"/v2.0", "user", "secret").
		WithAuthTenant("acme").
		WithRegion("DFW").
		WithSnet(true).
		WithDelay(utils.NoDelay{}).
		WithRelay(&testRelay{})

	c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}
	if err := c.Auth(context.Background()); err != nil {
		t.Fatalf("Auth: %v", err)
	}

	session := c.Session()
	if session.Token != "v2-token" {
		t.Fatalf("token=%q", session.Token)
	}
	// snet selects the internal storage endpoint...
	if session.StorageURL != "http://dfw.internal/v1/acct" {
		t.Fatalf("storage url=%q", session.StorageURL)
	}
	// ...but CDN management always uses the public one.
	if session.CDNURL != "http://cdn.dfw.public/v1/acct" {
		t.Fatalf("cdn url=%q", session.CDNURL)
	}
	if c.DefaultRegion() != "DFW" {
		t.Fatalf("default region=%q", c.DefaultRegion())
	}

	auth, _ := captured["auth"].(map[string]any)
	if auth == nil {
		t.Fatalf("no auth payload captured: %v", captured)
	}
	if auth["tenantName"] != "acme" {
		t.Fatalf("tenantName=%v", auth["tenantName"])
	}
	if _, ok := auth["RAX-KSKEY:apiKeyCredentials"]; !ok {
		t.Fatalf("first strategy should send api key credentials: %v", auth)
	}
}

func TestAuth2_DefaultRegionUsedWhenNoneConfigured(t *testing.T) {
	t.Parallel()

	// ORD is listed first; only the account default region should make
	// the catalog resolve to DFW.
	catalog := map[string]any{
		"access": map[string]any{
			"token": map[string]any{"id": "v2-token"},
			"user":  map[string]any{"RAX-AUTH:defaultRegion": "DFW"},
			"serviceCatalog": []map[string]any{
				{
					"type": "object-store",
					"endpoints": []map[string]any{
						{"region": "ORD", "publicURL": "http://ord.public/v1/acct"},
						{"region": "DFW", "publicURL": "http://dfw.public/v1/acct"},
					},
				},
			},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(catalog)
	}))
	defer srv.Close()

	cfg := config.NewStoreSvcConfig()
	cfg.WithAuth(srv.URL+"/v2.0", "user", "secret").
		WithAuthTenant("acme").
		WithDelay(utils.NoDelay{}).
		WithRelay(&testRelay{})

	c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}
	if err := c.Auth(context.Background()); err != nil {
		t.Fatalf("Auth: %v", err)
	}
	if got := c.Session().StorageURL; got != "http://dfw.public/v1/acct" {
		t.Fatalf("storage url=%q want default-region endpoint", got)
	}
}

func TestAuth_CollectsStrategyFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := config.NewStoreSvcConfig()
	cfg.WithAuth(srv.URL+"/v2.0", "user", "bad").
		WithAuthTenant("acme").
		WithDelay(utils.NoDelay{}).
		WithRelay(&testRelay{})

	c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}

	err = c.Auth(context.Background())
	var failure *dto.AuthenticationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("err=%v want AuthenticationFailure", err)
	}
	// Tenant set: auth2key, auth2password, auth1.
	if len(failure.Attempts) != 3 {
		t.Fatalf("attempts=%v want 3 entries", failure.Attempts)
	}
}

func TestAccountHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		storageURL string
		want       string
	}{
		{"standard", "http://store.example/v1/AUTH_abc123", "AUTH_abc123"},
		{"trailing segment only", "http://store.example/AUTH_x", "AUTH_x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, tc.storageURL, 1)
			if got := c.AccountHash(); got != tc.want {
				t.Errorf("AccountHash() = %q, want %q", got, tc.want)
			}
		})
	}
}
