package swiftclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/joy-dx/swiftkit/config"
	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/utils"
)

func processGolden(t *testing.T, c *StorageClient, reqCfg *StoreRequestConfig) (dto.Response, error) {
	t.Helper()
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(reqCfg)
	return c.ProcessRequest(context.Background(), &cfg)
}

func TestStorageClient_Do_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "done")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/v1/acct", 5)
	reqCfg := DefaultStoreRequestConfig()
	reqCfg.WithPath("/c/o")

	resp, err := processGolden(t, c, &reqCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "done" {
		t.Fatalf("resp=%d %q", resp.StatusCode, resp.Body)
	}
	if calls != 3 {
		t.Fatalf("calls=%d want 3", calls)
	}
}

func TestStorageClient_Do_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/v1/acct", 2)
	reqCfg := DefaultStoreRequestConfig()
	reqCfg.WithPath("/c/o")

	_, err := processGolden(t, c, &reqCfg)
	var exhausted *dto.TransportExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("err=%v want TransportExhausted", err)
	}
	if exhausted.Status != http.StatusBadGateway {
		t.Fatalf("status=%d want 502", exhausted.Status)
	}
}

type countingDelay struct {
	mu    sync.Mutex
	waits []int
}

func (d *countingDelay) Wait(task string, attempt int) {
	d.mu.Lock()
	d.waits = append(d.waits, attempt)
	d.mu.Unlock()
}

func TestStorageClient_Do_NoBackoffAfterFinalAttempt(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	delay := &countingDelay{}
	cfg := config.NewStoreSvcConfig()
	cfg.WithStorageURL(srv.URL + "/v1/acct").
		WithAttempts(3).
		WithDelay(delay).
		WithRelay(&testRelay{})

	c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}

	reqCfg := DefaultStoreRequestConfig()
	reqCfg.WithPath("/c/o")
	_, err = processGolden(t, c, &reqCfg)

	var exhausted *dto.TransportExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("err=%v want TransportExhausted", err)
	}

	delay.mu.Lock()
	defer delay.mu.Unlock()
	if len(delay.waits) != 2 {
		t.Fatalf("waits=%v, want backoff between attempts only", delay.waits)
	}
}

func TestStorageClient_Do_ClientErrorsReturnUntouched(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/v1/acct", 5)
	reqCfg := DefaultStoreRequestConfig()
	reqCfg.WithPath("/c/missing")

	resp, err := processGolden(t, c, &reqCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("code=%d want 404", resp.StatusCode)
	}
	if calls != 1 {
		t.Fatalf("calls=%d, a 4xx must not be retried", calls)
	}
}

func TestStorageClient_Do_ResetsBodyBetweenAttempts(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		n := len(bodies)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/v1/acct", 3)
	reqCfg := DefaultStoreRequestConfig()
	reqCfg.WithMethod(http.MethodPut).
		WithPath("/c/o").
		WithBody(dto.BytesBody([]byte("payload")))

	resp, err := processGolden(t, c, &reqCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("code=%d want 201", resp.StatusCode)
	}
	if len(bodies) != 2 || bodies[0] != "payload" || bodies[1] != "payload" {
		t.Fatalf("bodies=%q, each attempt must resend the full payload", bodies)
	}
}

func TestStorageClient_Do_UnresettableBodyFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/v1/acct", 3)
	reqCfg := DefaultStoreRequestConfig()
	reqCfg.WithMethod(http.MethodPut).
		WithPath("/c/o").
		WithBody(dto.ReaderBody(strings.NewReader("stream"), -1))

	_, err := processGolden(t, c, &reqCfg)
	var unresettable *dto.UnresettableBody
	if !errors.As(err, &unresettable) {
		t.Fatalf("err=%v want UnresettableBody", err)
	}
	if unresettable.Sent == 0 {
		t.Fatalf("sent byte count should be recorded")
	}
}

func TestStorageClient_Do_TransferEncoding(t *testing.T) {
	t.Parallel()

	type seen struct {
		contentLength int64
		chunked       bool
	}
	var mu sync.Mutex
	var got seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		mu.Lock()
		got = seen{
			contentLength: r.ContentLength,
			chunked:       len(r.TransferEncoding) > 0 && r.TransferEncoding[0] == "chunked",
		}
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/v1/acct", 1)

	tests := []struct {
		name        string
		body        dto.Body
		wantChunked bool
		wantLength  int64
	}{
		{
			name:       "known length uses identity",
			body:       dto.BytesBody([]byte("12345")),
			wantLength: 5,
		},
		{
			name:        "unknown length uses chunked",
			body:        dto.ReaderBody(strings.NewReader("12345"), -1),
			wantChunked: true,
		},
		{
			name:       "zero length sends no body",
			body:       dto.BytesBody(nil),
			wantLength: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			reqCfg := DefaultStoreRequestConfig()
			reqCfg.WithMethod(http.MethodPut).
				WithPath("/c/o").
				WithBody(tt.body)

			if _, err := processGolden(t, c, &reqCfg); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			mu.Lock()
			defer mu.Unlock()
			if got.chunked != tt.wantChunked {
				t.Fatalf("chunked=%v want %v", got.chunked, tt.wantChunked)
			}
			if !tt.wantChunked && got.contentLength != tt.wantLength {
				t.Fatalf("content length=%d want %d", got.contentLength, tt.wantLength)
			}
		})
	}
}

func TestStorageClient_Do_ReauthOn401(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	authCalls := 0
	storageCalls := 0

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/auth/v1.0", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authCalls++
		mu.Unlock()
		w.Header().Set("X-Storage-Url", srv.URL+"/v1/acct")
		w.Header().Set("X-Auth-Token", "fresh-token")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/acct/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		storageCalls++
		mu.Unlock()
		if r.Header.Get("X-Auth-Token") != "fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.NewStoreSvcConfig()
	cfg.WithAuth(srv.URL+"/auth/v1.0", "user", "key").
		WithAttempts(3).
		WithDelay(utils.NoDelay{}).
		WithRelay(&testRelay{})

	c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}
	// Seed a stale session so the first storage call 401s.
	c.session = dto.Session{StorageURL: srv.URL + "/v1/acct", Token: "stale-token"}

	reqCfg := DefaultStoreRequestConfig()
	reqCfg.WithPath("/c/o")

	resp, err := processGolden(t, c, &reqCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("code=%d want 200", resp.StatusCode)
	}
	if authCalls != 1 {
		t.Fatalf("authCalls=%d want 1", authCalls)
	}
	if storageCalls != 2 {
		t.Fatalf("storageCalls=%d want 2 (401 then 200)", storageCalls)
	}
}

func TestStorageClient_Do_Repeated401sAreBounded(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1.0", func(w http.ResponseWriter, r *http.Request) {
		var srvURL string
		if r.TLS == nil {
			srvURL = "http://" + r.Host
		} else {
			srvURL = "https://" + r.Host
		}
		w.Header().Set("X-Storage-Url", srvURL+"/v1/acct")
		w.Header().Set("X-Auth-Token", "token")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/acct/", func(w http.ResponseWriter, r *http.Request) {
		// Even a fresh token is rejected, e.g. an ACL problem.
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.NewStoreSvcConfig()
	cfg.WithAuth(srv.URL+"/auth/v1.0", "user", "key").
		WithAttempts(2).
		WithDelay(utils.NoDelay{}).
		WithRelay(&testRelay{})

	c, err := NewStorageClient("test", cfg, DefaultStorageClientConfig())
	if err != nil {
		t.Fatalf("NewStorageClient: %v", err)
	}

	reqCfg := DefaultStoreRequestConfig()
	reqCfg.WithPath("/c/o")

	_, err = processGolden(t, c, &reqCfg)
	if err == nil {
		t.Fatalf("repeated 401s must eventually fail instead of looping")
	}
}

func TestEncodeQuery_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query map[string]string
		want  string
	}{
		{name: "empty", query: nil, want: ""},
		{
			name:  "sorted keys",
			query: map[string]string{"marker": "m", "format": "json"},
			want:  "format=json&marker=m",
		},
		{
			name:  "bare key for empty value",
			query: map[string]string{"multipart-manifest": "put", "flag": ""},
			want:  "flag&multipart-manifest=put",
		},
		{
			name:  "values are escaped",
			query: map[string]string{"prefix": "a b/c"},
			want:  "prefix=a%20b/c",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := encodeQuery(tt.query); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}
