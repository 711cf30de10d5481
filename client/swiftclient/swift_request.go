package swiftclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/metrics"
	"github.com/joy-dx/swiftkit/relays"
	"github.com/joy-dx/swiftkit/utils"
)

// countingReader tracks how many payload bytes have left for the wire, so
// a failed attempt can tell whether the body needs resetting at all.
type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// do runs the retry loop. Server errors and connection failures consume an
// attempt and back off exponentially; the first consecutive 401 triggers a
// free re-authentication, further 401s burn attempts like any other error.
func (c *StorageClient) do(ctx context.Context, r *StoreRequest) (dto.Response, error) {
	reauthed := false
	var lastStatus int
	var lastReason string

	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			c.relay.Meta(&relays.RlyStoreRequest{
				Method:  r.Method,
				Path:    r.Path,
				Status:  lastStatus,
				Attempt: attempt,
				Msg:     "retrying request",
			})
		}

		session := c.Session()
		if !session.Valid() && c.svcCfg.TokenSource == nil && c.svcCfg.AuthURL != "" {
			if err := c.Auth(ctx); err != nil {
				return dto.Response{}, err
			}
			session = c.Session()
		}

		httpReq, counter, err := c.buildHTTPRequest(ctx, r, session)
		if err != nil {
			return dto.Response{}, err
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return dto.Response{}, ctx.Err()
			}
			metrics.RequestRetriesTotal.WithLabelValues("connection").Inc()
			lastStatus = 0
			lastReason = err.Error()
			c.httpClient.CloseIdleConnections()
			if rerr := resetBody(r.Body, counter.n); rerr != nil {
				return dto.Response{}, rerr
			}
			if attempt < c.attempts-1 {
				c.delay.Wait(r.Method+" "+r.Path, attempt)
			}
			continue
		}

		metrics.RequestsTotal.WithLabelValues(r.Method, statusClass(resp.StatusCode)).Inc()

		switch {
		case resp.StatusCode == http.StatusUnauthorized && c.svcCfg.AuthURL != "":
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.httpClient.CloseIdleConnections()
			c.invalidateSession()
			if err := c.Auth(ctx); err != nil {
				return dto.Response{}, err
			}
			if rerr := resetBody(r.Body, counter.n); rerr != nil {
				return dto.Response{}, rerr
			}
			lastStatus = resp.StatusCode
			lastReason = statusReason(resp)
			metrics.RequestRetriesTotal.WithLabelValues("unauthorized").Inc()
			if !reauthed {
				// The first 401 is expired-token housekeeping, not a
				// failure, so it does not count against the budget.
				reauthed = true
				attempt--
			}
			continue

		case resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.httpClient.CloseIdleConnections()
			lastStatus = resp.StatusCode
			lastReason = statusReason(resp)
			metrics.RequestRetriesTotal.WithLabelValues("server_error").Inc()
			if rerr := resetBody(r.Body, counter.n); rerr != nil {
				return dto.Response{}, rerr
			}
			// No point backing off when there is no attempt left to spend.
			if attempt < c.attempts-1 {
				c.delay.Wait(r.Method+" "+r.Path, attempt)
			}
			continue
		}

		// Any other status, including client errors, goes back to the
		// caller untouched.
		out := dto.Response{
			StatusCode: resp.StatusCode,
			Reason:     statusReason(resp),
			Headers:    resp.Header,
		}
		if r.Stream {
			out.Stream = resp.Body
		} else {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return dto.Response{}, fmt.Errorf("read response body: %w", err)
			}
			out.Body = body
		}
		return out, nil
	}

	return dto.Response{}, &dto.TransportExhausted{
		Method: r.Method,
		Path:   r.Path,
		Status: lastStatus,
		Reason: lastReason,
	}
}

func (c *StorageClient) buildHTTPRequest(ctx context.Context, r *StoreRequest, session dto.Session) (*http.Request, *countingReader, error) {
	base := session.StorageURL
	if r.CDN {
		base = session.CDNURL
	}
	if base == "" {
		return nil, nil, fmt.Errorf("swift client %q: no endpoint for request", c.Ref())
	}
	target := strings.TrimRight(base, "/") + r.Path
	if q := encodeQuery(r.Query); q != "" {
		target += "?" + q
	}

	counter := &countingReader{}
	var body io.Reader
	var length int64
	if r.Body != nil {
		length = r.Body.Length()
	}
	if r.Body != nil && length != 0 {
		counter.r = r.Body
		body = counter
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, nil, err
	}
	// net/http treats a non-nil body with ContentLength 0 as unknown
	// length, so zero-length payloads never attach a body at all.
	httpReq.ContentLength = length

	for k, v := range c.svcCfg.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("User-Agent") == "" && c.svcCfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.svcCfg.UserAgent)
	}

	if c.svcCfg.TokenSource != nil {
		tok, err := c.svcCfg.TokenSource.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("token source: %w", err)
		}
		httpReq.Header.Set("X-Auth-Token", tok.AccessToken)
	} else if session.Token != "" {
		httpReq.Header.Set("X-Auth-Token", session.Token)
	}

	return httpReq, counter, nil
}

func (c *StorageClient) invalidateSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Token = ""
}

// resetBody makes the payload replayable for the next attempt. Bodies that
// never started sending need no work.
func resetBody(body dto.Body, sent int64) error {
	if body == nil || sent == 0 {
		return nil
	}
	if rb, ok := body.(dto.ResettableBody); ok {
		return rb.Reset()
	}
	return &dto.UnresettableBody{Sent: sent}
}

// encodeQuery renders the query deterministically. Keys with empty values
// are emitted bare, matching how listing markers are commonly passed.
func encodeQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := query[k]; v != "" {
			parts = append(parts, utils.QuotePath(k)+"="+utils.QuotePath(v))
		} else {
			parts = append(parts, utils.QuotePath(k))
		}
	}
	return strings.Join(parts, "&")
}

// statusReason strips the numeric prefix from "204 No Content".
func statusReason(resp *http.Response) string {
	reason := resp.Status
	if cut, ok := strings.CutPrefix(reason, strconv.Itoa(resp.StatusCode)); ok {
		reason = strings.TrimSpace(cut)
	}
	return reason
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
