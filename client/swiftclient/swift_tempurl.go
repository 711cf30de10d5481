package swiftclient

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenerateTempURL signs a time-limited URL for one object using the
// account temp-url key, valid for the given duration from now.
func (c *StorageClient) GenerateTempURL(method, container, object, key string, ttl time.Duration) (string, error) {
	return c.GenerateTempURLAt(method, container, object, key, time.Now().Add(ttl))
}

// GenerateTempURLAt signs a URL expiring at the given instant. The
// signature covers the method, the expiry and the url path from the API
// version onward.
func (c *StorageClient) GenerateTempURLAt(method, container, object, key string, expires time.Time) (string, error) {
	session := c.Session()
	if session.StorageURL == "" {
		return "", fmt.Errorf("temp url: no storage endpoint, authenticate first")
	}

	full := strings.TrimRight(session.StorageURL, "/") + ObjectPath(container, object)
	_, tail, ok := strings.Cut(full, "/v1/")
	if !ok {
		return "", fmt.Errorf("temp url: storage url %q has no /v1/ component", session.StorageURL)
	}
	signedPath := "/v1/" + tail

	epoch := strconv.FormatInt(expires.Unix(), 10)
	mac := hmac.New(sha1.New, []byte(key))
	fmt.Fprintf(mac, "%s\n%s\n%s", strings.ToUpper(method), epoch, signedPath)
	sig := hex.EncodeToString(mac.Sum(nil))

	return full + "?temp_url_sig=" + sig + "&temp_url_expires=" + epoch, nil
}
