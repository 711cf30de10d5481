package swiftclient

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/relays"
)

// The cache file holds the credentials used plus the session they bought,
// newline-joined and base64-wrapped as a whole. The credential fields let a
// later load detect that the configuration changed and discard the entry.
const authCacheFields = 9

func (c *StorageClient) saveAuthCache() {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	record := strings.Join([]string{
		c.svcCfg.AuthURL,
		c.svcCfg.AuthUser,
		c.svcCfg.AuthKey,
		c.svcCfg.AuthTenant,
		c.svcCfg.Region,
		session.StorageURL,
		session.CDNURL,
		session.Token,
		strconv.FormatBool(c.svcCfg.Snet),
	}, "\n")
	encoded := base64.StdEncoding.EncodeToString([]byte(record))

	dir := filepath.Dir(c.svcCfg.AuthCachePath)
	tmp, err := os.CreateTemp(dir, ".authcache-*")
	if err != nil {
		c.relay.Meta(&relays.RlyStoreAuth{Status: "cache", Msg: "cache write failed: " + err.Error()})
		return
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(encoded); err != nil {
		tmp.Close()
		os.Remove(name)
		c.relay.Meta(&relays.RlyStoreAuth{Status: "cache", Msg: "cache write failed: " + err.Error()})
		return
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(name)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return
	}
	if err := os.Rename(name, c.svcCfg.AuthCachePath); err != nil {
		os.Remove(name)
		c.relay.Meta(&relays.RlyStoreAuth{Status: "cache", Msg: "cache write failed: " + err.Error()})
	}
}

// loadAuthCache returns a cached session only when every credential field
// matches the current configuration. Region is compared only when one is
// configured, so a cache written without a region survives.
func (c *StorageClient) loadAuthCache() (dto.Session, bool) {
	raw, err := os.ReadFile(c.svcCfg.AuthCachePath)
	if err != nil {
		return dto.Session{}, false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return dto.Session{}, false
	}
	fields := strings.Split(string(decoded), "\n")
	if len(fields) != authCacheFields {
		return dto.Session{}, false
	}

	snet, err := strconv.ParseBool(fields[8])
	if err != nil {
		return dto.Session{}, false
	}
	if fields[0] != c.svcCfg.AuthURL ||
		fields[1] != c.svcCfg.AuthUser ||
		fields[2] != c.svcCfg.AuthKey ||
		fields[3] != c.svcCfg.AuthTenant ||
		snet != c.svcCfg.Snet {
		return dto.Session{}, false
	}
	if c.svcCfg.Region != "" && fields[4] != c.svcCfg.Region {
		return dto.Session{}, false
	}

	session := dto.Session{StorageURL: fields[5], CDNURL: fields[6], Token: fields[7]}
	if !session.Valid() {
		return dto.Session{}, false
	}
	return session, true
}
