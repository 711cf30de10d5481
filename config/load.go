package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joy-dx/swiftkit/dto"
)

// Load reads a StoreSvcConfig from an optional config file plus SWIFTKIT_*
// environment variables. The file may be any format viper understands; keys
// mirror the struct fields in snake_case (auth_url, auth_user, segment_size,
// ...). Environment variables win over file values.
func Load(path string) (*StoreSvcConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("swiftkit")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("attempts", DefaultAttempts)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("segment_size", DefaultSegmentSize)
	v.SetDefault("user_agent", "swiftkit")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	cfg := NewStoreSvcConfig()
	cfg.AuthURL = strings.TrimRight(v.GetString("auth_url"), "/")
	cfg.AuthUser = v.GetString("auth_user")
	cfg.AuthKey = v.GetString("auth_key")
	cfg.AuthTenant = v.GetString("auth_tenant")
	cfg.AuthMethods = v.GetString("auth_methods")
	cfg.AuthCachePath = v.GetString("auth_cache_path")
	cfg.Region = v.GetString("region")
	cfg.Snet = v.GetBool("snet")
	cfg.StorageURL = v.GetString("storage_url")
	cfg.Attempts = v.GetInt("attempts")
	cfg.ChunkSize = v.GetInt("chunk_size")
	cfg.Concurrency = v.GetInt("concurrency")
	cfg.SegmentSize = v.GetInt64("segment_size")
	cfg.UserAgent = v.GetString("user_agent")
	cfg.HTTPProxy = v.GetString("http_proxy")
	cfg.RequestTimeout = v.GetDuration("request_timeout")
	cfg.DownloadCallbackInterval = v.GetDuration("download_callback_interval")

	if raw := v.GetString("extra_headers"); raw != "" {
		eh := dto.ExtraHeaders{}
		if err := eh.Set(raw); err != nil {
			return nil, fmt.Errorf("parse extra_headers: %w", err)
		}
		cfg.ExtraHeaders = eh
	}

	if cfg.Attempts < 1 {
		return nil, fmt.Errorf("attempts must be at least 1, got %d", cfg.Attempts)
	}
	if cfg.SegmentSize < 1 {
		return nil, fmt.Errorf("segment_size must be positive, got %d", cfg.SegmentSize)
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = time.Duration(0)
	}
	return cfg, nil
}
