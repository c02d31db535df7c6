package cli

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/archsynth/pkg/adapters/file"
	"github.com/aretw0/archsynth/pkg/adapters/memory"
	"github.com/aretw0/archsynth/pkg/adapters/redis"
	"github.com/aretw0/archsynth/pkg/persistence/middleware"
	"github.com/aretw0/archsynth/pkg/ports"
)

// Persistence bundles the configured store and, for redis, a locker.
type Persistence struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases connections held by the store.
func (p *Persistence) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// OpenStore builds the store selected by opts, wrapped by the PII and
// encryption middlewares when configured. Kind "none" yields a nil Store.
func OpenStore(opts StoreOptions) (*Persistence, error) {
	p := &Persistence{}
	var base ports.SnapshotStore

	switch strings.ToLower(opts.Kind) {
	case "", "file":
		dir := opts.Dir
		if dir == "" {
			dir = filepath.Join(".archsynth", "snapshots")
		}
		base = file.New(dir)
	case "memory":
		base = memory.NewStore()
	case "redis":
		var storeOpts []redis.Option
		if opts.TTL > 0 {
			storeOpts = append(storeOpts, redis.WithTTL(opts.TTL))
		}
		s := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, storeOpts...)
		base = s
		p.Locker = redis.NewLocker(s.Client(), "archsynth:")
		p.close = s.Close
	case "none":
		return p, nil
	default:
		return nil, fmt.Errorf("unknown store %q (want file, redis, memory or none)", opts.Kind)
	}

	var mws []middleware.Middleware
	if len(opts.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(opts.PIIPatterns))
	}
	if opts.EncryptionKey != "" {
		active, err := decodeKey(opts.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption key: %w", err)
		}
		cfg := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range opts.FallbackKeys {
			key, err := decodeKey(k)
			if err != nil {
				return nil, fmt.Errorf("fallback key %d: %w", i, err)
			}
			cfg.FallbackKeys = append(cfg.FallbackKeys, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(cfg))
	}
	p.Store = middleware.Chain(base, mws...)
	return p, nil
}

// decodeKey accepts a 32-byte key as hex or standard base64.
func decodeKey(s string) ([]byte, error) {
	if key, err := hex.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	return nil, fmt.Errorf("want 32 bytes encoded as hex or base64")
}
