package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const keyPrefix = "corpsite:cache:"

// ValkeyStore shares cached responses between replicas.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore connects to a redis:// or rediss:// URL.
func NewValkeyStore(url string) (*ValkeyStore, error) {
	opt, err := valkey.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse cache url: %w", err)
	}
	// Server-assisted client caching needs CLIENT TRACKING, which not every
	// deployment (or test server) supports.
	opt.DisableCache = true

	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("connect to valkey: %w", err)
	}
	return &ValkeyStore{client: client}, nil
}

// Get returns the stored value, or a miss when the key is absent.
func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cmd := s.client.B().Get().Key(keyPrefix + key).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return data, true, nil
}

// Set stores value with a server-side expiry.
func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, key)
	}
	cmd := s.client.B().Set().Key(keyPrefix + key).Value(valkey.BinaryString(value)).Ex(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	cmd := s.client.B().Del().Key(keyPrefix + key).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *ValkeyStore) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping valkey: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *ValkeyStore) Close() {
	s.client.Close()
}
