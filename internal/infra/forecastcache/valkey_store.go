package forecastcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/thomas-desmond/owltrek/internal/domain/nights"
)

// ValkeyStore keeps night forecasts in a Valkey-compatible database so
// multiple service instances share one cache.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "owltrek"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (map[string]nights.NightConditions, bool, error) {
	cmd := s.client.B().Get().Key(s.fullKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var forecast map[string]nights.NightConditions
	if err := json.Unmarshal([]byte(payload), &forecast); err != nil {
		return nil, false, err
	}
	return forecast, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, forecast map[string]nights.NightConditions, ttl time.Duration) error {
	payload, err := json.Marshal(forecast)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.fullKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) fullKey(key string) string {
	return s.prefix + ":" + key
}

var _ Store = (*ValkeyStore)(nil)
