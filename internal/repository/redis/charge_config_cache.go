package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"eventparticipation/internal/domain"
)

const chargeConfigKeyPrefix = "participation:charge_config:"

type chargeConfigCache struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewChargeConfigCache stores event charge configs as JSON with a fixed TTL.
func NewChargeConfigCache(client goredis.Cmdable, ttl time.Duration) domain.ChargeConfigCache {
	return &chargeConfigCache{client: client, ttl: ttl}
}

func (c *chargeConfigCache) Get(ctx context.Context, eventID string) (*domain.EventChargeConfig, bool, error) {
	raw, err := c.client.Get(ctx, chargeConfigKeyPrefix+eventID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get charge config: %w", err)
	}
	var cfg domain.EventChargeConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, false, fmt.Errorf("decode charge config: %w", err)
	}
	return &cfg, true, nil
}

func (c *chargeConfigCache) Set(ctx context.Context, cfg *domain.EventChargeConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode charge config: %w", err)
	}
	return c.client.Set(ctx, chargeConfigKeyPrefix+cfg.EventID, raw, c.ttl).Err()
}
