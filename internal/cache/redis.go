package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/govalues/money"
	"github.com/redis/go-redis/v9"

	"github.com/tinoosan/bookkeeper/internal/ledger"
)

const keyPrefix = "bookkeeper:balances:"

// Redis stores balances as JSON maps of account id to minor units.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Key returns the redis key holding the balances of version.
func Key(version int64) string { return fmt.Sprintf("%s%d", keyPrefix, version) }

func (r *Redis) Get(ctx context.Context, version int64) (ledger.Balances, error) {
	val, err := r.client.Get(ctx, Key(version)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotExists
		}
		return nil, err
	}
	var minor map[string]int64
	if err := json.Unmarshal([]byte(val), &minor); err != nil {
		return nil, fmt.Errorf("decode cached balances: %w", err)
	}
	out := make(ledger.Balances, len(minor))
	for id, units := range minor {
		amt, err := money.NewAmountFromMinorUnits(ledger.Currency, units)
		if err != nil {
			return nil, fmt.Errorf("decode cached balance %s: %w", id, err)
		}
		out[id] = amt
	}
	return out, nil
}

func (r *Redis) Set(ctx context.Context, version int64, b ledger.Balances) error {
	payload, err := Encode(b)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, Key(version), payload, r.ttl).Err()
}

// Encode renders balances as the JSON payload stored in redis.
func Encode(b ledger.Balances) (string, error) {
	minor := make(map[string]int64, len(b))
	for id, amt := range b {
		units, ok := amt.MinorUnits()
		if !ok {
			return "", fmt.Errorf("balance %s does not fit in minor units", id)
		}
		minor[id] = units
	}
	val, err := json.Marshal(minor)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// Ping checks connectivity with a short timeout.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}

// Ready reports whether redis answers a ping.
func (r *Redis) Ready(ctx context.Context) error { return r.client.Ping(ctx).Err() }
