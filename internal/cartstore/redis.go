package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_inventory/internal/domain"
	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: 8 * time.Hour,
	}
}

// RedisStore keeps carts as JSON values that expire after a working day of
// inactivity.
type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisStore) Get(ctx context.Context, username string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err2 := json.Unmarshal(data, &cart); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return &cart, nil
}

func (r RedisStore) Save(ctx context.Context, cart *domain.Cart) error {
	jsonCart, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(30)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, cartKey(cart.Username), jsonCart, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisStore) Delete(ctx context.Context, username string) error {
	if err := r.client.Del(ctx, cartKey(username)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cartKey(username string) string {
	return fmt.Sprintf("cart:%s", username)
}
