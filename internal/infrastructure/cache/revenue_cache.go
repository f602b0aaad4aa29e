package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rentbooks/backend/internal/domain/allocation"
	"github.com/rentbooks/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

const revenueKeyPrefix = "revenue:"

// RedisRevenueCache decorates a PropertyRevenueProvider with a Redis cache.
// Revenue for a closed competency period never changes once the month is
// booked, so even a short TTL removes most of the per-preview query load.
// Redis failures fall through to the underlying provider.
type RedisRevenueCache struct {
	client *redis.Client
	next   allocation.PropertyRevenueProvider
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRevenueCache creates a new RedisRevenueCache
func NewRedisRevenueCache(client *redis.Client, next allocation.PropertyRevenueProvider, ttl time.Duration, logger *zap.Logger) *RedisRevenueCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRevenueCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger.Named("revenue-cache"),
	}
}

// GetPropertyRevenue returns the cached revenue or delegates to the
// underlying provider and caches the result
func (c *RedisRevenueCache) GetPropertyRevenue(ctx context.Context, propertyID uuid.UUID, period allocation.CompetencyPeriod) (valueobject.Money, error) {
	key := revenueKey(propertyID, period)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if minor, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
			return valueobject.NewMoney(minor, valueobject.DefaultCurrency)
		}
		c.logger.Warn("Discarding malformed cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Revenue cache read failed", zap.String("key", key), zap.Error(err))
	}

	revenue, err := c.next.GetPropertyRevenue(ctx, propertyID, period)
	if err != nil {
		return valueobject.Money{}, err
	}

	value := strconv.FormatInt(revenue.MinorUnits(), 10)
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("Revenue cache write failed", zap.String("key", key), zap.Error(err))
	}
	return revenue, nil
}

func revenueKey(propertyID uuid.UUID, period allocation.CompetencyPeriod) string {
	return fmt.Sprintf("%s%s:%s:%s",
		revenueKeyPrefix,
		propertyID,
		period.Start.Format("2006-01-02"),
		period.End.Format("2006-01-02"))
}

// NewRedisClient creates a Redis client and verifies the connection
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
