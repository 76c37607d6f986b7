package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/flyticket/flyticket/config"
	"github.com/flyticket/flyticket/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Each list shares a hash tag with its version key so the conditional write
// stays on one cluster slot.
const (
	flightsKey        = "cache:{flights}"
	flightsVersionKey = "cache:{flights}:version"
	citiesKey         = "cache:{cities}"
	citiesVersionKey  = "cache:{cities}:version"
)

// setIfCurrent stores ARGV[2] under KEYS[1] only while the version in KEYS[2]
// still equals ARGV[1].
var setIfCurrent = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisCache holds read-through copies of the flight and city lists. A miss
// is reported as a nil slice with a nil error.
//
// Every invalidation bumps a version counter. Callers read the version before
// loading from the database and pass it back on write, so a list loaded
// before a concurrent change is dropped instead of outliving it.
type RedisCache struct {
	client     redis.UniversalClient
	flightsTTL time.Duration
	citiesTTL  time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), flightsTTL)
}

// NewRedisCacheWithClient wraps an existing client. Cities change only on
// seeding, so they are kept ten times longer than flights.
func NewRedisCacheWithClient(client redis.UniversalClient, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		flightsTTL: flightsTTL,
		citiesTTL:  10 * flightsTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	if err := c.get(ctx, flightsKey, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) FlightsVersion(ctx context.Context) (int64, error) {
	return c.version(ctx, flightsVersionKey)
}

// SetFlights is a no-op when the list was invalidated after version was read.
func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight, version int64) error {
	return c.set(ctx, flightsKey, flightsVersionKey, flights, c.flightsTTL, version)
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.invalidate(ctx, flightsKey, flightsVersionKey)
}

func (c *RedisCache) GetCities(ctx context.Context) ([]domain.City, error) {
	var cities []domain.City
	if err := c.get(ctx, citiesKey, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (c *RedisCache) CitiesVersion(ctx context.Context) (int64, error) {
	return c.version(ctx, citiesVersionKey)
}

func (c *RedisCache) SetCities(ctx context.Context, cities []domain.City, version int64) error {
	return c.set(ctx, citiesKey, citiesVersionKey, cities, c.citiesTTL, version)
}

func (c *RedisCache) InvalidateCities(ctx context.Context) error {
	return c.invalidate(ctx, citiesKey, citiesVersionKey)
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (c *RedisCache) version(ctx context.Context, versionKey string) (int64, error) {
	v, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisCache) set(ctx context.Context, key, versionKey string, value any, ttl time.Duration, version int64) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return setIfCurrent.Run(ctx, c.client, []string{key, versionKey},
		strconv.FormatInt(version, 10), payload, ttl.Milliseconds()).Err()
}

func (c *RedisCache) invalidate(ctx context.Context, key, versionKey string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Del(ctx, key)
		return nil
	})
	return err
}
