package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/flyticket/flyticket/config"
	"github.com/flyticket/flyticket/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Minute)
	require.NotNil(t, c)
	assert.Equal(t, time.Minute, c.flightsTTL)
	assert.Equal(t, 10*time.Minute, c.citiesTTL)
	assert.NoError(t, c.Close())
}

func TestRedisCache_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	c := NewRedisCacheWithClient(client, time.Minute)
	defer c.Close()

	flights, err := c.GetFlights(context.Background())
	assert.Error(t, err)
	assert.Nil(t, flights)

	_, err = c.FlightsVersion(context.Background())
	assert.Error(t, err)
	assert.Error(t, c.InvalidateFlights(context.Background()))
}

func testCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("FLYTICKET_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FLYTICKET_TEST_REDIS_ADDR not set")
	}
	c := NewRedisCache(config.RedisConfig{Addr: addr}, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))
	return c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	require.NoError(t, c.InvalidateFlights(ctx))
	require.NoError(t, c.InvalidateCities(ctx))

	miss, err := c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, miss)

	dep := time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC)
	version, err := c.FlightsVersion(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetFlights(ctx, []domain.Flight{{ID: 1, Code: "TK1", DepartureTime: dep, SeatsTotal: 100, SeatsAvailable: 99}}, version))
	hit, err := c.GetFlights(ctx)
	require.NoError(t, err)
	require.Len(t, hit, 1)
	assert.Equal(t, "TK1", hit[0].Code)
	assert.True(t, dep.Equal(hit[0].DepartureTime))

	cityVersion, err := c.CitiesVersion(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetCities(ctx, []domain.City{{ID: 6, Code: "06", Name: "Ankara"}}, cityVersion))
	cities, err := c.GetCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ankara", cities[0].Name)

	require.NoError(t, c.InvalidateFlights(ctx))
	miss, err = c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestRedisCache_SetAfterInvalidateIsDropped(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	require.NoError(t, c.InvalidateFlights(ctx))

	// A reader loads the list, then a ticket issue invalidates before it writes back.
	before, err := c.FlightsVersion(ctx)
	require.NoError(t, err)
	require.NoError(t, c.InvalidateFlights(ctx))
	require.NoError(t, c.SetFlights(ctx, []domain.Flight{{ID: 1, Code: "TK1", SeatsAvailable: 5}}, before))

	miss, err := c.GetFlights(ctx)
	require.NoError(t, err)
	assert.Nil(t, miss)

	after, err := c.FlightsVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
	require.NoError(t, c.SetFlights(ctx, []domain.Flight{{ID: 1, Code: "TK1", SeatsAvailable: 4}}, after))
	hit, err := c.GetFlights(ctx)
	require.NoError(t, err)
	require.Len(t, hit, 1)
	assert.Equal(t, 4, hit[0].SeatsAvailable)
}
