package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps the Redis connection.
type Client struct {
	rdb *goredis.Client
}

// NewClient connects to Redis with retry.
func NewClient(addr string) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err == nil {
			cancel()
			log.Println("Connected to Redis")
			return &Client{rdb: rdb}, nil
		}
		cancel()
		log.Printf("Waiting for Redis... (%d/20)", i+1)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("redis: failed to connect after 20 attempts")
}

// SetDriverPosition stores a driver's position in a Redis GEO set.
func (c *Client) SetDriverPosition(ctx context.Context, driverID string, lat, lng float64) error {
	return c.rdb.GeoAdd(ctx, "driver:positions", &goredis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// RemoveDriverPosition removes a driver from the GEO set (e.g. when offline).
func (c *Client) RemoveDriverPosition(ctx context.Context, driverID string) error {
	return c.rdb.ZRem(ctx, "driver:positions", driverID).Err()
}

// GetNearbyDrivers returns driver IDs within radiusKm of (lat,lng).
func (c *Client) GetNearbyDrivers(ctx context.Context, lat, lng, radiusKm float64, count int) ([]string, error) {
	res, err := c.rdb.GeoSearch(ctx, "driver:positions", &goredis.GeoSearchQuery{
		Longitude:  lng,
		Latitude:   lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Count:      count,
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CacheRoleCapabilities stores a role's resolved permission set with TTL.
// The access package reads through this cache instead of re-querying the
// store inside every authorization check.
func (c *Client) CacheRoleCapabilities(ctx context.Context, roleID string, caps []string) error {
	key := "role:caps:" + roleID
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, key)
	if len(caps) > 0 {
		members := make([]any, len(caps))
		for i, p := range caps {
			members[i] = p
		}
		pipe.SAdd(ctx, key, members...)
	}
	pipe.Expire(ctx, key, 10*time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

// GetRoleCapabilities retrieves a cached capability set. A missing key
// returns an empty slice and found=false.
func (c *Client) GetRoleCapabilities(ctx context.Context, roleID string) (caps []string, found bool, err error) {
	key := "role:caps:" + roleID
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return nil, false, err
	}
	caps, err = c.rdb.SMembers(ctx, key).Result()
	return caps, err == nil, err
}

// Close tears down the Redis connection.
func (c *Client) Close() error { return c.rdb.Close() }
