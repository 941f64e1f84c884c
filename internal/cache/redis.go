package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"nftmarket/internal/models"
)

const keyPrefix = "nft:"

// Client is a Storage backed by Redis, shared between client processes.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClient(addr string, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, err
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

func (c *Client) Get(ctx context.Context, id string) (models.Nft, error) {
	data, err := c.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Nft{}, ErrNotFound
	}
	if err != nil {
		return models.Nft{}, err
	}

	var nft models.Nft
	if err := json.Unmarshal(data, &nft); err != nil {
		return models.Nft{}, fmt.Errorf("decode cached nft %s: %w", id, err)
	}
	return nft, nil
}

func (c *Client) Set(ctx context.Context, nft models.Nft) error {
	data, err := json.Marshal(nft)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyPrefix+nft.ID, data, c.ttl).Err()
}

// Clear drops every cached NFT, leaving unrelated keys alone.
func (c *Client) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()

	pipe := c.rdb.Pipeline()
	n := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		n++
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
