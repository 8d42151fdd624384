// Copyright 2021 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.gitea.io/csgraph/modules/nosql"

	mc "gitea.com/go-chi/cache"
	"github.com/redis/go-redis/v9"
)

// RedisCacher represents a redis cache adapter implementation.
type RedisCacher struct {
	c          redis.UniversalClient
	ctx        context.Context
	prefix     string
	occupyMode bool
}

var _ mc.Cache = &RedisCacher{}

// toStr convert string/int/int64/[]byte interface to string. it's only used by the RedisCacher.Put internally
func toStr(v any) string {
	if v == nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Put puts value (string type) into cache with key and expire time.
// If expired is 0, it lives forever.
func (c *RedisCacher) Put(key string, val any, expire int64) error {
	key = c.prefix + key
	if expire == 0 {
		if err := c.c.Set(c.ctx, key, toStr(val), 0).Err(); err != nil {
			return err
		}
	} else {
		dur := time.Duration(expire) * time.Second
		if err := c.c.Set(c.ctx, key, toStr(val), dur).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Get gets cached value by given key.
func (c *RedisCacher) Get(key string) any {
	val, err := c.c.Get(c.ctx, c.prefix+key).Result()
	if err != nil {
		return nil
	}
	return val
}

// Delete deletes cached value by given key.
func (c *RedisCacher) Delete(key string) error {
	return c.c.Del(c.ctx, c.prefix+key).Err()
}

// Incr increases cached int-type value by given key as a counter.
func (c *RedisCacher) Incr(key string) error {
	if !c.IsExist(key) {
		return fmt.Errorf("key '%s' not exist", key)
	}
	return c.c.Incr(c.ctx, c.prefix+key).Err()
}

// Decr decreases cached int-type value by given key as a counter.
func (c *RedisCacher) Decr(key string) error {
	if !c.IsExist(key) {
		return fmt.Errorf("key '%s' not exist", key)
	}
	return c.c.Decr(c.ctx, c.prefix+key).Err()
}

// IsExist returns true if cached value exists.
func (c *RedisCacher) IsExist(key string) bool {
	return c.c.Exists(c.ctx, c.prefix+key).Val() == 1
}

// Flush deletes all cached data.
func (c *RedisCacher) Flush() error {
	if c.occupyMode {
		return c.c.FlushDB(c.ctx).Err()
	}
	return c.deleteByPattern(c.prefix + "*")
}

func (c *RedisCacher) deleteByPattern(pattern string) error {
	iter := c.c.Scan(c.ctx, 0, pattern, 100).Iterator()
	for iter.Next(c.ctx) {
		if err := c.c.Del(c.ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// StartAndGC starts GC routine based on config string settings.
// AdapterConfig: redis://:password@localhost:6379/0?pool_size=100&idle_timeout=180s
func (c *RedisCacher) StartAndGC(opts mc.Options) error {
	if opts.AdapterConfig == "" {
		return errors.New("no redis connection string configured")
	}
	client, err := nosql.GetManager().GetRedisClient(opts.AdapterConfig)
	if err != nil {
		return err
	}
	c.c = client
	c.ctx = context.Background()
	c.prefix = "cache:"
	c.occupyMode = opts.OccupyMode
	return nil
}

// Ping tests if the cache is alive.
func (c *RedisCacher) Ping() error {
	return c.c.Ping(c.ctx).Err()
}

func init() {
	mc.Register("redis", &RedisCacher{})
}
