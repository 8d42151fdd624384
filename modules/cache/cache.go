// Copyright 2017 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cache wires the adapters used for the two cache tiers into the
// go-chi cache registry, so that a tier can be picked by adapter name and
// connection string.
package cache

import (
	mc "gitea.com/go-chi/cache"

	_ "gitea.com/go-chi/cache/memcache" // memcache plugin for cache
)

// Options are the settings a single cache adapter is constructed from
type Options struct {
	Adapter  string
	Conn     string
	Interval int
}

// NewCache constructs a cache from the given options and verifies it is
// reachable. Known adapters are "memory", "memcache", "twoqueue" and "redis".
func NewCache(opts Options) (mc.Cache, error) {
	c, err := mc.NewCacher(mc.Options{
		Adapter:       opts.Adapter,
		AdapterConfig: opts.Conn,
		Interval:      opts.Interval,
	})
	if err != nil {
		return nil, err
	}
	if err = c.Ping(); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the key value from cache with callback when no key exists in cache
func Get[V any](c mc.Cache, key string, getFunc func() (V, error)) (V, error) {
	if c == nil {
		return getFunc()
	}

	cached := c.Get(key)
	if value, ok := cached.(V); ok {
		return value, nil
	}

	value, err := getFunc()
	if err != nil {
		return value, err
	}

	return value, c.Put(key, value, 0)
}
