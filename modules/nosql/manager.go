// Copyright 2020 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package nosql hands out shared nosql connections keyed by their
// connection string, so that several caches pointing at the same server
// share one client.
package nosql

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	manager     *Manager
	managerInit sync.Once
)

// Manager is the nosql connection manager
type Manager struct {
	mutex sync.Mutex

	RedisConnections map[string]*redisClientHolder
}

type redisClientHolder struct {
	redis.UniversalClient
	name  []string
	count int64
}

func (r *redisClientHolder) Close() error {
	return manager.CloseRedisClient(r.name[0])
}

// GetManager returns a Manager and initializes one as singleton if there's none yet
func GetManager() *Manager {
	managerInit.Do(func() {
		manager = &Manager{
			RedisConnections: make(map[string]*redisClientHolder),
		}
	})
	return manager
}
