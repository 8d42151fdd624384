// Copyright 2020 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package nosql

import (
	"context"
	"strings"

	"code.gitea.io/csgraph/modules/log"

	"github.com/redis/go-redis/v9"
)

// CloseRedisClient closes a redis client managed by this manager
func (m *Manager) CloseRedisClient(connection string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.RedisConnections[connection]
	if !ok {
		return nil
	}

	client.count--
	if client.count > 0 {
		return nil
	}

	for _, name := range client.name {
		delete(m.RedisConnections, name)
	}
	return client.UniversalClient.Close()
}

// GetRedisClient gets a redis client for a particular connection URI and on first
// call initializes it. The URI uses the standard redis:// form, e.g.
// redis://:password@localhost:6379/0?pool_size=100
func (m *Manager) GetRedisClient(connection string) (redis.UniversalClient, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.RedisConnections[connection]
	if ok {
		client.count++
		return client, nil
	}

	opts, err := redis.ParseURL(connection)
	if err != nil {
		return nil, err
	}

	client = &redisClientHolder{
		name:  []string{connection},
		count: 1,
	}

	if strings.Contains(opts.Addr, ",") {
		client.UniversalClient = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    strings.Split(opts.Addr, ","),
			Username: opts.Username,
			Password: opts.Password,
			PoolSize: opts.PoolSize,
		})
	} else {
		client.UniversalClient = redis.NewClient(opts)
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.UniversalClient.Close()
		return nil, err
	}

	log.Debug("opened redis connection to %s", opts.Addr)
	m.RedisConnections[connection] = client
	return client, nil
}
