// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cachedstore

import (
	"code.gitea.io/csgraph/modules/cache"
	"code.gitea.io/csgraph/modules/csgraph"
	"code.gitea.io/csgraph/modules/setting"

	mc "gitea.com/go-chi/cache"
)

// NewFromSettings builds the two cache tiers named by the service settings
// and wraps storage with them. The distributed tier is skipped when no
// adapter is configured.
func NewFromSettings(storage csgraph.Storage, repoID string, svc *setting.CsGraphService) (*CachingStorage, error) {
	local, err := cache.NewCache(cache.Options{
		Adapter:  svc.Local.Adapter,
		Conn:     svc.Local.Conn,
		Interval: svc.Local.Interval,
	})
	if err != nil {
		return nil, err
	}

	var distributed mc.Cache
	if svc.Distributed.Adapter != "" {
		distributed, err = cache.NewCache(cache.Options{
			Adapter:  svc.Distributed.Adapter,
			Conn:     svc.Distributed.Conn,
			Interval: svc.Distributed.Interval,
		})
		if err != nil {
			return nil, err
		}
	}

	return New(storage, repoID, local, distributed, Options{
		FetchChunkSize:   svc.FetchChunkSize,
		FetchConcurrency: svc.FetchConcurrency,
		SiteVersion:      svc.SiteVersion,
	}), nil
}
