// Copyright 2019 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package setting

import (
	"strings"

	"code.gitea.io/csgraph/modules/log"

	"gopkg.in/ini.v1"
)

// Cache represents the settings of one cache tier
type Cache struct {
	Adapter  string
	Interval int
	Conn     string
}

// CsGraphService holds the settings of the changeset graph service: the two
// cache tiers wrapped around edge storage, the batching limits of cached
// reads and the site version stamped into distributed cache keys.
type CsGraphService struct {
	Local       Cache
	Distributed Cache

	FetchChunkSize   int
	FetchConcurrency int
	SiteVersion      uint32
}

func loadCsGraphFrom(cfg *ini.File) (*CsGraphService, error) {
	svc := &CsGraphService{
		Local: Cache{
			Adapter:  "twoqueue",
			Interval: 60,
		},
		Distributed: Cache{
			Adapter: "",
		},
		FetchChunkSize:   100,
		FetchConcurrency: 10,
	}

	sec := cfg.Section("cache")
	svc.Local.Adapter = sec.Key("ADAPTER").In("twoqueue", []string{"memory", "twoqueue"})
	svc.Local.Interval = sec.Key("INTERVAL").MustInt(60)
	svc.Local.Conn = strings.Trim(sec.Key("HOST").String(), "\" ")

	sec = cfg.Section("cache.distributed")
	svc.Distributed.Adapter = sec.Key("ADAPTER").In("", []string{"", "redis", "memcache"})
	switch svc.Distributed.Adapter {
	case "redis", "memcache":
		svc.Distributed.Conn = strings.Trim(sec.Key("HOST").String(), "\" ")
	case "": // no distributed tier
	}

	sec = cfg.Section("csgraph")
	svc.FetchChunkSize = sec.Key("FETCH_CHUNK_SIZE").MustInt(100)
	svc.FetchConcurrency = sec.Key("FETCH_CONCURRENCY").MustInt(10)
	svc.SiteVersion = uint32(sec.Key("CACHE_SITE_VERSION").MustUint(0))

	if svc.Distributed.Adapter != "" {
		log.Info("Distributed changeset graph cache enabled: %s", svc.Distributed.Adapter)
	}
	return svc, nil
}
