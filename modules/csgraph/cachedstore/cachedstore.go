// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cachedstore wraps a changeset graph storage with a transparent
// two-tier cache: a process-local capacity-bounded tier probed first, then
// a distributed tier shared between processes, falling through to storage
// only on a full miss.
//
// Edge records are immutable once written, so entries are stored without
// expiry and never go stale. Writes pass straight through uncached; a
// record becomes cacheable the first time it is read back.
package cachedstore

import (
	"context"
	"fmt"
	"sync"

	"code.gitea.io/csgraph/modules/csgraph"
	"code.gitea.io/csgraph/modules/log"

	mc "gitea.com/go-chi/cache"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFetchChunkSize   = 100
	defaultFetchConcurrency = 10
)

// Options tune the batched fetch path and the distributed key space
type Options struct {
	// FetchChunkSize is the number of ids resolved per storage round-trip
	// when a batched fetch misses the caches
	FetchChunkSize int
	// FetchConcurrency bounds how many chunks are fetched in parallel
	FetchConcurrency int
	// SiteVersion distinguishes deployments whose cached records must not
	// be mixed even though they run the same code
	SiteVersion uint32
}

// CachingStorage is a csgraph.Storage decorator adding the two cache tiers.
// It preserves the read semantics of the storage it wraps.
type CachingStorage struct {
	storage     csgraph.Storage
	repoID      string
	local       mc.Cache
	distributed mc.Cache
	opts        Options
}

var _ csgraph.Storage = (*CachingStorage)(nil)

// New creates a caching decorator around storage. local must be set; a nil
// distributed tier disables the second level.
func New(storage csgraph.Storage, repoID string, local, distributed mc.Cache, opts Options) *CachingStorage {
	if opts.FetchChunkSize <= 0 {
		opts.FetchChunkSize = defaultFetchChunkSize
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = defaultFetchConcurrency
	}
	return &CachingStorage{
		storage:     storage,
		repoID:      repoID,
		local:       local,
		distributed: distributed,
		opts:        opts,
	}
}

// cacheKey spans the keyspace repo_id.cs_id, tagged with the encoding code
// version and the deployment site version so incompatible deployments never
// share entries.
func (c *CachingStorage) cacheKey(id csgraph.ChangesetID) string {
	return fmt.Sprintf("csgraph:v%d.%d:%s.%s", csgraph.EncodingVersion, c.opts.SiteVersion, c.repoID, id)
}

func cachedBytes(v any) ([]byte, bool) {
	switch v := v.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	}
	return nil, false
}

// probe looks an id up in both cache tiers, promoting distributed hits into
// the local tier. A decode failure is treated as a miss.
func (c *CachingStorage) probe(id csgraph.ChangesetID) *csgraph.ChangesetEdges {
	key := c.cacheKey(id)
	if data, ok := cachedBytes(c.local.Get(key)); ok {
		edges, err := csgraph.DecodeEdges(data)
		if err == nil {
			log.Trace("changeset edges cache hit level 1: [%s]", id)
			return edges
		}
		log.Warn("discarding undecodable local cache entry [key: %s]: %v", key, err)
		_ = c.local.Delete(key)
	}
	if c.distributed == nil {
		return nil
	}
	if data, ok := cachedBytes(c.distributed.Get(key)); ok {
		edges, err := csgraph.DecodeEdges(data)
		if err == nil {
			log.Trace("changeset edges cache hit level 2: [%s]", id)
			_ = c.local.Put(key, data, 0)
			return edges
		}
		log.Warn("discarding undecodable distributed cache entry [key: %s]: %v", key, err)
		_ = c.distributed.Delete(key)
	}
	return nil
}

// populate stores a freshly read record in both tiers, without expiry
func (c *CachingStorage) populate(edges *csgraph.ChangesetEdges) {
	key := c.cacheKey(edges.Node.ID)
	data := csgraph.EncodeEdges(edges)
	_ = c.local.Put(key, data, 0)
	if c.distributed != nil {
		_ = c.distributed.Put(key, data, 0)
	}
}

// Add passes through to storage; the record only enters the caches once it
// is read back.
func (c *CachingStorage) Add(ctx context.Context, edges *csgraph.ChangesetEdges) (bool, error) {
	return c.storage.Add(ctx, edges)
}

// AddMany passes through to storage
func (c *CachingStorage) AddMany(ctx context.Context, edges []*csgraph.ChangesetEdges) (int, error) {
	return c.storage.AddMany(ctx, edges)
}

// FetchEdges returns the edges of a changeset, or nil if never added
func (c *CachingStorage) FetchEdges(ctx context.Context, id csgraph.ChangesetID) (*csgraph.ChangesetEdges, error) {
	if edges := c.probe(id); edges != nil {
		return edges, nil
	}
	edges, err := c.storage.FetchEdges(ctx, id)
	if err != nil || edges == nil {
		return nil, err
	}
	c.populate(edges)
	return edges, nil
}

// FetchEdgesRequired returns the edges of a changeset, failing with
// ErrChangesetNotExist if it was never added. It populates the caches
// exactly like FetchEdges.
func (c *CachingStorage) FetchEdgesRequired(ctx context.Context, id csgraph.ChangesetID) (*csgraph.ChangesetEdges, error) {
	edges, err := c.FetchEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	if edges == nil {
		return nil, csgraph.ErrChangesetNotExist{ID: id}
	}
	return edges, nil
}

// FetchManyEdges resolves a batch of ids through the caches, then fetches
// the misses from storage in bounded-parallel chunks. Prefetched extras
// returned by storage are cached as well.
func (c *CachingStorage) FetchManyEdges(ctx context.Context, ids []csgraph.ChangesetID, prefetch csgraph.Prefetch) (map[csgraph.ChangesetID]*csgraph.ChangesetEdges, error) {
	found := make(map[csgraph.ChangesetID]*csgraph.ChangesetEdges, len(ids))
	var misses []csgraph.ChangesetID
	for _, id := range ids {
		if _, ok := found[id]; ok {
			continue
		}
		if edges := c.probe(id); edges != nil {
			found[id] = edges
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return found, nil
	}

	var mu sync.Mutex
	eg, groupCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.opts.FetchConcurrency)
	for chunk := range chunks(misses, c.opts.FetchChunkSize) {
		eg.Go(func() error {
			stored, err := c.storage.FetchManyEdges(groupCtx, chunk, prefetch)
			if err != nil {
				return err
			}
			for _, edges := range stored {
				c.populate(edges)
			}
			mu.Lock()
			defer mu.Unlock()
			for id, edges := range stored {
				found[id] = edges
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

// FindByPrefix passes through to storage; prefix scans are not cached
func (c *CachingStorage) FindByPrefix(ctx context.Context, prefix csgraph.IDPrefix, limit int) ([]csgraph.ChangesetID, error) {
	return c.storage.FindByPrefix(ctx, prefix, limit)
}

func chunks(ids []csgraph.ChangesetID, size int) func(yield func([]csgraph.ChangesetID) bool) {
	return func(yield func([]csgraph.ChangesetID) bool) {
		for len(ids) > 0 {
			n := min(size, len(ids))
			if !yield(ids[:n]) {
				return
			}
			ids = ids[n:]
		}
	}
}
