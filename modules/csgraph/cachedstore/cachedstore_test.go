// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cachedstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"code.gitea.io/csgraph/modules/csgraph"
	"code.gitea.io/csgraph/modules/csgraph/memstore"

	mc "gitea.com/go-chi/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is a deterministic in-memory mc.Cache for tests
type fakeCache struct {
	mu   sync.Mutex
	data map[string]any
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]any)}
}

func (c *fakeCache) Put(key string, val any, timeout int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	return nil
}

func (c *fakeCache) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key]
}

func (c *fakeCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Incr(key string) error { return nil }
func (c *fakeCache) Decr(key string) error { return nil }

func (c *fakeCache) IsExist(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *fakeCache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]any)
	return nil
}

func (c *fakeCache) StartAndGC(opt mc.Options) error { return nil }
func (c *fakeCache) Ping() error                     { return nil }

// countingStorage counts read calls that actually reach the backend
type countingStorage struct {
	csgraph.Storage
	fetches atomic.Int64
}

func (s *countingStorage) FetchEdges(ctx context.Context, id csgraph.ChangesetID) (*csgraph.ChangesetEdges, error) {
	s.fetches.Add(1)
	return s.Storage.FetchEdges(ctx, id)
}

func (s *countingStorage) FetchManyEdges(ctx context.Context, ids []csgraph.ChangesetID, prefetch csgraph.Prefetch) (map[csgraph.ChangesetID]*csgraph.ChangesetEdges, error) {
	s.fetches.Add(1)
	return s.Storage.FetchManyEdges(ctx, ids, prefetch)
}

func testID(n int) csgraph.ChangesetID {
	var id csgraph.ChangesetID
	for i := range id {
		id[i] = byte(n + i)
	}
	return id
}

// newTestStore returns a caching storage over a chain of count changesets
func newTestStore(t *testing.T, count int) (*CachingStorage, *countingStorage, *fakeCache, *fakeCache) {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()
	g := csgraph.NewCommitGraph(mem)
	var parents []csgraph.ChangesetID
	for i := range count {
		added, err := g.AddChangeset(ctx, testID(i), parents)
		require.NoError(t, err)
		require.True(t, added)
		parents = []csgraph.ChangesetID{testID(i)}
	}

	counting := &countingStorage{Storage: mem}
	local, distributed := newFakeCache(), newFakeCache()
	return New(counting, "repo1", local, distributed, Options{}), counting, local, distributed
}

func TestFetchPopulatesBothTiers(t *testing.T) {
	ctx := context.Background()
	store, counting, local, distributed := newTestStore(t, 3)

	edges, err := store.FetchEdges(ctx, testID(2))
	require.NoError(t, err)
	require.NotNil(t, edges)
	assert.EqualValues(t, 1, counting.fetches.Load())
	key := store.cacheKey(testID(2))
	assert.True(t, local.IsExist(key))
	assert.True(t, distributed.IsExist(key))

	// the second fetch is served from cache, byte-identical
	again, err := store.FetchEdges(ctx, testID(2))
	require.NoError(t, err)
	assert.EqualValues(t, 1, counting.fetches.Load())
	assert.Equal(t, csgraph.EncodeEdges(edges), csgraph.EncodeEdges(again))
}

func TestDistributedHitRepopulatesLocal(t *testing.T) {
	ctx := context.Background()
	store, counting, local, _ := newTestStore(t, 3)

	_, err := store.FetchEdges(ctx, testID(1))
	require.NoError(t, err)
	require.NoError(t, local.Flush())

	_, err = store.FetchEdges(ctx, testID(1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, counting.fetches.Load())
	assert.True(t, local.IsExist(store.cacheKey(testID(1))))
}

func TestRequiredAndOptionalFetchShareCache(t *testing.T) {
	ctx := context.Background()
	store, counting, _, _ := newTestStore(t, 3)

	_, err := store.FetchEdgesRequired(ctx, testID(0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, counting.fetches.Load())

	edges, err := store.FetchEdges(ctx, testID(0))
	require.NoError(t, err)
	require.NotNil(t, edges)
	assert.EqualValues(t, 1, counting.fetches.Load())

	// absent ids resolve per variant but are never cached as present
	missing := testID(99)
	edges, err = store.FetchEdges(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, edges)
	_, err = store.FetchEdgesRequired(ctx, missing)
	assert.True(t, csgraph.IsErrChangesetNotExist(err))
}

func TestFetchManyEdges(t *testing.T) {
	ctx := context.Background()
	store, counting, _, _ := newTestStore(t, 10)

	// warm two entries
	_, err := store.FetchEdges(ctx, testID(1))
	require.NoError(t, err)
	_, err = store.FetchEdges(ctx, testID(2))
	require.NoError(t, err)
	warmFetches := counting.fetches.Load()

	ids := make([]csgraph.ChangesetID, 0, 10)
	for i := range 10 {
		ids = append(ids, testID(i))
	}
	found, err := store.FetchManyEdges(ctx, ids, csgraph.PrefetchNone)
	require.NoError(t, err)
	assert.Len(t, found, 10)
	assert.Greater(t, counting.fetches.Load(), warmFetches)

	// everything is now cached, including the former misses
	fetchesBefore := counting.fetches.Load()
	found, err = store.FetchManyEdges(ctx, ids, csgraph.PrefetchNone)
	require.NoError(t, err)
	assert.Len(t, found, 10)
	assert.EqualValues(t, fetchesBefore, counting.fetches.Load())
}

func TestFetchManyPrefetchWarmsCache(t *testing.T) {
	ctx := context.Background()
	store, counting, local, _ := newTestStore(t, 5)

	_, err := store.FetchManyEdges(ctx, []csgraph.ChangesetID{testID(4)}, csgraph.PrefetchFirstParents)
	require.NoError(t, err)

	// the parent came back with the prefetch and was cached as well
	assert.True(t, local.IsExist(store.cacheKey(testID(3))))
	fetchesBefore := counting.fetches.Load()
	_, err = store.FetchEdges(ctx, testID(3))
	require.NoError(t, err)
	assert.EqualValues(t, fetchesBefore, counting.fetches.Load())
}

func TestWritesPassThrough(t *testing.T) {
	ctx := context.Background()
	store, _, local, distributed := newTestStore(t, 2)

	edges, err := store.FetchEdges(ctx, testID(1))
	require.NoError(t, err)
	child := &csgraph.ChangesetEdges{
		Node: csgraph.ChangesetNode{
			ID:            testID(7),
			Generation:    edges.Node.Generation + 1,
			SkipTreeDepth: edges.Node.SkipTreeDepth + 1,
			P1LinearDepth: edges.Node.P1LinearDepth + 1,
		},
		Parents:        []csgraph.ChangesetNode{edges.Node},
		SkipTreeParent: &edges.Node,
	}
	added, err := store.Add(ctx, child)
	require.NoError(t, err)
	require.True(t, added)

	// not cached until read back
	key := store.cacheKey(testID(7))
	assert.False(t, local.IsExist(key))
	assert.False(t, distributed.IsExist(key))

	_, err = store.FetchEdges(ctx, testID(7))
	require.NoError(t, err)
	assert.True(t, local.IsExist(key))
	assert.True(t, distributed.IsExist(key))
}

func TestUndecodableEntryFallsThrough(t *testing.T) {
	ctx := context.Background()
	store, counting, local, _ := newTestStore(t, 2)

	require.NoError(t, local.Put(store.cacheKey(testID(1)), []byte("garbage"), 0))
	edges, err := store.FetchEdges(ctx, testID(1))
	require.NoError(t, err)
	require.NotNil(t, edges)
	assert.EqualValues(t, 1, counting.fetches.Load())
}
