// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package levelstore implements the changeset graph storage capability on
// top of a leveldb database, keyed by raw changeset id so that prefix
// lookup is an ordered key scan.
package levelstore

import (
	"context"
	"sync"

	"code.gitea.io/csgraph/modules/csgraph"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Storage stores encoded edge records in a leveldb database
type Storage struct {
	// guards check-then-put sequences; leveldb itself is already safe for
	// concurrent readers and writers
	mu sync.Mutex
	db *leveldb.DB
}

var _ csgraph.Storage = (*Storage)(nil)

// Open opens (or creates) a leveldb-backed storage at the given path
func Open(path string) (*Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Add persists one edge record, returning false if already present
func (s *Storage) Add(_ context.Context, edges *csgraph.ChangesetEdges) (bool, error) {
	key := edges.Node.ID
	s.mu.Lock()
	defer s.mu.Unlock()
	has, err := s.db.Has(key[:], nil)
	if err != nil || has {
		return false, err
	}
	return true, s.db.Put(key[:], csgraph.EncodeEdges(edges), nil)
}

// AddMany persists a batch of edge records, returning the number newly inserted
func (s *Storage) AddMany(_ context.Context, many []*csgraph.ChangesetEdges) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := new(leveldb.Batch)
	added := 0
	for _, edges := range many {
		key := edges.Node.ID
		has, err := s.db.Has(key[:], nil)
		if err != nil {
			return 0, err
		}
		if has {
			continue
		}
		batch.Put(key[:], csgraph.EncodeEdges(edges))
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.db.Write(batch, nil)
}

// FetchEdges returns the edges of a changeset, or nil if never added
func (s *Storage) FetchEdges(_ context.Context, id csgraph.ChangesetID) (*csgraph.ChangesetEdges, error) {
	data, err := s.db.Get(id[:], nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return csgraph.DecodeEdges(data)
}

// FetchEdgesRequired returns the edges of a changeset, failing if never added
func (s *Storage) FetchEdgesRequired(ctx context.Context, id csgraph.ChangesetID) (*csgraph.ChangesetEdges, error) {
	edges, err := s.FetchEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	if edges == nil {
		return nil, csgraph.ErrChangesetNotExist{ID: id}
	}
	return edges, nil
}

// FetchManyEdges returns the edges of all given changesets that exist
func (s *Storage) FetchManyEdges(ctx context.Context, ids []csgraph.ChangesetID, prefetch csgraph.Prefetch) (map[csgraph.ChangesetID]*csgraph.ChangesetEdges, error) {
	found := make(map[csgraph.ChangesetID]*csgraph.ChangesetEdges, len(ids))
	for _, id := range ids {
		edges, err := s.FetchEdges(ctx, id)
		if err != nil {
			return nil, err
		}
		if edges == nil {
			continue
		}
		found[id] = edges
		next := prefetchTarget(edges, prefetch)
		if next == nil {
			continue
		}
		if _, ok := found[next.ID]; ok {
			continue
		}
		nextEdges, err := s.FetchEdges(ctx, next.ID)
		if err != nil {
			return nil, err
		}
		if nextEdges != nil {
			found[next.ID] = nextEdges
		}
	}
	return found, nil
}

func prefetchTarget(edges *csgraph.ChangesetEdges, prefetch csgraph.Prefetch) *csgraph.ChangesetNode {
	switch prefetch {
	case csgraph.PrefetchFirstParents:
		return edges.FirstParent()
	case csgraph.PrefetchSkewAncestors:
		if edges.SkipTreeSkewAncestor != nil {
			return edges.SkipTreeSkewAncestor
		}
		return edges.SkipTreeParent
	}
	return nil
}

// FindByPrefix returns up to limit ids starting with the prefix, in key order
func (s *Storage) FindByPrefix(_ context.Context, prefix csgraph.IDPrefix, limit int) ([]csgraph.ChangesetID, error) {
	start, end, err := prefix.ByteRange()
	if err != nil {
		return nil, err
	}
	iter := s.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	defer iter.Release()

	var matches []csgraph.ChangesetID
	for iter.Next() {
		if limit >= 0 && len(matches) >= limit {
			break
		}
		id, err := csgraph.NewID(iter.Key())
		if err != nil {
			return nil, err
		}
		if prefix.Matches(id) { // odd-length prefixes cover half a key byte
			matches = append(matches, id)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return matches, nil
}
