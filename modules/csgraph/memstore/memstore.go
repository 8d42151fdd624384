// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package memstore provides an in-memory implementation of the changeset
// graph storage capability, used in tests and for small embedded graphs.
package memstore

import (
	"context"
	"sort"
	"sync"

	"code.gitea.io/csgraph/modules/csgraph"
)

// Storage keeps all edge records in a map. It is safe for concurrent use.
type Storage struct {
	mu    sync.RWMutex
	edges map[csgraph.ChangesetID]*csgraph.ChangesetEdges
}

var _ csgraph.Storage = (*Storage)(nil)

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{edges: make(map[csgraph.ChangesetID]*csgraph.ChangesetEdges)}
}

// Add persists one edge record, returning false if already present
func (s *Storage) Add(_ context.Context, edges *csgraph.ChangesetEdges) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[edges.Node.ID]; ok {
		return false, nil
	}
	s.edges[edges.Node.ID] = edges.Clone()
	return true, nil
}

// AddMany persists a batch of edge records, returning the number newly inserted
func (s *Storage) AddMany(_ context.Context, many []*csgraph.ChangesetEdges) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, edges := range many {
		if _, ok := s.edges[edges.Node.ID]; ok {
			continue
		}
		s.edges[edges.Node.ID] = edges.Clone()
		added++
	}
	return added, nil
}

// FetchEdges returns the edges of a changeset, or nil if never added
func (s *Storage) FetchEdges(_ context.Context, id csgraph.ChangesetID) (*csgraph.ChangesetEdges, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edges[id].Clone(), nil
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
func (s *Storage) FetchManyEdges(_ context.Context, ids []csgraph.ChangesetID, prefetch csgraph.Prefetch) (map[csgraph.ChangesetID]*csgraph.ChangesetEdges, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[csgraph.ChangesetID]*csgraph.ChangesetEdges, len(ids))
	for _, id := range ids {
		edges, ok := s.edges[id]
		if !ok {
			continue
		}
		found[id] = edges.Clone()
		if next := prefetchTarget(edges, prefetch); next != nil {
			if nextEdges, ok := s.edges[next.ID]; ok {
				found[next.ID] = nextEdges.Clone()
			}
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

// FindByPrefix returns up to limit ids starting with the prefix, ordered
func (s *Storage) FindByPrefix(_ context.Context, prefix csgraph.IDPrefix, limit int) ([]csgraph.ChangesetID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []csgraph.ChangesetID
	for id := range s.edges {
		if prefix.Matches(id) {
			matches = append(matches, id)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].String() < matches[j].String()
	})
	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
