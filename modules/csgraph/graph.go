// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package csgraph maintains the changeset ancestry index of a repository:
// an append-only commit graph extended with generation numbers, a skip tree
// and a p1-linear tree, answering ancestor and lowest-common-ancestor
// queries in O(log depth) storage round-trips instead of walking parent
// pointers one hop at a time.
package csgraph

import (
	"context"

	"code.gitea.io/csgraph/modules/log"
)

// CommitGraph is the query and construction engine over a Storage. It keeps
// no graph state in process; every operation is a series of reads or an
// append against the storage it was constructed with.
type CommitGraph struct {
	storage Storage
}

// NewCommitGraph creates an engine over the given storage, which is
// typically a cachedstore.CachingStorage wrapping the durable backend.
func NewCommitGraph(storage Storage) *CommitGraph {
	return &CommitGraph{storage: storage}
}

// AddChangeset adds a single changeset with its ordered parents. It returns
// false without error when the changeset is already present. All parents
// must already be durable; a missing parent fails with ErrParentNotExist.
func (g *CommitGraph) AddChangeset(ctx context.Context, id ChangesetID, parents []ChangesetID) (bool, error) {
	edges, err := buildEdges(ctx, g.storage, id, parents, nil)
	if err != nil {
		return false, err
	}
	return g.storage.Add(ctx, edges)
}

// AddRequest names one changeset of an incoming batch
type AddRequest struct {
	ID      ChangesetID
	Parents []ChangesetID
}

// AddManyChangesets adds a batch of changesets and returns how many were
// newly inserted. Requests must be ordered parents-first within the batch;
// parents outside the batch must already be durable.
func (g *CommitGraph) AddManyChangesets(ctx context.Context, requests []AddRequest) (int, error) {
	batch := make(map[ChangesetID]*ChangesetEdges, len(requests))
	many := make([]*ChangesetEdges, 0, len(requests))
	for _, req := range requests {
		if _, ok := batch[req.ID]; ok {
			continue
		}
		edges, err := buildEdges(ctx, g.storage, req.ID, req.Parents, batch)
		if err != nil {
			return 0, err
		}
		batch[req.ID] = edges
		many = append(many, edges)
	}
	added, err := g.storage.AddMany(ctx, many)
	if err != nil {
		return 0, err
	}
	log.Debug("added %d of %d changesets to the graph", added, len(many))
	return added, nil
}

// GetEdges returns the stored edges of a changeset, failing with
// ErrChangesetNotExist if it was never added.
func (g *CommitGraph) GetEdges(ctx context.Context, id ChangesetID) (*ChangesetEdges, error) {
	return g.storage.FetchEdgesRequired(ctx, id)
}

// MaybeGetEdges returns the stored edges of a changeset, or nil if it was
// never added.
func (g *CommitGraph) MaybeGetEdges(ctx context.Context, id ChangesetID) (*ChangesetEdges, error) {
	return g.storage.FetchEdges(ctx, id)
}

// ChangesetExists returns true if the changeset has been added to the graph
func (g *CommitGraph) ChangesetExists(ctx context.Context, id ChangesetID) (bool, error) {
	edges, err := g.storage.FetchEdges(ctx, id)
	if err != nil {
		return false, err
	}
	return edges != nil, nil
}

// GenerationNumber returns the longest-path distance of the changeset from
// a root.
func (g *CommitGraph) GenerationNumber(ctx context.Context, id ChangesetID) (uint64, error) {
	edges, err := g.storage.FetchEdgesRequired(ctx, id)
	if err != nil {
		return 0, err
	}
	return edges.Node.Generation, nil
}

// FindByPrefix returns up to limit changeset ids starting with the prefix
func (g *CommitGraph) FindByPrefix(ctx context.Context, prefix IDPrefix, limit int) ([]ChangesetID, error) {
	return g.storage.FindByPrefix(ctx, prefix, limit)
}

func (g *CommitGraph) levelAncestor(ctx context.Context, t treeView, id ChangesetID, depth uint64) (ChangesetNode, error) {
	fetcher := storageFetcher{storage: g.storage, prefetch: t.prefetch()}
	edges, err := fetcher.fetch(ctx, id)
	if err != nil {
		return ChangesetNode{}, err
	}
	return levelAncestor(ctx, fetcher, t, edges.Node, depth)
}

// SkipTreeLevelAncestor returns the ancestor of the changeset at exactly
// the given depth in the skip tree. Depths beyond the changeset's own fail
// with ErrAncestorNotExist.
func (g *CommitGraph) SkipTreeLevelAncestor(ctx context.Context, id ChangesetID, depth uint64) (ChangesetNode, error) {
	return g.levelAncestor(ctx, skipTree{}, id, depth)
}

// P1LinearLevelAncestor returns the ancestor of the changeset at exactly
// the given depth in the first-parent chain.
func (g *CommitGraph) P1LinearLevelAncestor(ctx context.Context, id ChangesetID, depth uint64) (ChangesetNode, error) {
	return g.levelAncestor(ctx, p1LinearTree{}, id, depth)
}

// SkipTreeLowestCommonAncestor returns the common ancestor of two
// changesets within the skip tree. Changesets in disjoint components fail
// with ErrNoCommonAncestor.
func (g *CommitGraph) SkipTreeLowestCommonAncestor(ctx context.Context, first, second ChangesetID) (ChangesetNode, error) {
	return lowestCommonAncestor(ctx, storageFetcher{storage: g.storage, prefetch: PrefetchSkewAncestors}, skipTree{}, first, second)
}

// P1LinearLowestCommonAncestor returns the common ancestor of two
// changesets within the p1-linear tree.
func (g *CommitGraph) P1LinearLowestCommonAncestor(ctx context.Context, first, second ChangesetID) (ChangesetNode, error) {
	return lowestCommonAncestor(ctx, storageFetcher{storage: g.storage, prefetch: PrefetchFirstParents}, p1LinearTree{}, first, second)
}
