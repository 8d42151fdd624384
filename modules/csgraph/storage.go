// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

import (
	"context"
)

// Prefetch hints a batched fetch to eagerly return edges one hop further
// along the named pointer, amortizing storage round-trips during tree walks.
type Prefetch int

const (
	// PrefetchNone returns exactly the requested edges
	PrefetchNone Prefetch = iota
	// PrefetchFirstParents additionally returns each found changeset's first parent's edges
	PrefetchFirstParents
	// PrefetchSkewAncestors additionally returns each found changeset's skip tree
	// skew ancestor's edges (falling back to the skip tree parent)
	PrefetchSkewAncestors
)

// Storage is the persistence capability the graph engine reads and writes
// through. Any key-value-capable backend can implement it.
//
// Records are immutable once written, so implementations never need
// read-modify-write cycles: a concurrent reader sees either a complete
// record or nothing. Implementations must be safe for concurrent use.
type Storage interface {
	// Add persists one edge record. It returns false without error when the
	// changeset is already present.
	Add(ctx context.Context, edges *ChangesetEdges) (bool, error)

	// AddMany persists a batch of edge records and returns how many were
	// newly inserted.
	AddMany(ctx context.Context, edges []*ChangesetEdges) (int, error)

	// FetchEdges returns the edges of a changeset, or nil if it was never
	// added.
	FetchEdges(ctx context.Context, id ChangesetID) (*ChangesetEdges, error)

	// FetchEdgesRequired returns the edges of a changeset and fails with
	// ErrChangesetNotExist if it was never added.
	FetchEdgesRequired(ctx context.Context, id ChangesetID) (*ChangesetEdges, error)

	// FetchManyEdges returns the edges of all the given changesets that
	// exist, keyed by id. Absent ids are simply missing from the result.
	// The prefetch hint may cause extra edges to be present.
	FetchManyEdges(ctx context.Context, ids []ChangesetID, prefetch Prefetch) (map[ChangesetID]*ChangesetEdges, error)

	// FindByPrefix returns up to limit ids starting with the given prefix,
	// in lexicographic order.
	FindByPrefix(ctx context.Context, prefix IDPrefix, limit int) ([]ChangesetID, error)
}
