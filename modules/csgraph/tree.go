// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// treeView selects which of the two auxiliary spanning trees an ancestor
// walk follows, so that the skew ancestor, level ancestor and LCA
// algorithms are written once and shared by both trees.
type treeView interface {
	parent(e *ChangesetEdges) *ChangesetNode
	skewAncestor(e *ChangesetEdges) *ChangesetNode
	depth(n ChangesetNode) uint64
	prefetch() Prefetch
}

type skipTree struct{}

func (skipTree) parent(e *ChangesetEdges) *ChangesetNode       { return e.SkipTreeParent }
func (skipTree) skewAncestor(e *ChangesetEdges) *ChangesetNode { return e.SkipTreeSkewAncestor }
func (skipTree) depth(n ChangesetNode) uint64                  { return n.SkipTreeDepth }
func (skipTree) prefetch() Prefetch                            { return PrefetchSkewAncestors }

type p1LinearTree struct{}

func (p1LinearTree) parent(e *ChangesetEdges) *ChangesetNode       { return e.FirstParent() }
func (p1LinearTree) skewAncestor(e *ChangesetEdges) *ChangesetNode { return e.P1LinearSkewAncestor }
func (p1LinearTree) depth(n ChangesetNode) uint64                  { return n.P1LinearDepth }
func (p1LinearTree) prefetch() Prefetch                            { return PrefetchFirstParents }

// edgeFetcher abstracts where edge records are resolved from during a walk:
// plain storage for queries, batch-then-storage during edge construction.
type edgeFetcher interface {
	fetch(ctx context.Context, id ChangesetID) (*ChangesetEdges, error)
}

// storageFetcher resolves edges one at a time through the batched fetch
// path, passing the walk's prefetch hint so a caching storage can warm its
// tiers one hop ahead of the walk.
type storageFetcher struct {
	storage  Storage
	prefetch Prefetch
}

func (f storageFetcher) fetch(ctx context.Context, id ChangesetID) (*ChangesetEdges, error) {
	found, err := f.storage.FetchManyEdges(ctx, []ChangesetID{id}, f.prefetch)
	if err != nil {
		return nil, err
	}
	edges := found[id]
	if edges == nil {
		return nil, ErrChangesetNotExist{ID: id}
	}
	return edges, nil
}

// batchFetcher resolves edges from an in-flight batch of not-yet-durable
// records before falling back to storage.
type batchFetcher struct {
	batch map[ChangesetID]*ChangesetEdges
	next  edgeFetcher
}

func (f batchFetcher) fetch(ctx context.Context, id ChangesetID) (*ChangesetEdges, error) {
	if e, ok := f.batch[id]; ok {
		return e, nil
	}
	return f.next.fetch(ctx, id)
}

// calcSkewAncestor computes the skew binary ancestor of a changeset whose
// tree parent is p. Jump lengths double while the two previous jumps are
// balanced and reset to a single hop otherwise, which keeps every ancestor
// at amortized O(log depth) jumps from the root.
func calcSkewAncestor(ctx context.Context, f edgeFetcher, t treeView, p ChangesetNode) (*ChangesetNode, error) {
	pEdges, err := f.fetch(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	ancestor := t.skewAncestor(pEdges)
	if ancestor == nil {
		return &p, nil
	}

	ancestorEdges, err := f.fetch(ctx, ancestor.ID)
	if err != nil {
		return nil, err
	}
	secondAncestor := t.skewAncestor(ancestorEdges)
	if secondAncestor == nil {
		return &p, nil
	}

	if t.depth(p)-t.depth(*ancestor) == t.depth(*ancestor)-t.depth(*secondAncestor) {
		return cloneNode(secondAncestor), nil
	}
	return &p, nil
}

// levelAncestor returns the ancestor of node at exactly targetDepth on its
// tree path to the root, jumping along skew ancestors wherever they do not
// overshoot.
func levelAncestor(ctx context.Context, f edgeFetcher, t treeView, node ChangesetNode, targetDepth uint64) (ChangesetNode, error) {
	if targetDepth > t.depth(node) {
		return ChangesetNode{}, ErrAncestorNotExist{ID: node.ID, Depth: targetDepth}
	}

	for t.depth(node) > targetDepth {
		edges, err := f.fetch(ctx, node.ID)
		if err != nil {
			return ChangesetNode{}, err
		}
		if ancestor := t.skewAncestor(edges); ancestor != nil && t.depth(*ancestor) >= targetDepth {
			node = *ancestor
			continue
		}
		parent := t.parent(edges)
		if parent == nil {
			return ChangesetNode{}, ErrInconsistentGraph{
				ID:      node.ID,
				Message: "positive tree depth but no tree parent",
			}
		}
		node = *parent
	}
	return node, nil
}

// lowestCommonAncestor returns the common ancestor of u and v within the
// chosen spanning tree. This is a tree approximation of the true DAG LCA,
// trading precision for logarithmic round-trips.
func lowestCommonAncestor(ctx context.Context, f edgeFetcher, t treeView, uID, vID ChangesetID) (ChangesetNode, error) {
	var uEdges, vEdges *ChangesetEdges
	eg, groupCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		uEdges, err = f.fetch(groupCtx, uID)
		return err
	})
	eg.Go(func() (err error) {
		vEdges, err = f.fetch(groupCtx, vID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return ChangesetNode{}, err
	}

	u, v := uEdges.Node, vEdges.Node
	if t.depth(u) < t.depth(v) {
		u, v = v, u
	}

	u, err := levelAncestor(ctx, f, t, u, t.depth(v))
	if err != nil {
		return ChangesetNode{}, err
	}

	for u.ID != v.ID {
		var ue, ve *ChangesetEdges
		eg, groupCtx := errgroup.WithContext(ctx)
		eg.Go(func() (err error) {
			ue, err = f.fetch(groupCtx, u.ID)
			return err
		})
		eg.Go(func() (err error) {
			ve, err = f.fetch(groupCtx, v.ID)
			return err
		})
		if err := eg.Wait(); err != nil {
			return ChangesetNode{}, err
		}

		uAncestor, vAncestor := t.skewAncestor(ue), t.skewAncestor(ve)
		if uAncestor != nil && vAncestor != nil && uAncestor.ID != vAncestor.ID {
			u, v = *uAncestor, *vAncestor
			continue
		}

		uParent, vParent := t.parent(ue), t.parent(ve)
		if uParent == nil || vParent == nil {
			return ChangesetNode{}, ErrNoCommonAncestor{First: uID, Second: vID}
		}
		u, v = *uParent, *vParent
	}
	return u, nil
}
