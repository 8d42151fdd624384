// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

import (
	"context"
)

// buildEdges computes the full edge record for a new changeset from its
// ordered graph parents. Parents are resolved from the batch of sibling
// records queued in the same add call first, then from storage; a parent
// found in neither fails with ErrParentNotExist. A merge whose parents
// share no skip-tree ancestor gets no skip tree parent and becomes a new
// skip tree root.
func buildEdges(ctx context.Context, storage Storage, id ChangesetID, parents []ChangesetID, batch map[ChangesetID]*ChangesetEdges) (*ChangesetEdges, error) {
	parentEdges := make([]*ChangesetEdges, len(parents))
	var missing []ChangesetID
	for i, p := range parents {
		if e, ok := batch[p]; ok {
			parentEdges[i] = e
		} else {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		stored, err := storage.FetchManyEdges(ctx, missing, PrefetchNone)
		if err != nil {
			return nil, err
		}
		for i, p := range parents {
			if parentEdges[i] == nil {
				parentEdges[i] = stored[p]
			}
			if parentEdges[i] == nil {
				return nil, ErrParentNotExist{ID: id, Parent: p}
			}
		}
	}

	node := ChangesetNode{ID: id}
	edges := &ChangesetEdges{}
	fetcher := batchFetcher{batch: batch, next: storageFetcher{storage: storage}}

	for _, pe := range parentEdges {
		if pe.Node.Generation+1 > node.Generation {
			node.Generation = pe.Node.Generation + 1
		}
		edges.Parents = append(edges.Parents, pe.Node)
	}

	if len(parentEdges) > 0 {
		node.P1LinearDepth = parentEdges[0].Node.P1LinearDepth + 1
	}

	switch len(parentEdges) {
	case 0:
	case 1:
		edges.SkipTreeParent = cloneNode(&parentEdges[0].Node)
	default:
		ancestor := cloneNode(&parentEdges[0].Node)
		for _, pe := range parentEdges[1:] {
			a, err := lowestCommonAncestor(ctx, fetcher, skipTree{}, ancestor.ID, pe.Node.ID)
			if err != nil {
				if IsErrNoCommonAncestor(err) {
					// merging unrelated histories: the merge becomes a new
					// skip tree root
					ancestor = nil
					break
				}
				return nil, err
			}
			ancestor = &a
		}
		edges.SkipTreeParent = ancestor
	}
	if edges.SkipTreeParent != nil {
		node.SkipTreeDepth = edges.SkipTreeParent.SkipTreeDepth + 1
	}

	if len(parentEdges) == 1 {
		p := parentEdges[0]
		if p.MergeAncestor != nil {
			edges.MergeAncestor = cloneNode(p.MergeAncestor)
		} else {
			edges.MergeAncestor = cloneNode(&p.Node)
		}
	}

	edges.Node = node

	if edges.SkipTreeParent != nil {
		ancestor, err := calcSkewAncestor(ctx, fetcher, skipTree{}, *edges.SkipTreeParent)
		if err != nil {
			return nil, err
		}
		edges.SkipTreeSkewAncestor = ancestor
	}
	if p1Parent := edges.FirstParent(); p1Parent != nil {
		ancestor, err := calcSkewAncestor(ctx, fetcher, p1LinearTree{}, *p1Parent)
		if err != nil {
			return nil, err
		}
		edges.P1LinearSkewAncestor = ancestor
	}

	return edges, nil
}
