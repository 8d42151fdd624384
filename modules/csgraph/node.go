// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

// ChangesetNode is the lightweight reference to a changeset carried inside
// edge records: the id plus the precomputed positions in the generation
// order and the two auxiliary trees. Nodes are compared by id only.
type ChangesetNode struct {
	ID            ChangesetID
	Generation    uint64
	SkipTreeDepth uint64
	P1LinearDepth uint64
}

// ChangesetEdges is the full per-changeset record. It is created once, when
// the changeset is added, and never modified afterwards.
//
// Besides the graph parents it stores the positions of the changeset in two
// auxiliary spanning trees:
//
//   - the skip tree, whose parent is the skip-tree lowest common ancestor of
//     all graph parents, used to accelerate ancestor and LCA queries;
//   - the p1-linear tree, which follows only first-parent edges.
//
// Each tree additionally carries a skew binary ancestor, a jump pointer that
// lets ancestor walks skip an exponentially growing number of hops.
type ChangesetEdges struct {
	Node    ChangesetNode
	Parents []ChangesetNode

	MergeAncestor        *ChangesetNode
	SkipTreeParent       *ChangesetNode
	SkipTreeSkewAncestor *ChangesetNode
	P1LinearSkewAncestor *ChangesetNode
}

// FirstParent returns the first graph parent, or nil for a root
func (e *ChangesetEdges) FirstParent() *ChangesetNode {
	if len(e.Parents) == 0 {
		return nil
	}
	return &e.Parents[0]
}

// IsRoot returns true if the changeset has no parents
func (e *ChangesetEdges) IsRoot() bool {
	return len(e.Parents) == 0
}

// IsMerge returns true if the changeset has more than one parent
func (e *ChangesetEdges) IsMerge() bool {
	return len(e.Parents) > 1
}

func cloneNode(n *ChangesetNode) *ChangesetNode {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// Clone returns a deep copy, so that callers can hand records out of a
// shared cache without aliasing.
func (e *ChangesetEdges) Clone() *ChangesetEdges {
	if e == nil {
		return nil
	}
	c := &ChangesetEdges{
		Node:                 e.Node,
		Parents:              make([]ChangesetNode, len(e.Parents)),
		MergeAncestor:        cloneNode(e.MergeAncestor),
		SkipTreeParent:       cloneNode(e.SkipTreeParent),
		SkipTreeSkewAncestor: cloneNode(e.SkipTreeSkewAncestor),
		P1LinearSkewAncestor: cloneNode(e.P1LinearSkewAncestor),
	}
	copy(c.Parents, e.Parents)
	return c
}
