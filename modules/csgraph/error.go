// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

import (
	"fmt"

	"code.gitea.io/csgraph/modules/util"
)

// ErrChangesetNotExist represents a query for a changeset that was never
// added to the graph.
type ErrChangesetNotExist struct {
	ID ChangesetID
}

// IsErrChangesetNotExist checks if an error is an ErrChangesetNotExist.
func IsErrChangesetNotExist(err error) bool {
	_, ok := err.(ErrChangesetNotExist)
	return ok
}

func (err ErrChangesetNotExist) Error() string {
	return fmt.Sprintf("changeset does not exist [id: %s]", err.ID)
}

func (err ErrChangesetNotExist) Unwrap() error {
	return util.ErrNotExist
}

// ErrParentNotExist is returned while building edges for a changeset whose
// parent is neither in the incoming batch nor in storage. This is a caller
// contract violation: parents must be added before their children.
type ErrParentNotExist struct {
	ID     ChangesetID
	Parent ChangesetID
}

// IsErrParentNotExist checks if an error is an ErrParentNotExist.
func IsErrParentNotExist(err error) bool {
	_, ok := err.(ErrParentNotExist)
	return ok
}

func (err ErrParentNotExist) Error() string {
	return fmt.Sprintf("missing parent while adding changeset [id: %s, parent: %s]", err.ID, err.Parent)
}

func (err ErrParentNotExist) Unwrap() error {
	return util.ErrNotExist
}

// ErrAncestorNotExist is returned by level ancestor queries whose target
// depth lies beyond the start changeset's own depth.
type ErrAncestorNotExist struct {
	ID    ChangesetID
	Depth uint64
}

// IsErrAncestorNotExist checks if an error is an ErrAncestorNotExist.
func IsErrAncestorNotExist(err error) bool {
	_, ok := err.(ErrAncestorNotExist)
	return ok
}

func (err ErrAncestorNotExist) Error() string {
	return fmt.Sprintf("changeset has no ancestor at depth [id: %s, depth: %d]", err.ID, err.Depth)
}

func (err ErrAncestorNotExist) Unwrap() error {
	return util.ErrNotExist
}

// ErrNoCommonAncestor is returned when two changesets live in disjoint
// components of the graph.
type ErrNoCommonAncestor struct {
	First  ChangesetID
	Second ChangesetID
}

// IsErrNoCommonAncestor checks if an error is an ErrNoCommonAncestor.
func IsErrNoCommonAncestor(err error) bool {
	_, ok := err.(ErrNoCommonAncestor)
	return ok
}

func (err ErrNoCommonAncestor) Error() string {
	return fmt.Sprintf("changesets have no common ancestor [first: %s, second: %s]", err.First, err.Second)
}

func (err ErrNoCommonAncestor) Unwrap() error {
	return util.ErrNotExist
}

// ErrInconsistentGraph represents stored edges that violate a structural
// invariant, e.g. a changeset at positive depth without a tree parent. It is
// fatal to the operation that found it and never retried.
type ErrInconsistentGraph struct {
	ID      ChangesetID
	Message string
}

// IsErrInconsistentGraph checks if an error is an ErrInconsistentGraph.
func IsErrInconsistentGraph(err error) bool {
	_, ok := err.(ErrInconsistentGraph)
	return ok
}

func (err ErrInconsistentGraph) Error() string {
	return fmt.Sprintf("changeset graph is inconsistent at %s: %s", err.ID, err.Message)
}
