// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEdges(t *testing.T) {
	nodePtr := func(n ChangesetNode) *ChangesetNode { return &n }
	node := func(b byte, gen, skip, p1 uint64) ChangesetNode {
		var id ChangesetID
		for i := range id {
			id[i] = b
		}
		return ChangesetNode{ID: id, Generation: gen, SkipTreeDepth: skip, P1LinearDepth: p1}
	}

	edges := &ChangesetEdges{
		Node: node(1, 700, 12, 699),
		Parents: []ChangesetNode{
			node(2, 699, 11, 698),
			node(3, 400, 9, 32),
		},
		SkipTreeParent:       nodePtr(node(4, 100, 11, 90)),
		SkipTreeSkewAncestor: nodePtr(node(5, 50, 4, 40)),
		P1LinearSkewAncestor: nodePtr(node(6, 640, 10, 639)),
	}

	data := EncodeEdges(edges)
	decoded, err := DecodeEdges(data)
	require.NoError(t, err)
	assert.Equal(t, edges, decoded)

	// a root record with nothing optional
	root := &ChangesetEdges{Node: node(9, 0, 0, 0)}
	decoded, err = DecodeEdges(EncodeEdges(root))
	require.NoError(t, err)
	assert.Equal(t, root, decoded)

	// a single-parent record carries its merge ancestor
	child := &ChangesetEdges{
		Node:                 node(8, 1, 1, 1),
		Parents:              []ChangesetNode{node(9, 0, 0, 0)},
		MergeAncestor:        nodePtr(node(9, 0, 0, 0)),
		SkipTreeParent:       nodePtr(node(9, 0, 0, 0)),
		SkipTreeSkewAncestor: nodePtr(node(9, 0, 0, 0)),
		P1LinearSkewAncestor: nodePtr(node(9, 0, 0, 0)),
	}
	decoded, err = DecodeEdges(EncodeEdges(child))
	require.NoError(t, err)
	assert.Equal(t, child, decoded)
}

func TestDecodeEdgesMalformed(t *testing.T) {
	edges := &ChangesetEdges{Node: ChangesetNode{ID: MustIDFromString("deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"), Generation: 3, SkipTreeDepth: 3, P1LinearDepth: 3}}
	data := EncodeEdges(edges)

	for name, corrupted := range map[string][]byte{
		"empty":            {},
		"unknown version":  append([]byte{0xfe}, data[1:]...),
		"truncated":        data[:len(data)-3],
		"trailing garbage": append(append([]byte{}, data...), 0x00),
	} {
		_, err := DecodeEdges(corrupted)
		assert.ErrorIs(t, err, ErrMalformedEdges, name)
	}
}
