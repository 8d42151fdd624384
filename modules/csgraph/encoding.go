// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// EncodingVersion is the code version of the edge record encoding. It is
// stamped into every cache key together with the deployment's site version,
// so that incompatible deployments never share cache entries.
const EncodingVersion = 1

// ErrMalformedEdges is returned by DecodeEdges when the input is truncated,
// has trailing garbage or carries an unknown version tag.
var ErrMalformedEdges = errors.New("malformed changeset edges encoding")

const (
	flagMergeAncestor = 1 << iota
	flagSkipTreeParent
	flagSkipTreeSkewAncestor
	flagP1LinearSkewAncestor
)

func encodeNode(buf *bytes.Buffer, n ChangesetNode) {
	var tmp [binary.MaxVarintLen64]byte
	buf.Write(n.ID[:])
	buf.Write(tmp[:binary.PutUvarint(tmp[:], n.Generation)])
	buf.Write(tmp[:binary.PutUvarint(tmp[:], n.SkipTreeDepth)])
	buf.Write(tmp[:binary.PutUvarint(tmp[:], n.P1LinearDepth)])
}

// EncodeEdges serializes an edge record into the compact binary form used
// for cache entries and key-value storage.
func EncodeEdges(e *ChangesetEdges) []byte {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	buf.WriteByte(EncodingVersion)

	encodeNode(&buf, e.Node)
	buf.Write(tmp[:binary.PutUvarint(tmp[:], uint64(len(e.Parents)))])
	for _, p := range e.Parents {
		encodeNode(&buf, p)
	}

	var flags byte
	if e.MergeAncestor != nil {
		flags |= flagMergeAncestor
	}
	if e.SkipTreeParent != nil {
		flags |= flagSkipTreeParent
	}
	if e.SkipTreeSkewAncestor != nil {
		flags |= flagSkipTreeSkewAncestor
	}
	if e.P1LinearSkewAncestor != nil {
		flags |= flagP1LinearSkewAncestor
	}
	buf.WriteByte(flags)

	for _, n := range []*ChangesetNode{e.MergeAncestor, e.SkipTreeParent, e.SkipTreeSkewAncestor, e.P1LinearSkewAncestor} {
		if n != nil {
			encodeNode(&buf, *n)
		}
	}
	return buf.Bytes()
}

func decodeNode(r *bytes.Reader) (ChangesetNode, error) {
	var n ChangesetNode
	if _, err := io.ReadFull(r, n.ID[:]); err != nil {
		return n, ErrMalformedEdges
	}
	var err error
	if n.Generation, err = binary.ReadUvarint(r); err != nil {
		return n, ErrMalformedEdges
	}
	if n.SkipTreeDepth, err = binary.ReadUvarint(r); err != nil {
		return n, ErrMalformedEdges
	}
	if n.P1LinearDepth, err = binary.ReadUvarint(r); err != nil {
		return n, ErrMalformedEdges
	}
	return n, nil
}

// DecodeEdges deserializes an edge record produced by EncodeEdges.
func DecodeEdges(data []byte) (*ChangesetEdges, error) {
	r := bytes.NewReader(data)
	version, err := r.ReadByte()
	if err != nil || version != EncodingVersion {
		return nil, ErrMalformedEdges
	}

	e := &ChangesetEdges{}
	if e.Node, err = decodeNode(r); err != nil {
		return nil, err
	}

	parentCount, err := binary.ReadUvarint(r)
	if err != nil || parentCount > uint64(r.Len()) {
		return nil, ErrMalformedEdges
	}
	if parentCount > 0 {
		e.Parents = make([]ChangesetNode, parentCount)
		for i := range e.Parents {
			if e.Parents[i], err = decodeNode(r); err != nil {
				return nil, err
			}
		}
	}

	flags, err := r.ReadByte()
	if err != nil {
		return nil, ErrMalformedEdges
	}
	for _, opt := range []struct {
		flag byte
		dst  **ChangesetNode
	}{
		{flagMergeAncestor, &e.MergeAncestor},
		{flagSkipTreeParent, &e.SkipTreeParent},
		{flagSkipTreeSkewAncestor, &e.SkipTreeSkewAncestor},
		{flagP1LinearSkewAncestor, &e.P1LinearSkewAncestor},
	} {
		if flags&opt.flag == 0 {
			continue
		}
		n, err := decodeNode(r)
		if err != nil {
			return nil, err
		}
		*opt.dst = &n
	}

	if r.Len() != 0 {
		return nil, ErrMalformedEdges
	}
	return e, nil
}
