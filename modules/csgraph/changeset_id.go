// Copyright 2024 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package csgraph

import (
	"bytes"
	"encoding/hex"
	"strings"

	"code.gitea.io/csgraph/modules/util"
)

// IDLength is the byte length of a changeset id hash
const IDLength = 32

// IDHexLength is the length of a fully spelled out changeset id
const IDHexLength = IDLength * 2

// ChangesetID is the content hash naming a changeset. It is opaque to the
// graph: ids are only ever compared, never inspected.
type ChangesetID [IDLength]byte

// EmptyID is the all-zero changeset id
var EmptyID = ChangesetID{}

func (id ChangesetID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero returns true if the id is uninitialized
func (id ChangesetID) IsZero() bool {
	return id == EmptyID
}

// MustID always creates a new ChangesetID from a byte slice with no validation of input.
func MustID(b []byte) ChangesetID {
	var id ChangesetID
	copy(id[:], b)
	return id
}

// NewID creates a new ChangesetID from a byte slice of length IDLength.
func NewID(b []byte) (ChangesetID, error) {
	if len(b) != IDLength {
		return EmptyID, util.NewInvalidArgumentErrorf("length must be %d: %x", IDLength, b)
	}
	return MustID(b), nil
}

// MustIDFromString always creates a new ChangesetID from a hex string with no validation of input.
func MustIDFromString(s string) ChangesetID {
	b, _ := hex.DecodeString(s)
	return MustID(b)
}

// NewIDFromString creates a new ChangesetID from a hex string of length IDHexLength.
func NewIDFromString(s string) (ChangesetID, error) {
	s = strings.TrimSpace(s)
	if len(s) != IDHexLength {
		return EmptyID, util.NewInvalidArgumentErrorf("length must be %d: %s", IDHexLength, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return EmptyID, util.NewInvalidArgumentErrorf("not a hexadecimal id: %s", s)
	}
	return NewID(b)
}

// MinPrefixLength is the shortest accepted prefix for changeset lookup,
// matching the shortest abbreviated hash the web layer hands out.
const MinPrefixLength = 4

// IDPrefix is a validated hex prefix of a changeset id
type IDPrefix string

// NewIDPrefix validates and normalizes a hex prefix
func NewIDPrefix(s string) (IDPrefix, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < MinPrefixLength || len(s) > IDHexLength {
		return "", util.NewInvalidArgumentErrorf("prefix length must be between %d and %d: %s", MinPrefixLength, IDHexLength, s)
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", util.NewInvalidArgumentErrorf("prefix is not hexadecimal: %s", s)
		}
	}
	return IDPrefix(s), nil
}

// Matches returns true if id starts with the prefix
func (p IDPrefix) Matches(id ChangesetID) bool {
	return strings.HasPrefix(id.String(), string(p))
}

// ByteRange returns the smallest [start, end) range of raw ids covering the
// prefix, for storage backends that scan ordered byte keys. A nil end means
// the scan runs to the end of the keyspace.
func (p IDPrefix) ByteRange() (start, end []byte, err error) {
	s := string(p)
	if len(s)%2 == 1 {
		s += "0" // odd prefixes round the low nibble down
	}
	start, err = hex.DecodeString(s)
	if err != nil {
		return nil, nil, util.NewInvalidArgumentErrorf("prefix is not hexadecimal: %s", p)
	}
	end = bytes.Clone(start)
	if len(p)%2 == 1 {
		end[len(end)-1] |= 0x0f
	}
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return start, end, nil
		}
	}
	// prefix of all 0xff bytes, scan to the end of the keyspace
	return start, nil, nil
}
