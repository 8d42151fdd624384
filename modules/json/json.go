// Copyright 2020 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package json

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Encoder represents an encoder for json
type Encoder interface {
	Encode(v any) error
}

// Decoder represents a decoder for json
type Decoder interface {
	Decode(v any) error
}

var defaultJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal converts object as bytes
func Marshal(v any) ([]byte, error) {
	return defaultJSON.Marshal(v)
}

// Unmarshal decodes object from bytes
func Unmarshal(data []byte, v any) error {
	return defaultJSON.Unmarshal(data, v)
}

// NewEncoder creates an encoder to write objects to writer
func NewEncoder(writer io.Writer) Encoder {
	return defaultJSON.NewEncoder(writer)
}

// NewDecoder creates a decoder to read objects from reader
func NewDecoder(reader io.Reader) Decoder {
	return defaultJSON.NewDecoder(reader)
}

// Valid proxies the call to the default handler
func Valid(data []byte) bool {
	return defaultJSON.Valid(data)
}
