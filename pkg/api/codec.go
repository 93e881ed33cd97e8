// Package api defines the RPC messages of the treat planner services.
//
// Messages are plain Go structs encoded as JSON on the wire. Handlers and
// clients for each service live in package apiconnect.
package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is the Connect codec name; requests use Content-Type application/json.
const CodecName = "json"

// Codec marshals messages with encoding/json. It replaces Connect's built-in
// JSON codec, which only accepts protobuf messages.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return b, nil
}

// Unmarshal implements connect.Codec. An empty body leaves msg at its zero value.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}
