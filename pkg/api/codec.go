package api

import (
	"bytes"
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec carries plain Go structs as JSON. It registers under the name
// "json", replacing Connect's protobuf-only JSON codec.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		// Connect GET requests and empty bodies decode to the zero message.
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(msg)
}

// WithCodec is the option both handlers and clients need.
func WithCodec() connect.Option {
	return connect.WithCodec(Codec{})
}
