// Package codec registers the JSON gRPC codec used by the hand-declared access and policy
// services. Clients select it with the "json" content-subtype
// (grpc.CallContentSubtype(codec.Name)); the health service keeps the default proto codec.
package codec

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Name is the content-subtype of the JSON codec.
const Name = "json"

// JSON marshals gRPC messages as JSON.
type JSON struct{}

func init() {
	encoding.RegisterCodec(JSON{})
}

// Marshal encodes v as JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes JSON data into v. An empty message leaves v at its zero value.
func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Name returns "json".
func (JSON) Name() string { return Name }
