package docstore

import "encoding/json"

// Decode unmarshals a document payload into v. Payloads are opaque to
// the store itself; hooks decode them at the boundary.
func Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Encode marshals v into a document payload.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
