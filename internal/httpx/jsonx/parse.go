// Package jsonx provides strict JSON request decoding for the demo
// server's handlers.
package jsonx

import (
	"encoding/json"
	"io"
)

// ParseJSONObject decodes one JSON value from src into dst, rejecting
// unknown object fields.
func ParseJSONObject[T any](src io.Reader, dst *T) error {
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
