// Package jsonfast isolates the choice of JSON encoder behind a small
// interface, so a caller can swap a faster encoder in without touching
// anything that calls it.
package jsonfast

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// Marshaler is the subset of encoding/json's package-level functions
// report.JSONSink needs.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
}

type goccyMarshaler struct{}

func (goccyMarshaler) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

func (goccyMarshaler) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

type stdMarshaler struct{}

func (stdMarshaler) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (stdMarshaler) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

// Default is goccy/go-json, a drop-in faster encoder. Std is the
// standard library's encoding/json, kept available as a fallback for
// callers that want to avoid the third-party dependency.
var (
	Default Marshaler = goccyMarshaler{}
	Std     Marshaler = stdMarshaler{}
)
