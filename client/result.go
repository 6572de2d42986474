package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags the shape of a decoded result. It is decided once at
// decode time from the response's status and content type.
type Kind int

const (
	// KindRaw holds undecoded bytes (non-JSON content types).
	KindRaw Kind = iota
	// KindObject holds a decoded JSON object.
	KindObject
	// KindArray holds a decoded JSON array.
	KindArray
	// KindScalar holds a decoded JSON scalar (string, number, bool,
	// null).
	KindScalar
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Result is the decoded payload of a successful response: exactly one
// of object, array, scalar, or raw bytes.
type Result struct {
	kind   Kind
	object map[string]any
	array  []any
	scalar any
	raw    []byte
}

// Kind returns the result's shape tag.
func (r *Result) Kind() Kind {
	return r.kind
}

// Object returns the decoded JSON object, if that is the shape.
func (r *Result) Object() (map[string]any, bool) {
	return r.object, r.kind == KindObject
}

// Array returns the decoded JSON array, if that is the shape.
func (r *Result) Array() ([]any, bool) {
	return r.array, r.kind == KindArray
}

// Scalar returns the decoded JSON scalar, if that is the shape.
// Numbers are json.Number values, preserving the integer/float
// distinction.
func (r *Result) Scalar() (any, bool) {
	return r.scalar, r.kind == KindScalar
}

// Raw returns the undecoded body bytes for KindRaw results, nil
// otherwise.
func (r *Result) Raw() []byte {
	return r.raw
}

// Parse converts a successful response into a Result. A body declared
// as JSON that does not decode is a *ParsingError; there is no
// fallback to raw bytes.
func Parse(resp *Response) (*Result, error) {
	contentType := resp.Headers.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return &Result{kind: KindRaw, raw: resp.Body}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &ParsingError{Err: err}
	}
	if dec.More() {
		return nil, &ParsingError{Err: fmt.Errorf("trailing data after JSON value")}
	}

	switch v := value.(type) {
	case map[string]any:
		return &Result{kind: KindObject, object: v}, nil
	case []any:
		return &Result{kind: KindArray, array: v}, nil
	default:
		return &Result{kind: KindScalar, scalar: v}, nil
	}
}

// unmarshalStrict decodes one complete JSON value into v, rejecting
// trailing data.
func unmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}
