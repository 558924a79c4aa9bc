// Package reshape converts raw NEIS meal responses into the localized export
// shape keyed by "급식식단정보".
package reshape

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

const (
	// RootKey is the single top-level key of a reshaped response.
	RootKey = "급식식단정보"

	sourceKey = "mealServiceDietInfo"
	rowKey    = "row"
)

var (
	// ErrMalformedRows is returned when a row container holds a "row" value
	// that is not an array, or an entry of that array that is not an object.
	ErrMalformedRows = errors.New("row container holds malformed rows")

	// ErrInvalidJSON is returned for input that is not empty but cannot be parsed.
	ErrInvalidJSON = errors.New("response is not valid JSON")
)

// Outcome tells whether Reshape transformed its input or handed it back.
type Outcome int

const (
	Unchanged Outcome = iota
	Reshaped
)

func (o Outcome) String() string {
	if o == Reshaped {
		return "reshaped"
	}
	return "unchanged"
}

// Result is the immutable product of Reshape.
type Result struct {
	outcome  Outcome
	original []byte
	response Response
}

// Outcome reports whether the input was reshaped.
func (r Result) Outcome() Outcome { return r.outcome }

// Reshaped is shorthand for Outcome() == Reshaped.
func (r Result) Reshaped() bool { return r.outcome == Reshaped }

// Original returns the input bytes as given to Reshape.
func (r Result) Original() []byte { return r.original }

// Response returns the reshaped value. It is the zero Response when the
// outcome is Unchanged.
func (r Result) Response() Response { return r.response }

// MarshalJSON renders the reshaped response, or the untouched input when
// nothing was reshaped. Empty input renders as null.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.outcome == Reshaped {
		return r.response.MarshalJSON()
	}
	trimmed := bytes.TrimSpace(r.original)
	if len(trimmed) == 0 {
		return []byte("null"), nil
	}
	return trimmed, nil
}

// MarshalIndent renders the result with two-space indentation and without
// HTML escaping, so dish names such as "쌀밥<br/>김치" stay readable.
func (r Result) MarshalIndent() ([]byte, error) {
	compact, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reshape restructures a raw upstream body. Input without an array-valued
// mealServiceDietInfo field (including empty input and null) comes back
// Unchanged. Only the first two array elements are considered: the header
// is copied verbatim and the row container has its rows renamed.
func Reshape(raw []byte) (Result, error) {
	unchanged := Result{outcome: Unchanged, original: raw}

	if len(bytes.TrimSpace(raw)) == 0 {
		return unchanged, nil
	}
	if !gjson.ValidBytes(raw) {
		return Result{}, ErrInvalidJSON
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return unchanged, nil
	}
	dataset := lookup(doc, sourceKey)
	if !dataset.IsArray() {
		return unchanged, nil
	}

	elements := dataset.Array()
	resp := Response{Elements: []Object{}}

	if len(elements) > 0 && truthy(elements[0]) {
		resp.Elements = append(resp.Elements, copyObject(elements[0], ""))
	}

	if len(elements) > 1 && truthy(elements[1]) {
		container, err := reshapeContainer(elements[1])
		if err != nil {
			return Result{}, err
		}
		resp.Elements = append(resp.Elements, container)
	}

	return Result{outcome: Reshaped, original: raw, response: resp}, nil
}

func reshapeContainer(v gjson.Result) (Object, error) {
	container := copyObject(v, rowKey)
	if !v.IsObject() {
		return container, nil
	}

	rows := lookup(v, rowKey)
	if !truthy(rows) {
		return container, nil
	}
	if !rows.IsArray() {
		return nil, ErrMalformedRows
	}

	records := make([]MealRecord, 0, len(rows.Array()))
	for _, entry := range rows.Array() {
		if !entry.IsObject() {
			return nil, ErrMalformedRows
		}
		records = append(records, recordFrom(entry))
	}

	return append(container, Field{Key: rowKey, Value: records}), nil
}

// copyObject copies every key of v in document order, skipping skipKey.
// A repeated key keeps its first position and its last value, as JSON.parse
// does. Values that are not objects yield an empty object.
func copyObject(v gjson.Result, skipKey string) Object {
	obj := Object{}
	if !v.IsObject() {
		return obj
	}
	v.ForEach(func(key, value gjson.Result) bool {
		if skipKey != "" && key.String() == skipKey {
			return true
		}
		obj = obj.set(key.String(), normalize(value))
		return true
	})
	return obj
}

// normalize rebuilds nested objects so repeated keys collapse the same way
// at every depth. Scalars keep their raw text.
func normalize(v gjson.Result) any {
	switch {
	case v.IsObject():
		return copyObject(v, "")
	case v.IsArray():
		items := []any{}
		v.ForEach(func(_, item gjson.Result) bool {
			items = append(items, normalize(item))
			return true
		})
		return items
	}
	return json.RawMessage(v.Raw)
}

// lookup returns the last value stored under key.
func lookup(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return found
}

// truthy mirrors how the browser client decided whether an element was present.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	}
	return v.Exists()
}
