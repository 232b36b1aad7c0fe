// Package jsontree holds a decoded JSON document as a tagged tree with safe,
// typed accessors. Upstream payloads are schema-free and drift over time, so
// every accessor tolerates absent or mistyped nodes by returning a null value
// instead of panicking.
package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// Value is one node of a decoded JSON document. The zero value is null.
type Value struct {
	kind Kind
	b    bool
	num  string // number literal, kept verbatim for precision
	str  string
	arr  []*Value
	obj  map[string]*Value
}

var nullValue = &Value{kind: Null}

// Parse decodes raw JSON into a Value tree. Number literals are kept
// verbatim rather than forced through float64.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return fromInterface(raw), nil
}

func fromInterface(raw interface{}) *Value {
	switch v := raw.(type) {
	case nil:
		return nullValue
	case bool:
		return &Value{kind: Bool, b: v}
	case json.Number:
		return &Value{kind: Number, num: v.String()}
	case string:
		return &Value{kind: String, str: v}
	case []interface{}:
		arr := make([]*Value, len(v))
		for i, item := range v {
			arr[i] = fromInterface(item)
		}
		return &Value{kind: Array, arr: arr}
	case map[string]interface{}:
		obj := make(map[string]*Value, len(v))
		for k, item := range v {
			obj[k] = fromInterface(item)
		}
		return &Value{kind: Object, obj: obj}
	}
	return nullValue
}

// Kind reports the variant of the node. A nil receiver is null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

// IsNull reports whether the node is absent or explicitly null.
func (v *Value) IsNull() bool { return v.Kind() == Null }

// Get descends through nested objects by key. Any miss along the path
// yields a null value, never nil.
func (v *Value) Get(keys ...string) *Value {
	cur := v
	for _, key := range keys {
		if cur.Kind() != Object {
			return nullValue
		}
		next, ok := cur.obj[key]
		if !ok || next == nil {
			return nullValue
		}
		cur = next
	}
	if cur == nil {
		return nullValue
	}
	return cur
}

// Has reports whether an object carries the given key.
func (v *Value) Has(key string) bool {
	if v.Kind() != Object {
		return false
	}
	_, ok := v.obj[key]
	return ok
}

// Index returns the i-th array element, or null when out of range.
func (v *Value) Index(i int) *Value {
	if v.Kind() != Array || i < 0 || i >= len(v.arr) {
		return nullValue
	}
	if v.arr[i] == nil {
		return nullValue
	}
	return v.arr[i]
}

// Len returns the element count of an array or the key count of an object.
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	}
	return 0
}

// Arr returns the elements of an array node, or nil otherwise.
func (v *Value) Arr() []*Value {
	if v.Kind() != Array {
		return nil
	}
	return v.arr
}

// Obj returns the members of an object node, or nil otherwise.
func (v *Value) Obj() map[string]*Value {
	if v.Kind() != Object {
		return nil
	}
	return v.obj
}

// Str returns the string payload and whether the node is a string.
func (v *Value) Str() (string, bool) {
	if v.Kind() != String {
		return "", false
	}
	return v.str, true
}

// StringOr returns the string payload or a fallback.
func (v *Value) StringOr(fallback string) string {
	if s, ok := v.Str(); ok {
		return s
	}
	return fallback
}

// Num returns the node as float64 and whether it is numeric.
func (v *Value) Num() (float64, bool) {
	if v.Kind() != Number {
		return 0, false
	}
	f, err := json.Number(v.num).Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns the node as int64 and whether it is an integral number.
func (v *Value) Int() (int64, bool) {
	if v.Kind() != Number {
		return 0, false
	}
	n, err := json.Number(v.num).Int64()
	if err != nil {
		f, ferr := json.Number(v.num).Float64()
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return n, true
}

// Decimal returns the node as an exact decimal and whether it is numeric.
// The literal is parsed directly so float rounding never leaks in.
func (v *Value) Decimal() (decimal.Decimal, bool) {
	if v.Kind() != Number {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(v.num)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// NullDecimal returns the node as a nullable decimal; null and non-numeric
// nodes yield an invalid NullDecimal.
func (v *Value) NullDecimal() decimal.NullDecimal {
	if d, ok := v.Decimal(); ok {
		return decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return decimal.NullDecimal{}
}

// BoolOr returns the bool payload or a fallback.
func (v *Value) BoolOr(fallback bool) bool {
	if v.Kind() != Bool {
		return fallback
	}
	return v.b
}

// Scalar reports whether the node is a leaf (null, bool, number or string).
func (v *Value) Scalar() bool {
	k := v.Kind()
	return k == Null || k == Bool || k == Number || k == String
}

// Normalize rewrites provider-specific scalar wrappers across the whole
// tree: an object of the form {"raw": v, ...display fields} collapses to v,
// and an empty object collapses to null. The input tree is not modified.
func Normalize(v *Value) *Value {
	switch v.Kind() {
	case Object:
		if raw, ok := v.obj["raw"]; ok {
			return Normalize(raw)
		}
		if len(v.obj) == 0 {
			return nullValue
		}
		obj := make(map[string]*Value, len(v.obj))
		for k, item := range v.obj {
			obj[k] = Normalize(item)
		}
		return &Value{kind: Object, obj: obj}
	case Array:
		arr := make([]*Value, len(v.arr))
		for i, item := range v.arr {
			arr[i] = Normalize(item)
		}
		return &Value{kind: Array, arr: arr}
	case Null:
		return nullValue
	default:
		return v
	}
}
