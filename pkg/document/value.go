package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant of the Value union is populated.
type Kind uint8

const (
	// KindNull is an absent or explicit null value.
	KindNull Kind = iota

	// KindScalar is a string, number or boolean.
	KindScalar

	// KindSequence is an ordered list of values.
	KindSequence

	// KindMapping is a string-keyed object.
	KindMapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is an immutable document node.
// The zero Value is Null.
type Value struct {
	kind    Kind
	scalar  interface{} // string, int64, float64 or bool
	seq     []Value
	mapping map[string]Value
}

// Null is the null value.
var Null = Value{}

// String creates a string scalar.
func String(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// Int creates an integer scalar.
func Int(i int64) Value {
	return Value{kind: KindScalar, scalar: i}
}

// Float creates a floating point scalar.
func Float(f float64) Value {
	return Value{kind: KindScalar, scalar: f}
}

// Bool creates a boolean scalar.
func Bool(b bool) Value {
	return Value{kind: KindScalar, scalar: b}
}

// Sequence creates a sequence from the given values.
func Sequence(items ...Value) Value {
	seq := make([]Value, len(items))
	copy(seq, items)
	return Value{kind: KindSequence, seq: seq}
}

// Mapping creates a mapping from the given entries.
func Mapping(entries map[string]Value) Value {
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Value{kind: KindMapping, mapping: m}
}

// EmptyMapping returns a mapping with no keys.
func EmptyMapping() Value {
	return Value{kind: KindMapping, mapping: map[string]Value{}}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsEmpty reports whether v is null, an empty string, an empty sequence or an
// empty mapping.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		s, ok := v.scalar.(string)
		return ok && s == ""
	case KindSequence:
		return len(v.seq) == 0
	case KindMapping:
		return len(v.mapping) == 0
	}
	return true
}

// IsBlank reports whether v is null or the empty string. Empty collections
// are not blank.
func (v Value) IsBlank() bool {
	if v.kind == KindNull {
		return true
	}
	s, ok := v.scalar.(string)
	return v.kind == KindScalar && ok && s == ""
}

// Get returns the value stored under key when v is a mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Null, false
	}
	child, ok := v.mapping[key]
	return child, ok
}

// Keys returns the mapping keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	keys := make([]string, 0, len(v.mapping))
	for k := range v.mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns the elements of a sequence. The returned slice must not be
// modified.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// Len returns the number of elements of a sequence or keys of a mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return len(v.mapping)
	}
	return 0
}

// Scalar returns the raw scalar (string, int64, float64 or bool).
func (v Value) Scalar() (interface{}, bool) {
	if v.kind != KindScalar {
		return nil, false
	}
	return v.scalar, true
}

// Str returns the string scalar held by v.
func (v Value) Str() (string, bool) {
	if v.kind != KindScalar {
		return "", false
	}
	s, ok := v.scalar.(string)
	return s, ok
}

// Float64 coerces v to a number. Strings are parsed after trimming spaces;
// booleans and collections do not coerce.
func (v Value) Float64() (float64, error) {
	if v.kind != KindScalar {
		return 0, fmt.Errorf("cannot convert %s to number", v.kind)
	}
	switch s := v.scalar.(type) {
	case int64:
		return float64(s), nil
	case float64:
		return s, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to number", s)
	}
}

// Truthy reports whether v is non-empty and not a false/zero scalar.
func (v Value) Truthy() bool {
	if v.IsEmpty() {
		return false
	}
	if v.kind != KindScalar {
		return true
	}
	switch s := v.scalar.(type) {
	case bool:
		return s
	case int64:
		return s != 0
	case float64:
		return s != 0
	}
	return true
}

// String renders v as text. Scalars render without quotes; collections
// render as compact JSON. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindScalar:
		switch s := v.scalar.(type) {
		case string:
			return s
		case int64:
			return strconv.FormatInt(s, 10)
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(s)
		}
		return fmt.Sprint(v.scalar)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Interface converts v back into plain Go values (nil, string, int64,
// float64, bool, []interface{}, map[string]interface{}).
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindSequence:
		out := make([]interface{}, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]interface{}, len(v.mapping))
		for k, item := range v.mapping {
			out[k] = item.Interface()
		}
		return out
	}
	return nil
}

// FromAny converts a decoded JSON/YAML tree into a Value. Unsupported types
// are rendered with fmt and stored as strings.
func FromAny(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return Float(float64(t))
		}
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return Float(f)
		}
		return String(t.String())
	case time.Time:
		return String(t.Format(time.RFC3339))
	case []interface{}:
		seq := make([]Value, len(t))
		for i, item := range t {
			seq[i] = FromAny(item)
		}
		return Value{kind: KindSequence, seq: seq}
	case []map[string]interface{}:
		seq := make([]Value, len(t))
		for i, item := range t {
			seq[i] = FromAny(item)
		}
		return Value{kind: KindSequence, seq: seq}
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[k] = FromAny(item)
		}
		return Value{kind: KindMapping, mapping: m}
	case map[interface{}]interface{}:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = FromAny(item)
		}
		return Value{kind: KindMapping, mapping: m}
	default:
		return String(fmt.Sprint(t))
	}
}

// MarshalJSON encodes v as JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindScalar:
		if f, ok := v.scalar.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return []byte("null"), nil
		}
		return json.Marshal(v.scalar)
	case KindSequence:
		if v.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.seq)
	case KindMapping:
		if v.mapping == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.mapping)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalJSON decodes JSON into v, keeping integers distinct from floats.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// Equal reports whether a and b hold the same data.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindScalar:
		return a.scalar == b.scalar
	case KindSequence:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.mapping) != len(b.mapping) {
			return false
		}
		for k, av := range a.mapping {
			bv, ok := b.mapping[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}
