package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is a sealed interface over the dynamic values a query can carry:
// source elements, candidate tuples and results.
// Only Null, Int, Float, String, Bool and List implement it.
type Value interface {
	value() // Sealed - only these types implement it

	// String renders the value for display. Lists render as "(a, b)" and
	// strings render without quotes.
	String() string
}

// Null is an absent value, e.g. a SQL NULL.
type Null struct{}

func (Null) value() {}

func (Null) String() string { return "null" }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Int is a 64-bit signed integer.
type Int int64

func (Int) value() {}

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a 64-bit float.
type Float float64

func (Float) value() {}

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

// String is a UTF-8 string.
type String string

func (String) value() {}

func (s String) String() string { return string(s) }

// Bool is a boolean.
type Bool bool

func (Bool) value() {}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// List is an ordered sequence of values. Tuples are lists.
type List []Value

func (List) value() {}

func (l List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range l {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte(')')
	return b.String()
}

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (i Int) MarshalJSON() ([]byte, error) { return MarshalCanonical(i) }

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (f Float) MarshalJSON() ([]byte, error) { return MarshalCanonical(f) }

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (s String) MarshalJSON() ([]byte, error) { return MarshalCanonical(s) }

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (b Bool) MarshalJSON() ([]byte, error) { return MarshalCanonical(b) }

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (l List) MarshalJSON() ([]byte, error) { return MarshalCanonical(l) }

// FromNative converts a decoded Go value (from YAML, JSON, CUE, SQL or an
// expression result) into a Value.
func FromNative(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint64:
		return fromUint(val)
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Float(f), nil
	case time.Time:
		return String(val.UTC().Format(time.RFC3339Nano)), nil
	case []any:
		return listFromNative(val)
	case []Value:
		return List(val), nil
	case []int:
		l := make(List, len(val))
		for i, n := range val {
			l[i] = Int(n)
		}
		return l, nil
	case []string:
		l := make(List, len(val))
		for i, s := range val {
			l[i] = String(s)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("unsigned value %d overflows int64", u)
	}
	return Int(u), nil
}

func listFromNative(items []any) (List, error) {
	l := make(List, len(items))
	for i, item := range items {
		v, err := FromNative(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		l[i] = v
	}
	return l, nil
}

// FromNatives converts a slice of decoded Go values.
func FromNatives(items []any) ([]Value, error) {
	l, err := listFromNative(items)
	if err != nil {
		return nil, err
	}
	return []Value(l), nil
}

// ToNative converts v into plain Go values: int64, float64, string, bool,
// []any or nil.
func ToNative(v Value) any {
	switch val := v.(type) {
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToNative(elem)
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether a and b are the same value. Int and Float never
// compare equal to each other.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		return a == b
	}
}

// Kind names the dynamic type of v.
func Kind(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case List:
		return "list"
	default:
		return fmt.Sprintf("%T", v)
	}
}
