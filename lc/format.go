package lc

import (
	"fmt"
	"reflect"
	"strings"
)

// Format renders v for display. Slices and arrays become a parenthesized,
// comma-separated list and their elements are rendered recursively, so a
// result set of pairs prints as ((0, 9), (0, 8)). Values that implement
// fmt.Stringer, such as the tuple types, render themselves; anything else
// uses the %v verb.
func Format(v any) string {
	return formatElem(v)
}

// FormatAll renders a result sequence the same way Format renders a slice.
func FormatAll[R any](results []R) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, r := range results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatElem(r))
	}
	b.WriteByte(')')
	return b.String()
}

func formatElem(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		var b strings.Builder
		b.WriteByte('(')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatElem(rv.Index(i).Interface()))
		}
		b.WriteByte(')')
		return b.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
