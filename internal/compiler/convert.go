package compiler

import (
	"fmt"

	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/roach88/lcq/internal/value"
)

// fromCEL converts an expression result into a Value. Maps and other
// structured CEL types have no Value form and are rejected.
func fromCEL(v ref.Val) (value.Value, error) {
	switch val := v.(type) {
	case types.Int:
		return value.Int(val), nil
	case types.Uint:
		return value.FromNative(uint64(val))
	case types.Double:
		return value.Float(val), nil
	case types.String:
		return value.String(val), nil
	case types.Bool:
		return value.Bool(val), nil
	case types.Bytes:
		return value.String(val), nil
	case types.Null:
		return value.Null{}, nil
	case traits.Lister:
		var out value.List
		it := val.Iterator()
		for i := 0; it.HasNext() == types.True; i++ {
			elem, err := fromCEL(it.Next())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, elem)
		}
		if out == nil {
			out = value.List{}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported result type %s", v.Type().TypeName())
	}
}
