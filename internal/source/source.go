package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/value"
)

// MaxRangeLen bounds how many elements a single range source may expand
// to.
const MaxRangeLen = 1 << 24

// ErrRangeTooLarge is returned when a range would exceed MaxRangeLen.
var ErrRangeTooLarge = errors.New("range too large")

// Load materializes one source.
func Load(ctx context.Context, src query.Source) ([]value.Value, error) {
	var (
		vals []value.Value
		err  error
	)

	switch src.Kind() {
	case "values":
		vals, err = value.FromNatives(src.Values)
	case "range":
		vals, err = expandRange(*src.Range)
	case "sql":
		vals, err = loadSQL(ctx, *src.SQL)
	default:
		err = fmt.Errorf("must define exactly one of values, range or sql")
	}
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", src.Name, err)
	}
	return vals, nil
}

// LoadAll materializes every source of a query in dimension order. It
// stops at the first failure.
func LoadAll(ctx context.Context, srcs []query.Source) ([][]value.Value, error) {
	out := make([][]value.Value, len(srcs))
	for i, src := range srcs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals, err := Load(ctx, src)
		if err != nil {
			return nil, err
		}
		out[i] = vals
	}
	return out, nil
}

func expandRange(r query.Range) ([]value.Value, error) {
	step := r.StepOrDefault()
	if step == 0 {
		return nil, fmt.Errorf("range step must be non-zero")
	}

	n := rangeLen(r.Start, r.End, step)
	if n > MaxRangeLen {
		return nil, fmt.Errorf("%w: %d elements (max %d)", ErrRangeTooLarge, n, MaxRangeLen)
	}

	vals := make([]value.Value, 0, n)
	for i := uint64(0); i < n; i++ {
		vals = append(vals, value.Int(r.Start+int64(i)*step))
	}
	return vals, nil
}

// rangeLen counts the elements of [start, end) stepping by step without
// overflowing int64.
func rangeLen(start, end, step int64) uint64 {
	switch {
	case step > 0 && start < end:
		return ceilDiv(uint64(end)-uint64(start), uint64(step))
	case step < 0 && start > end:
		return ceilDiv(uint64(start)-uint64(end), uint64(-(step+1))+1)
	default:
		return 0
	}
}

func ceilDiv(a, b uint64) uint64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

func loadSQL(ctx context.Context, src query.SQLSource) ([]value.Value, error) {
	if src.DB != ":memory:" && !strings.HasPrefix(src.DB, "file:") {
		if _, err := os.Stat(src.DB); err != nil {
			return nil, fmt.Errorf("database not found: %w", err)
		}
	}

	db, err := OpenDB(src.DB)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	col, err := db.Column(ctx, src.Query)
	if err != nil {
		return nil, err
	}
	return value.FromNatives(col)
}
