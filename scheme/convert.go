package scheme

import (
	"fmt"
	"math"
	"strconv"
)

// Values arriving from JSON decoders are float64, json.Number or string;
// values built in Go are usually sized ints. The converters accept all of
// them.

type int64er interface{ Int64() (int64, error) }
type float64er interface{ Float64() (float64, error) }

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64: %w", n, ErrUnsupportedValue)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is not an integer: %w", n, ErrUnsupportedValue)
		}
		return int64(n), nil
	case float32:
		return toInt64(float64(n))
	case int64er:
		return n.Int64()
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", n, ErrUnsupportedValue)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%T as integer: %w", v, ErrUnsupportedValue)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case float64er:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", n, ErrUnsupportedValue)
		}
		return f, nil
	default:
		i, err := toInt64(v)
		if err != nil {
			return 0, fmt.Errorf("%T as float: %w", v, ErrUnsupportedValue)
		}
		return float64(i), nil
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("%q: %w", b, ErrUnsupportedValue)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%T as bool: %w", v, ErrUnsupportedValue)
	}
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%T as string: %w", v, ErrUnsupportedValue)
	}
}
