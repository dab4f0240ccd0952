package database

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Drivers disagree on how they surface dates and numerics (pgx returns
// time.Time and int32/float64, sqlite returns text and int64), so rows are
// scanned into `any` and normalised here.

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05-07:00",
}

func asDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	case []byte:
		return asDate(string(t))
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				y, m, d := parsed.Date()
				return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	case nil:
		return time.Time{}, fmt.Errorf("unexpected NULL date")
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		return int(math.Round(n)), nil
	case []byte:
		return asInt(string(n))
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("unrecognised integer %q", s)
		}
		return int(math.Round(f)), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported integer type %T", v)
	}
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case []byte:
		return asFloat(string(n))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("unrecognised number %q", n)
		}
		return f, nil
	case nil:
		// SUM over no positive rows
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case int32:
		return strconv.FormatInt(int64(s), 10), nil
	case nil:
		return "", fmt.Errorf("unexpected NULL text")
	default:
		return "", fmt.Errorf("unsupported text type %T", v)
	}
}
