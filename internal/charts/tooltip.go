package charts

import (
	"reflect"
	"time"
)

// TooltipField describes one tooltip entry. Sample is any value of the
// field's Go type and decides the encoding type.
type TooltipField struct {
	Field  string
	Title  string
	Sample any
	Format string
}

var timeType = reflect.TypeOf(time.Time{})

// InferType maps a Go value onto a Vega-Lite encoding type: times are
// temporal, numbers quantitative, everything else (bools included) nominal
func InferType(v any) string {
	if v == nil {
		return Nominal
	}
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return Temporal
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Quantitative
	default:
		return Nominal
	}
}

// Tooltips converts fields into tooltip channels in the given order
func Tooltips(fields []TooltipField) []Channel {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Channel, 0, len(fields))
	for _, f := range fields {
		title := f.Title
		if title == "" {
			title = f.Field
		}
		out = append(out, Channel{
			Field:  f.Field,
			Type:   InferType(f.Sample),
			Title:  title,
			Format: f.Format,
		})
	}
	return out
}
