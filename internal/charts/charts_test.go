package charts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s *Spec) map[string]any {
	t.Helper()
	raw, err := s.JSON()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestTimeSeries(t *testing.T) {
	rows := []map[string]any{{"month": "2024-01-01", "meter_name": "M1", "total_usage_kwh": 10.5}}
	spec := TimeSeries(TimeSeriesOptions{
		Title:  "Monthly Total Usage per Meter",
		Data:   rows,
		X:      "month",
		Y:      "total_usage_kwh",
		Legend: "meter_name",
		Colors: []string{"#00A4B6", "#DF2048"},
		Brush:  TrailingYear(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)),
	})

	out := decode(t, spec)
	assert.Equal(t, SchemaURL, out["$schema"])
	assert.Equal(t, "Monthly Total Usage per Meter", out["title"])

	vconcat := out["vconcat"].([]any)
	require.Len(t, vconcat, 2)

	detail := vconcat[0].(map[string]any)
	assert.EqualValues(t, 600, detail["width"])
	assert.EqualValues(t, 200, detail["height"])
	layers := detail["layer"].([]any)
	require.Len(t, layers, 2)

	line := layers[0].(map[string]any)
	enc := line["encoding"].(map[string]any)
	x := enc["x"].(map[string]any)
	assert.Equal(t, "temporal", x["type"])
	assert.Equal(t, map[string]any{"format": MonthAxisFormat}, x["axis"])
	assert.Equal(t, map[string]any{"param": "brush", "encoding": "x"}, x["scale"].(map[string]any)["domain"])
	assert.Equal(t, false, enc["y"].(map[string]any)["scale"].(map[string]any)["zero"])
	assert.Equal(t, []any{"#00A4B6", "#DF2048"}, enc["color"].(map[string]any)["scale"].(map[string]any)["range"])

	opacity := enc["opacity"].(map[string]any)
	assert.EqualValues(t, 0.2, opacity["value"])
	assert.Equal(t, "legend", opacity["condition"].(map[string]any)["param"])

	legend := line["params"].([]any)[0].(map[string]any)
	assert.Equal(t, "legend", legend["bind"])

	circle := layers[1].(map[string]any)
	size := circle["encoding"].(map[string]any)["size"].(map[string]any)
	assert.EqualValues(t, 0, size["value"])
	assert.Equal(t, false, size["condition"].(map[string]any)["empty"])
	hl := circle["params"].([]any)[0].(map[string]any)["select"].(map[string]any)
	assert.Equal(t, "pointerover", hl["on"])
	assert.Equal(t, "pointerout", hl["clear"])
	assert.Equal(t, true, hl["nearest"])

	overview := vconcat[1].(map[string]any)
	assert.EqualValues(t, 60, overview["height"])
	brush := overview["params"].([]any)[0].(map[string]any)
	assert.Equal(t, "interval", brush["select"].(map[string]any)["type"])
	window := brush["value"].(map[string]any)["x"].([]any)
	assert.EqualValues(t, 2023, window[0].(map[string]any)["year"])
	assert.EqualValues(t, 7, window[0].(map[string]any)["month"])
	assert.EqualValues(t, 6, window[1].(map[string]any)["month"])
	_, zoomed := overview["encoding"].(map[string]any)["x"].(map[string]any)["scale"]
	assert.False(t, zoomed)
}

func TestTimeSeriesWithoutBrushWindow(t *testing.T) {
	out := decode(t, TimeSeries(TimeSeriesOptions{X: "month", Y: "kwh", Legend: "meter"}))
	overview := out["vconcat"].([]any)[1].(map[string]any)
	_, hasValue := overview["params"].([]any)[0].(map[string]any)["value"]
	assert.False(t, hasValue)
}

func TestWeekdayBars(t *testing.T) {
	order := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	out := decode(t, WeekdayBars(WeekdayOptions{Data: []any{}, DayOrder: order, Colors: []string{"#fff"}}))

	assert.Equal(t, "meter_name", out["facet"].(map[string]any)["row"].(map[string]any)["field"])

	inner := out["spec"].(map[string]any)
	assert.Equal(t, "bar", inner["mark"].(map[string]any)["type"])
	enc := inner["encoding"].(map[string]any)
	x := enc["x"].(map[string]any)
	assert.Equal(t, "Day of the Week", x["title"])
	sort := x["sort"].([]any)
	require.Len(t, sort, 7)
	assert.Equal(t, "Sunday", sort[0])
	assert.Equal(t, "year", enc["xOffset"].(map[string]any)["field"])
	assert.Len(t, enc["tooltip"].([]any), 4)
	assert.Equal(t, "legend", inner["params"].([]any)[0].(map[string]any)["bind"])
}

func TestInferType(t *testing.T) {
	now := time.Now()
	cases := []struct {
		v    any
		want string
	}{
		{now, Temporal},
		{&now, Temporal},
		{3, Quantitative},
		{2.5, Quantitative},
		{uint8(1), Quantitative},
		{true, Nominal},
		{"M1", Nominal},
		{nil, Nominal},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, InferType(c.v), "%T", c.v)
	}
}

func TestTooltips(t *testing.T) {
	assert.Nil(t, Tooltips(nil))

	got := Tooltips([]TooltipField{
		{Field: "month", Title: "Month", Sample: time.Time{}, Format: MonthAxisFormat},
		{Field: "total_usage_kwh", Sample: 1.0},
	})
	require.Len(t, got, 2)
	assert.Equal(t, Channel{Field: "month", Type: Temporal, Title: "Month", Format: MonthAxisFormat}, got[0])
	assert.Equal(t, "total_usage_kwh", got[1].Title)
	assert.Equal(t, Quantitative, got[1].Type)
}

func TestTrailingYear(t *testing.T) {
	w := TrailingYear(time.Date(2025, 1, 31, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), w[0])
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w[1])
}
