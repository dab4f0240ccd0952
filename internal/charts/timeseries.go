package charts

import "time"

// MonthAxisFormat is the d3 time format for month axes and tooltips
const MonthAxisFormat = "%b %Y"

const (
	legendParam    = "legend"
	brushParam     = "brush"
	highlightParam = "highlight"
)

// TimeSeriesOptions configures TimeSeries
type TimeSeriesOptions struct {
	Title  string
	Data   any
	X      string // temporal field, one value per month
	Y      string // quantitative field
	Legend string // series field

	Colors   []string
	Brush    [2]time.Time // Initial zoom window; zero values leave the brush empty
	Tooltips []TooltipField
	Width    int
	Height   int
}

// TimeSeries builds a zoomable line chart: a detail view whose x domain
// follows a brush drawn on an overview strip below it. Clicking a legend
// entry dims the other series and hovering highlights the nearest point.
func TimeSeries(o TimeSeriesOptions) *Spec {
	if o.Width == 0 {
		o.Width = 600
	}
	if o.Height == 0 {
		o.Height = 200
	}

	tooltip := Tooltips(o.Tooltips)
	if tooltip == nil {
		tooltip = []Channel{
			{Field: o.X, Type: Temporal, TimeUnit: "utcyearmonth", Title: o.X, Format: MonthAxisFormat},
			{Field: o.Legend, Type: Nominal, Title: o.Legend},
			{Field: o.Y, Type: Quantitative, Title: o.Y},
		}
	}

	encode := func(zoomed, zero bool) *Encoding {
		x := &Channel{
			Field:    o.X,
			Type:     Temporal,
			TimeUnit: "utcyearmonth",
			Axis:     &Axis{Format: MonthAxisFormat},
		}
		if zoomed {
			x.Scale = &Scale{Domain: ParamDomain{Param: brushParam, Encoding: "x"}}
		}
		y := &Channel{Field: o.Y, Type: Quantitative}
		if !zero {
			y.Scale = &Scale{Zero: boolPtr(false)}
		}
		return &Encoding{
			X:     x,
			Y:     y,
			Color: &Channel{Field: o.Legend, Type: Nominal, Scale: &Scale{Range: o.Colors}},
			Opacity: &Channel{
				Condition: &Condition{Param: legendParam, Value: 1},
				Value:     0.2,
			},
			Tooltip: tooltip,
		}
	}

	upper := &Spec{
		Mark:     &Mark{Type: "line"},
		Encoding: encode(true, false),
		Params: []Param{{
			Name:   legendParam,
			Select: Selection{Type: "point", Fields: []string{o.Legend}},
			Bind:   "legend",
		}},
	}

	circleEnc := encode(true, false)
	circleEnc.Size = &Channel{
		Condition: &Condition{Param: highlightParam, Value: 100, Empty: boolPtr(false)},
		Value:     0,
	}
	circle := &Spec{
		Mark:     &Mark{Type: "circle"},
		Encoding: circleEnc,
		Params: []Param{{
			Name: highlightParam,
			Select: Selection{
				Type:    "point",
				Fields:  []string{o.X},
				On:      "pointerover",
				Nearest: true,
				Clear:   "pointerout",
			},
		}},
	}

	brush := Param{
		Name:   brushParam,
		Select: Selection{Type: "interval", Encodings: []string{"x"}},
	}
	if !o.Brush[0].IsZero() && !o.Brush[1].IsZero() {
		brush.Value = map[string][]DateTime{
			"x": {NewDateTime(o.Brush[0]), NewDateTime(o.Brush[1])},
		}
	}
	view := &Spec{
		Mark:     &Mark{Type: "line"},
		Encoding: encode(false, false),
		Params:   []Param{brush},
		Width:    o.Width,
		Height:   60,
	}

	return &Spec{
		Schema: SchemaURL,
		Title:  o.Title,
		Data:   &Data{Values: o.Data},
		VConcat: []*Spec{
			{Layer: []*Spec{upper, circle}, Width: o.Width, Height: o.Height},
			view,
		},
	}
}

// TrailingYear returns the twelve month window ending with latest's month
func TrailingYear(latest time.Time) [2]time.Time {
	y, m, _ := latest.Date()
	end := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return [2]time.Time{end.AddDate(0, -11, 0), end}
}
