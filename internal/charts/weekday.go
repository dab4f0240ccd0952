package charts

// WeekdayOptions configures WeekdayBars
type WeekdayOptions struct {
	Title    string
	Data     any
	DayOrder []string
	Colors   []string
	Width    int
	Height   int
}

// WeekdayBars builds grouped bars of usage per day of the week, one bar per
// year, faceted into a row per meter. Clicking a year in the legend dims
// the other years.
func WeekdayBars(o WeekdayOptions) *Spec {
	if o.Width == 0 {
		o.Width = 500
	}
	if o.Height == 0 {
		o.Height = 200
	}

	const yearParam = "year_select"

	inner := &Spec{
		Mark: &Mark{Type: "bar"},
		Encoding: &Encoding{
			X:       &Channel{Field: "day_name", Type: Nominal, Title: "Day of the Week", Sort: o.DayOrder},
			Y:       &Channel{Field: "total_usage_kwh", Type: Quantitative, Title: "Total Usage (kWh)"},
			Color:   &Channel{Field: "year", Type: Nominal, Title: "Year", Scale: &Scale{Range: o.Colors}},
			XOffset: &Channel{Field: "year", Type: Nominal},
			Opacity: &Channel{
				Condition: &Condition{Param: yearParam, Value: 1},
				Value:     0.2,
			},
			Tooltip: []Channel{
				{Field: "year", Type: Nominal, Title: "year"},
				{Field: "meter_name", Type: Nominal, Title: "meter_name"},
				{Field: "day_name", Type: Nominal, Title: "day_name"},
				{Field: "total_usage_kwh", Type: Quantitative, Title: "total_usage_kwh"},
			},
		},
		Params: []Param{{
			Name:   yearParam,
			Select: Selection{Type: "point", Fields: []string{"year"}},
			Bind:   "legend",
		}},
		Width:  o.Width,
		Height: o.Height,
	}

	return &Spec{
		Schema: SchemaURL,
		Title:  o.Title,
		Data:   &Data{Values: o.Data},
		Facet:  &Facet{Row: &Channel{Field: "meter_name", Type: Nominal, Title: "Meter"}},
		Spec:   inner,
	}
}
