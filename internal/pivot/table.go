// Package pivot reshapes flat warehouse rows into the wide tables and
// summaries shown on the dashboard. Everything here is pure: rows in, rows out.
package pivot

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jgoulah/chargerdash/pkg/models"
)

// Metric names a value column of the monthly summary
type Metric string

const (
	ChargingEvents Metric = "charging_events"
	TotalUsageKWh  Metric = "total_usage_kwh"
)

// Metrics lists the monthly metrics in display order
var Metrics = []Metric{ChargingEvents, TotalUsageKWh}

// TotalLabel marks the synthetic totals row and column group
const TotalLabel = "Total"

// Label returns the human readable metric name
func (m Metric) Label() string {
	switch m {
	case ChargingEvents:
		return "Charging Events"
	case TotalUsageKWh:
		return "Total Usage (kWh)"
	default:
		return string(m)
	}
}

// Format renders v the way the metric is displayed: events as whole
// numbers, usage with two decimals
func (m Metric) Format(v float64) string {
	if m == ChargingEvents {
		return decimal.NewFromFloat(v).Round(0).String()
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func (m Metric) of(row models.MonthlyUsage) float64 {
	if m == ChargingEvents {
		return float64(row.ChargingEvents)
	}
	return row.TotalUsageKWh
}

// RowKey identifies a table row: a (year, month) period or the totals row
type RowKey struct {
	Year  int  `json:"year_no"`
	Month int  `json:"month_no"`
	Total bool `json:"total,omitempty"`
}

// Label returns "2024-01" style period labels, or "Total"
func (k RowKey) Label() string {
	if k.Total {
		return TotalLabel
	}
	return fmt.Sprintf("%d-%02d", k.Year, k.Month)
}

// Column identifies a (meter, metric) value column. Meter is TotalLabel for
// the cross-meter totals group.
type Column struct {
	Meter  string `json:"meter_name"`
	Metric Metric `json:"metric"`
}

// Label returns e.g. "M1 Charging Events"
func (c Column) Label() string {
	return c.Meter + " " + c.Metric.Label()
}

// IsTotal reports whether the column belongs to the totals group
func (c Column) IsTotal() bool {
	return c.Meter == TotalLabel
}

// Table is a dense wide table: Values[i][j] is the value of Rows[i] in Columns[j]
type Table struct {
	Rows    []RowKey    `json:"rows"`
	Columns []Column    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Monthly pivots monthly rows into one row per (year, month) and one
// column per (meter, metric). Meters are sorted by name; periods
// missing a meter get zero. Duplicate keys are summed.
func Monthly(rows []models.MonthlyUsage) *Table {
	meters := lo.Uniq(lo.Map(rows, func(r models.MonthlyUsage, _ int) string { return r.MeterName }))
	sort.Strings(meters)

	periods := lo.Uniq(lo.Map(rows, func(r models.MonthlyUsage, _ int) RowKey {
		return RowKey{Year: r.Year, Month: r.MonthNo}
	}))
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return periods[i].Month < periods[j].Month
	})

	t := &Table{Rows: periods}
	for _, meter := range meters {
		for _, metric := range Metrics {
			t.Columns = append(t.Columns, Column{Meter: meter, Metric: metric})
		}
	}

	rowIdx := make(map[RowKey]int, len(periods))
	for i, p := range periods {
		rowIdx[p] = i
	}
	colIdx := make(map[Column]int, len(t.Columns))
	for j, c := range t.Columns {
		colIdx[c] = j
	}

	t.Values = make([][]float64, len(periods))
	for i := range t.Values {
		t.Values[i] = make([]float64, len(t.Columns))
	}
	for _, r := range rows {
		i := rowIdx[RowKey{Year: r.Year, Month: r.MonthNo}]
		for _, metric := range Metrics {
			t.Values[i][colIdx[Column{Meter: r.MeterName, Metric: metric}]] += metric.of(r)
		}
	}

	return t
}

// Meters returns the meter names in column order, excluding the totals group
func (t *Table) Meters() []string {
	return lo.Uniq(lo.FilterMap(t.Columns, func(c Column, _ int) (string, bool) {
		return c.Meter, !c.IsTotal()
	}))
}

// Value looks up a single cell
func (t *Table) Value(row RowKey, col Column) (float64, bool) {
	i := lo.IndexOf(t.Rows, row)
	j := lo.IndexOf(t.Columns, col)
	if i < 0 || j < 0 {
		return 0, false
	}
	return t.Values[i][j], true
}

// Empty reports whether the table has no periods
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// WithTotals returns a copy of t with a Total row holding the sum of every
// column and a Total column group holding, per metric, the sum across meters.
func (t *Table) WithTotals() *Table {
	out := &Table{
		Rows:    append(append([]RowKey{}, t.Rows...), RowKey{Total: true}),
		Columns: append([]Column{}, t.Columns...),
	}
	for _, metric := range Metrics {
		out.Columns = append(out.Columns, Column{Meter: TotalLabel, Metric: metric})
	}

	width := len(t.Columns)
	out.Values = make([][]float64, len(out.Rows))
	for i := range out.Values {
		out.Values[i] = make([]float64, len(out.Columns))
	}

	last := len(out.Rows) - 1
	for i, row := range t.Values {
		copy(out.Values[i], row)
		for j, v := range row {
			out.Values[last][j] += v
		}
	}

	for i := range out.Values {
		for j := 0; j < width; j++ {
			for k, metric := range Metrics {
				if t.Columns[j].Metric == metric {
					out.Values[i][width+k] += out.Values[i][j]
				}
			}
		}
	}

	return out
}

// Records flattens the table into string records, header first, with
// each value formatted for its metric
func (t *Table) Records() [][]string {
	header := append([]string{"Period"}, lo.Map(t.Columns, func(c Column, _ int) string { return c.Label() })...)
	records := [][]string{header}
	for i, row := range t.Rows {
		rec := make([]string, 0, len(t.Columns)+1)
		rec = append(rec, row.Label())
		for j, c := range t.Columns {
			rec = append(rec, c.Metric.Format(t.Values[i][j]))
		}
		records = append(records, rec)
	}
	return records
}

// MeterMetric is one meter's all-time totals
type MeterMetric struct {
	Meter          string  `json:"meter_name"`
	ChargingEvents int     `json:"charging_events"`
	TotalUsageKWh  float64 `json:"total_usage_kwh"`
}

// Display returns the formatted value for a metric
func (m MeterMetric) Display(metric Metric) string {
	if metric == ChargingEvents {
		return strconv.Itoa(m.ChargingEvents)
	}
	return metric.Format(m.TotalUsageKWh)
}

// AllTime sums each meter's rows, rounding usage to two decimals.
// The result is sorted by meter name.
func AllTime(rows []models.MonthlyUsage) []MeterMetric {
	byMeter := lo.GroupBy(rows, func(r models.MonthlyUsage) string { return r.MeterName })
	meters := lo.Keys(byMeter)
	sort.Strings(meters)

	return lo.Map(meters, func(meter string, _ int) MeterMetric {
		group := byMeter[meter]
		usage := lo.SumBy(group, func(r models.MonthlyUsage) float64 { return r.TotalUsageKWh })
		return MeterMetric{
			Meter:          meter,
			ChargingEvents: lo.SumBy(group, func(r models.MonthlyUsage) int { return r.ChargingEvents }),
			TotalUsageKWh:  decimal.NewFromFloat(usage).Round(2).InexactFloat64(),
		}
	})
}
