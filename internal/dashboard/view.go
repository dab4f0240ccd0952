package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/chargerdash/internal/charts"
	"github.com/jgoulah/chargerdash/internal/pivot"
	"github.com/jgoulah/chargerdash/pkg/models"
)

// NoDataWarning replaces a chart or table whose query returned no rows
const NoDataWarning = "No data available."

// Source supplies the flat aggregates the dashboard reshapes
type Source interface {
	MonthlyUsage(ctx context.Context) ([]models.MonthlyUsage, error)
	WeekdayUsage(ctx context.Context) ([]models.WeekdayUsage, error)
}

// Dataset is one fetch of both aggregates
type Dataset struct {
	Monthly []models.MonthlyUsage
	Weekday []models.WeekdayUsage
}

// Fetch runs both warehouse queries concurrently
func Fetch(ctx context.Context, src Source) (*Dataset, error) {
	var ds Dataset
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := src.MonthlyUsage(ctx)
		if err != nil {
			return fmt.Errorf("fetching monthly usage: %w", err)
		}
		ds.Monthly = rows
		return nil
	})
	g.Go(func() error {
		rows, err := src.WeekdayUsage(ctx)
		if err != nil {
			return fmt.Errorf("fetching weekday usage: %w", err)
		}
		ds.Weekday = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Filtered is a dataset narrowed to the selected date range
type Filtered struct {
	Range    pivot.DateRange
	Monthly  []models.MonthlyUsage
	Weekday  []models.WeekdayUsage
	Warnings []string
}

// Filter applies r to both aggregates. A nil r selects the default range.
func (ds *Dataset) Filter(r *pivot.DateRange, today time.Time) *Filtered {
	rng := pivot.DefaultRange(ds.Monthly, today)
	if r != nil {
		if !r.Start.IsZero() {
			rng.Start = r.Start
		}
		if !r.End.IsZero() {
			rng.End = r.End
		}
	}

	f := &Filtered{Range: rng}
	var warning string
	f.Monthly, warning = pivot.FilterMonthly(ds.Monthly, rng)
	if warning != "" {
		f.Warnings = append(f.Warnings, warning)
	}
	f.Weekday, _ = pivot.FilterWeekday(ds.Weekday, rng)
	f.Weekday = pivot.Weekday(f.Weekday)
	return f
}

// MonthlyChart returns the zoomable usage time series, or nil without data
func (f *Filtered) MonthlyChart(colors []string) *charts.Spec {
	if len(f.Monthly) == 0 {
		return nil
	}
	latest := f.Monthly[0].Month
	for _, r := range f.Monthly {
		if r.Month.After(latest) {
			latest = r.Month
		}
	}
	return charts.TimeSeries(charts.TimeSeriesOptions{
		Title:  "Monthly Total Usage per Meter",
		Data:   f.Monthly,
		X:      "month",
		Y:      "total_usage_kwh",
		Legend: "meter_name",
		Colors: colors,
		Brush:  charts.TrailingYear(latest),
	})
}

// WeekdayChart returns the faceted day-of-week bars, or nil without data
func (f *Filtered) WeekdayChart(colors []string) *charts.Spec {
	if len(f.Weekday) == 0 {
		return nil
	}
	return charts.WeekdayBars(charts.WeekdayOptions{
		Title:    "Meter Usage by Day of the Week",
		Data:     f.Weekday,
		DayOrder: pivot.DayOrder,
		Colors:   colors,
	})
}

// Page is the template model for the dashboard page
type Page struct {
	Title        string
	PrimaryColor string
	Range        pivot.DateRange
	Warnings     []string

	MonthlyEmpty bool
	WeekdayEmpty bool

	Metrics      []pivot.Metric
	MeterMetrics []pivot.MeterMetric
	Records      [][]string

	MonthlyChart template.JS
	WeekdayChart template.JS
}

func specJS(s *charts.Spec) (template.JS, error) {
	if s == nil {
		return "", nil
	}
	raw, err := s.JSON()
	if err != nil {
		return "", fmt.Errorf("encoding chart spec: %w", err)
	}
	// encoding/json escapes <, > and & so the spec is safe inside a script tag
	return template.JS(raw), nil
}
