package pivot

import (
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/jgoulah/chargerdash/pkg/models"
)

// InvalidRangeWarning is shown when the start date is after the end date
const InvalidRangeWarning = "Please select a valid start and end date."

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange builds a range from two dates, dropping any time of day
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: day(start), End: day(end)}
}

// Valid reports whether start is on or before end
func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultRange runs from the earliest month in rows to today.
// With no rows the start is left open.
func DefaultRange(rows []models.MonthlyUsage, today time.Time) DateRange {
	if len(rows) == 0 {
		return DateRange{End: day(today)}
	}
	earliest := lo.MinBy(rows, func(a, b models.MonthlyUsage) bool {
		return a.Month.Before(b.Month)
	})
	return NewDateRange(earliest.Month, today)
}

// FilterMonthly keeps rows whose month falls inside r. An inverted range
// leaves rows untouched and returns InvalidRangeWarning.
func FilterMonthly(rows []models.MonthlyUsage, r DateRange) ([]models.MonthlyUsage, string) {
	if !r.Valid() {
		return rows, InvalidRangeWarning
	}
	start, end := day(r.Start), day(r.End)
	return lo.Filter(rows, func(row models.MonthlyUsage, _ int) bool {
		m := day(row.Month)
		return !m.Before(start) && !m.After(end)
	}), ""
}

// FilterWeekday keeps rows whose year lies between the range's start and end
// years. Like FilterMonthly an inverted range is a no-op with a warning.
func FilterWeekday(rows []models.WeekdayUsage, r DateRange) ([]models.WeekdayUsage, string) {
	if !r.Valid() {
		return rows, InvalidRangeWarning
	}
	return lo.Filter(rows, func(row models.WeekdayUsage, _ int) bool {
		year, err := strconv.Atoi(row.Year)
		if err != nil {
			return false
		}
		return year >= r.Start.Year() && year <= r.End.Year()
	}), ""
}
