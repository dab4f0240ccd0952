package pivot

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/jgoulah/chargerdash/pkg/models"
)

// DayOrder is the canonical Sunday-first weekday order
var DayOrder = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayIndex returns the position of name in DayOrder, or -1
func DayIndex(name string) int {
	return lo.IndexOf(DayOrder, name)
}

// Weekday returns the rows with a canonical day name, ordered Sunday first,
// then by meter and year. The input is not modified.
func Weekday(rows []models.WeekdayUsage) []models.WeekdayUsage {
	out := lo.Filter(rows, func(r models.WeekdayUsage, _ int) bool {
		return DayIndex(r.DayName) >= 0
	})
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := DayIndex(out[i].DayName), DayIndex(out[j].DayName)
		if di != dj {
			return di < dj
		}
		if out[i].MeterName != out[j].MeterName {
			return out[i].MeterName < out[j].MeterName
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// Years returns the distinct years present, ascending
func Years(rows []models.WeekdayUsage) []string {
	years := lo.Uniq(lo.Map(rows, func(r models.WeekdayUsage, _ int) string { return r.Year }))
	sort.Strings(years)
	return years
}

// CheckEventBounds reports the first row whose charging events exceed the
// number of days in its month
func CheckEventBounds(rows []models.MonthlyUsage) error {
	for _, r := range rows {
		days := time.Date(r.Year, time.Month(r.MonthNo)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if r.ChargingEvents < 0 || r.ChargingEvents > days {
			return fmt.Errorf("%s %d-%02d: %d charging events in a %d day month",
				r.MeterName, r.Year, r.MonthNo, r.ChargingEvents, days)
		}
	}
	return nil
}
