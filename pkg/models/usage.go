package models

import "time"

// MonthlyUsage is one meter's aggregated usage for a calendar month
type MonthlyUsage struct {
	Month          time.Time `json:"month"` // First day of the month
	Year           int       `json:"year_no"`
	MonthNo        int       `json:"month_no"`
	MeterName      string    `json:"meter_name"`
	ChargingEvents int       `json:"charging_events"` // Distinct days with positive usage
	TotalUsageKWh  float64   `json:"total_usage_kwh"`
}

// WeekdayUsage is one meter's usage summed over every occurrence of a weekday in a year
type WeekdayUsage struct {
	Year          string  `json:"year"`
	DayName       string  `json:"day_name"` // "Sunday" .. "Saturday"
	MeterName     string  `json:"meter_name"`
	TotalUsageKWh float64 `json:"total_usage_kwh"`
}
