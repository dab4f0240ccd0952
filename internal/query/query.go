// Package query builds the read-only aggregation queries run against the
// fact_meter_readings table.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Dialect selects the SQL date functions used when rendering a query
type Dialect string

const (
	DuckDB   Dialect = "duckdb"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// FactTable is the warehouse table every query reads from
const FactTable = "fact_meter_readings"

var (
	ErrInvalidSchema  = errors.New("invalid schema name")
	ErrUnknownDialect = errors.New("unknown sql dialect")
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// fragments holds the dialect specific expressions
type fragments struct {
	month          string
	yearNo         string
	monthNo        string
	chargingEvents string
	usageSum       string
	year           string
	dayName        string
}

var dialects = map[Dialect]fragments{
	DuckDB: {
		month:          "CAST(date_trunc('month', end_date_time) AS DATE)",
		yearNo:         "CAST(EXTRACT(YEAR FROM end_date_time) AS INTEGER)",
		monthNo:        "CAST(EXTRACT(MONTH FROM end_date_time) AS INTEGER)",
		chargingEvents: "COUNT(DISTINCT EXTRACT(DAY FROM end_date_time)) FILTER (WHERE total_usage_kwh > 0)",
		usageSum:       "CAST(SUM(total_usage_kwh) AS DOUBLE)",
		year:           "strftime(end_date_time, '%Y')",
		dayName:        "strftime(end_date_time, '%A')",
	},
	Postgres: {
		month:          "CAST(date_trunc('month', end_date_time) AS DATE)",
		yearNo:         "CAST(EXTRACT(YEAR FROM end_date_time) AS INTEGER)",
		monthNo:        "CAST(EXTRACT(MONTH FROM end_date_time) AS INTEGER)",
		chargingEvents: "COUNT(DISTINCT EXTRACT(DAY FROM end_date_time)) FILTER (WHERE total_usage_kwh > 0)",
		usageSum:       "CAST(SUM(total_usage_kwh) AS DOUBLE PRECISION)",
		year:           "to_char(end_date_time, 'YYYY')",
		dayName:        "to_char(end_date_time, 'FMDay')",
	},
	SQLite: {
		month:          "date(end_date_time, 'start of month')",
		yearNo:         "CAST(strftime('%Y', end_date_time) AS INTEGER)",
		monthNo:        "CAST(strftime('%m', end_date_time) AS INTEGER)",
		chargingEvents: "COUNT(DISTINCT CASE WHEN total_usage_kwh > 0 THEN strftime('%d', end_date_time) END)",
		usageSum:       "CAST(SUM(total_usage_kwh) AS REAL)",
		year:           "strftime('%Y', end_date_time)",
		dayName: `CASE strftime('%w', end_date_time)
            WHEN '0' THEN 'Sunday'
            WHEN '1' THEN 'Monday'
            WHEN '2' THEN 'Tuesday'
            WHEN '3' THEN 'Wednesday'
            WHEN '4' THEN 'Thursday'
            WHEN '5' THEN 'Friday'
            ELSE 'Saturday'
        END`,
	},
}

// ParseDialect maps a config value onto a Dialect
func ParseDialect(s string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := dialects[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
	return d, nil
}

// ValidateSchema checks that schema is a plain (optionally db-qualified) identifier
func ValidateSchema(schema string) error {
	if !identPattern.MatchString(schema) {
		return fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}
	return nil
}

func prepare(schema string, dialect Dialect) (fragments, string, error) {
	if err := ValidateSchema(schema); err != nil {
		return fragments{}, "", err
	}
	f, ok := dialects[dialect]
	if !ok {
		return fragments{}, "", fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	return f, schema + "." + FactTable, nil
}

// MonthlyUsage returns the query for total kWh and charging events per month
// for each meter. Charging events count distinct days with positive usage.
//
// Columns: month, year_no, month_no, meter_name, charging_events, total_usage_kwh
func MonthlyUsage(schema string, dialect Dialect) (string, error) {
	f, table, err := prepare(schema, dialect)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`
    SELECT
        %[1]s AS month,
        %[2]s AS year_no,
        %[3]s AS month_no,
        meter_name,
        %[4]s AS charging_events,
        %[5]s AS total_usage_kwh
    FROM %[6]s
    GROUP BY
        %[1]s,
        %[2]s,
        %[3]s,
        meter_name
    ORDER BY
        year_no,
        month_no,
        meter_name;
    `, f.month, f.yearNo, f.monthNo, f.chargingEvents, f.usageSum, table), nil
}

// WeekdayUsage returns the query for kWh per year, day name and meter.
// Zero and negative readings are excluded.
//
// Columns: year, day_name, meter_name, total_usage_kwh
func WeekdayUsage(schema string, dialect Dialect) (string, error) {
	f, table, err := prepare(schema, dialect)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`
    SELECT
        %[1]s AS year,
        %[2]s AS day_name,
        meter_name,
        %[3]s AS total_usage_kwh
    FROM %[4]s
    WHERE total_usage_kwh > 0
    GROUP BY
        %[1]s,
        %[2]s,
        meter_name
    ORDER BY
        meter_name,
        year;
    `, f.year, f.dayName, f.usageSum, table), nil
}
