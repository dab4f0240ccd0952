package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/chargerdash/internal/config"
	"github.com/jgoulah/chargerdash/internal/query"
	"github.com/jgoulah/chargerdash/pkg/models"
)

// seedWarehouse writes a small fact table into a sqlite file and returns its path
func seedWarehouse(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "warehouse.db")
	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(`
	CREATE TABLE fact_meter_readings (
		start_date_time TEXT NOT NULL,
		end_date_time TEXT NOT NULL,
		meter_name TEXT NOT NULL,
		total_usage_kwh REAL NOT NULL
	)`)
	require.NoError(t, err)

	readings := []struct {
		start, end, meter string
		kwh               float64
	}{
		{"2024-01-05 09:00:00", "2024-01-05 10:00:00", "M1", 5.0}, // Friday
		{"2024-01-05 11:00:00", "2024-01-05 12:00:00", "M1", 3.0}, // same day
		{"2024-01-07 09:00:00", "2024-01-07 10:00:00", "M1", 2.0}, // Sunday
		{"2024-01-09 09:00:00", "2024-01-09 10:00:00", "M1", 0.0}, // idle Tuesday
		{"2024-02-03 09:00:00", "2024-02-03 10:00:00", "M1", 4.0}, // Saturday
		{"2024-01-06 09:00:00", "2024-01-06 10:00:00", "M2", 6.0}, // Saturday
	}
	for _, r := range readings {
		_, err := conn.Exec(`INSERT INTO fact_meter_readings VALUES (?, ?, ?, ?)`, r.start, r.end, r.meter, r.kwh)
		require.NoError(t, err)
	}

	return path
}

func openSeeded(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), config.Datasource{
		Dialect:    "sqlite",
		DBName:     seedWarehouse(t),
		SchemaName: "main",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMonthlyUsage(t *testing.T) {
	db := openSeeded(t)
	assert.Equal(t, query.SQLite, db.Dialect())
	assert.Equal(t, "main", db.Schema())

	rows, err := db.MonthlyUsage(context.Background())
	require.NoError(t, err)

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	want := []models.MonthlyUsage{
		{Month: jan, Year: 2024, MonthNo: 1, MeterName: "M1", ChargingEvents: 2, TotalUsageKWh: 10},
		{Month: jan, Year: 2024, MonthNo: 1, MeterName: "M2", ChargingEvents: 1, TotalUsageKWh: 6},
		{Month: feb, Year: 2024, MonthNo: 2, MeterName: "M1", ChargingEvents: 1, TotalUsageKWh: 4},
	}
	assert.Equal(t, want, rows)
}

func TestWeekdayUsage(t *testing.T) {
	db := openSeeded(t)

	rows, err := db.WeekdayUsage(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []models.WeekdayUsage{
		{Year: "2024", DayName: "Friday", MeterName: "M1", TotalUsageKWh: 8},
		{Year: "2024", DayName: "Sunday", MeterName: "M1", TotalUsageKWh: 2},
		{Year: "2024", DayName: "Saturday", MeterName: "M1", TotalUsageKWh: 4},
		{Year: "2024", DayName: "Saturday", MeterName: "M2", TotalUsageKWh: 6},
	}, rows)

	// ordered by meter first
	require.Len(t, rows, 4)
	assert.Equal(t, "M2", rows[3].MeterName)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.Datasource{Dialect: "sqlite", DBName: "x.db", SchemaName: "bad schema"}, nil)
	assert.ErrorIs(t, err, query.ErrInvalidSchema)

	_, err = Open(ctx, config.Datasource{Dialect: "oracle", DBName: "x", SchemaName: "main"}, nil)
	assert.ErrorIs(t, err, query.ErrUnknownDialect)

	_, err = Open(ctx, config.Datasource{Dialect: "duckdb", DBName: "chargers", SchemaName: "main"}, nil)
	assert.Error(t, err)
}

func TestMissingTableSurfacesError(t *testing.T) {
	db := openSeeded(t)
	other := New(db.conn, query.SQLite, "temp", time.Second, nil)

	_, err := other.MonthlyUsage(context.Background())
	assert.Error(t, err)
}

func TestScanHelpers(t *testing.T) {
	d, err := asDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = asDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.FixedZone("x", 3600)))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Day())

	_, err = asDate("March")
	assert.Error(t, err)

	i, err := asInt([]byte("12"))
	require.NoError(t, err)
	assert.Equal(t, 12, i)

	i, err = asInt("2024.0")
	require.NoError(t, err)
	assert.Equal(t, 2024, i)

	f, err := asFloat(nil)
	require.NoError(t, err)
	assert.Zero(t, f)

	f, err = asFloat("10.25")
	require.NoError(t, err)
	assert.InDelta(t, 10.25, f, 1e-9)

	s, err := asString(int64(2024))
	require.NoError(t, err)
	assert.Equal(t, "2024", s)
}
