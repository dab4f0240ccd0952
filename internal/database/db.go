package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/jgoulah/chargerdash/internal/config"
	"github.com/jgoulah/chargerdash/internal/query"
	"github.com/jgoulah/chargerdash/pkg/models"
)

// DB wraps the read-only warehouse connection
type DB struct {
	conn    *sql.DB
	dialect query.Dialect
	schema  string
	timeout time.Duration
	logger  *zap.Logger
}

// driverFor returns the database/sql driver name for a dialect
func driverFor(d query.Dialect) string {
	if d == query.SQLite {
		return "sqlite"
	}
	// DuckDB is reached through its Postgres wire endpoint
	return "pgx"
}

// Open connects to the warehouse described by ds and verifies it answers
func Open(ctx context.Context, ds config.Datasource, logger *zap.Logger) (*DB, error) {
	dialect, err := query.ParseDialect(ds.GetDialect())
	if err != nil {
		return nil, err
	}
	if err := query.ValidateSchema(ds.SchemaName); err != nil {
		return nil, err
	}

	dsn, err := ds.ConnectionString()
	if err != nil {
		return nil, fmt.Errorf("building connection string: %w", err)
	}

	conn, err := sql.Open(driverFor(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to warehouse: %w", err)
	}

	return New(conn, dialect, ds.SchemaName, ds.GetQueryTimeout(), logger), nil
}

// New wraps an existing connection
func New(conn *sql.DB, dialect query.Dialect, schema string, timeout time.Duration, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		conn:    conn,
		dialect: dialect,
		schema:  schema,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "warehouse"), zap.String("dialect", string(dialect))),
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Dialect returns the SQL dialect queries are rendered in
func (db *DB) Dialect() query.Dialect {
	return db.dialect
}

// Schema returns the schema holding fact_meter_readings
func (db *DB) Schema() string {
	return db.schema
}

func (db *DB) queryContext(ctx context.Context, name, q string) (*sql.Rows, context.CancelFunc, error) {
	cancel := func() {}
	if db.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, db.timeout)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, q)
	if err != nil {
		cancel()
		db.logger.Error("query failed", zap.String("query", name), zap.Error(err))
		return nil, nil, fmt.Errorf("running %s query: %w", name, err)
	}
	db.logger.Debug("query executed", zap.String("query", name), zap.Duration("elapsed", time.Since(start)))
	return rows, cancel, nil
}

// MonthlyUsage retrieves kWh and charging events per month and meter,
// ordered by year, month and meter
func (db *DB) MonthlyUsage(ctx context.Context) ([]models.MonthlyUsage, error) {
	q, err := query.MonthlyUsage(db.schema, db.dialect)
	if err != nil {
		return nil, err
	}

	rows, cancel, err := db.queryContext(ctx, "monthly", q)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	var results []models.MonthlyUsage
	for rows.Next() {
		var month, year, monthNo, events, usage any
		var data models.MonthlyUsage

		if err := rows.Scan(&month, &year, &monthNo, &data.MeterName, &events, &usage); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if data.Month, err = asDate(month); err != nil {
			return nil, fmt.Errorf("parsing month: %w", err)
		}
		if data.Year, err = asInt(year); err != nil {
			return nil, fmt.Errorf("parsing year_no: %w", err)
		}
		if data.MonthNo, err = asInt(monthNo); err != nil {
			return nil, fmt.Errorf("parsing month_no: %w", err)
		}
		if data.ChargingEvents, err = asInt(events); err != nil {
			return nil, fmt.Errorf("parsing charging_events: %w", err)
		}
		if data.TotalUsageKWh, err = asFloat(usage); err != nil {
			return nil, fmt.Errorf("parsing total_usage_kwh: %w", err)
		}

		results = append(results, data)
	}

	return results, rows.Err()
}

// WeekdayUsage retrieves positive kWh per year, day name and meter,
// ordered by meter and year
func (db *DB) WeekdayUsage(ctx context.Context) ([]models.WeekdayUsage, error) {
	q, err := query.WeekdayUsage(db.schema, db.dialect)
	if err != nil {
		return nil, err
	}

	rows, cancel, err := db.queryContext(ctx, "weekday", q)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	var results []models.WeekdayUsage
	for rows.Next() {
		var year, usage any
		var data models.WeekdayUsage

		if err := rows.Scan(&year, &data.DayName, &data.MeterName, &usage); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if data.Year, err = asString(year); err != nil {
			return nil, fmt.Errorf("parsing year: %w", err)
		}
		if data.TotalUsageKWh, err = asFloat(usage); err != nil {
			return nil, fmt.Errorf("parsing total_usage_kwh: %w", err)
		}

		results = append(results, data)
	}

	return results, rows.Err()
}
