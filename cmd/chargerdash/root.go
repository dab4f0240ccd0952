package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jgoulah/chargerdash/internal/config"
	"github.com/jgoulah/chargerdash/internal/dashboard"
	"github.com/jgoulah/chargerdash/internal/database"
	"github.com/jgoulah/chargerdash/internal/pivot"
)

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "chargerdash",
	Short: "Analyze EV charger usage from the meter readings warehouse",
	Long: `ChargerDash serves an interactive dashboard of EV charger energy usage.
It aggregates meter readings in the warehouse by month and by day of the week,
and can also print, export, publish or screenshot the same summaries.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "secrets file (default is ./.env)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getEnvPath returns the secrets file path
func getEnvPath() string {
	if envFile != "" {
		return envFile
	}
	return config.DefaultEnvPath()
}

// loadConfig loads secrets from the env file and then the configuration file
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(getEnvPath()); err != nil {
		return nil, err
	}
	return config.Load(getConfigPath())
}

// newLogger builds the structured logger described by cfg
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	return zc.Build()
}

// openDB opens the warehouse connection
func openDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	return database.Open(ctx, cfg.Datasource, logger)
}

// parseDate parses a date string in either YYYY-MM-DD format or relative format (e.g., "90d")
func parseDate(dateStr string, now time.Time) (time.Time, error) {
	t, err := time.Parse("2006-01-02", dateStr)
	if err == nil {
		return t, nil
	}

	if len(dateStr) > 1 && dateStr[len(dateStr)-1] == 'd' {
		daysStr := dateStr[:len(dateStr)-1]
		var days int
		if _, err := fmt.Sscanf(daysStr, "%d", &days); err == nil && days >= 0 {
			return now.AddDate(0, 0, -days), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days ago)", dateStr)
}

// parseRange turns --start/--end flag values into a range, or nil when
// neither is set
func parseRange(start, end string, now time.Time) (*pivot.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	var r pivot.DateRange
	if start != "" {
		t, err := parseDate(start, now)
		if err != nil {
			return nil, fmt.Errorf("parsing --start date: %w", err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := parseDate(end, now)
		if err != nil {
			return nil, fmt.Errorf("parsing --end date: %w", err)
		}
		r.End = t
	}
	return &r, nil
}

// session is the config, logger and warehouse shared by data commands
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &session{cfg: cfg, logger: logger, db: db}, nil
}

func (s *session) Close() {
	s.db.Close()
	s.logger.Sync()
}

// load fetches both aggregates and narrows them to the flag range, printing
// any filter warning
func (s *session) load(ctx context.Context, start, end string) (*dashboard.Filtered, error) {
	now := time.Now()
	r, err := parseRange(start, end, now)
	if err != nil {
		return nil, err
	}
	ds, err := dashboard.Fetch(ctx, s.db)
	if err != nil {
		return nil, err
	}
	f := ds.Filter(r, now)
	for _, w := range f.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}
	return f, nil
}
