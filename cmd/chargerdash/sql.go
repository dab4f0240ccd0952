package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jgoulah/chargerdash/internal/query"
)

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Print the aggregate queries",
	Long:  `Prints the monthly and day-of-week SQL generated for the configured schema and dialect without connecting to the warehouse.`,
	RunE:  runSQL,
}

func init() {
	rootCmd.AddCommand(sqlCmd)
}

func runSQL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dialect, err := query.ParseDialect(cfg.Datasource.GetDialect())
	if err != nil {
		return err
	}

	monthly, err := query.MonthlyUsage(cfg.Datasource.SchemaName, dialect)
	if err != nil {
		return err
	}
	weekday, err := query.WeekdayUsage(cfg.Datasource.SchemaName, dialect)
	if err != nil {
		return err
	}

	fmt.Printf("-- monthly usage (%s)\n%s\n\n", dialect, strings.TrimSpace(monthly))
	fmt.Printf("-- weekday usage (%s)\n%s\n", dialect, strings.TrimSpace(weekday))
	return nil
}
