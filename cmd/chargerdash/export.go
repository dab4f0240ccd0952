package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/chargerdash/internal/dashboard"
	"github.com/jgoulah/chargerdash/internal/pivot"
)

var (
	exportStart string
	exportEnd   string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the monthly summary as CSV",
	Long:  `Writes the monthly pivot table with totals as CSV, the same table the dashboard offers for download.`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportStart, "start", "", "Start date (YYYY-MM-DD or relative like 90d, default: earliest month)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "End date (YYYY-MM-DD, default: today)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: monthly_summary_<start>_<end>.csv, - for stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := s.load(ctx, exportStart, exportEnd)
	if err != nil {
		return err
	}
	if len(f.Monthly) == 0 {
		return errors.New(dashboard.NoDataWarning)
	}

	records := pivot.Monthly(f.Monthly).WithTotals().Records()

	out := exportOut
	if out == "" {
		out = fmt.Sprintf("monthly_summary_%s_%s.csv",
			f.Range.Start.Format("2006-01-02"), f.Range.End.Format("2006-01-02"))
	}
	if out == "-" {
		return writeCSV(os.Stdout, records)
	}

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := writeCSV(file, records); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out, err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return fmt.Errorf("stat %s: %w", out, err)
	}
	fmt.Printf("✓ Wrote %d rows to %s (%s)\n", len(records)-1, out, humanize.Bytes(uint64(info.Size())))
	return nil
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
