package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
	"github.com/spf13/cobra"

	"github.com/jgoulah/chargerdash/internal/dashboard"
	"github.com/jgoulah/chargerdash/internal/pivot"
)

var (
	summaryStart string
	summaryEnd   string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the monthly usage summary",
	Long:  `Prints all-time totals per meter, the monthly pivot table with totals, and usage by day of the week.`,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryStart, "start", "", "Start date (YYYY-MM-DD or relative like 90d, default: earliest month)")
	summaryCmd.Flags().StringVar(&summaryEnd, "end", "", "End date (YYYY-MM-DD, default: today)")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	f, err := s.load(ctx, summaryStart, summaryEnd)
	if err != nil {
		return err
	}

	if len(f.Monthly) == 0 {
		fmt.Println(dashboard.NoDataWarning)
		return nil
	}

	if err := pivot.CheckEventBounds(f.Monthly); err != nil {
		fmt.Printf("⚠ %v\n", err)
	}

	fmt.Printf("\nUsage from %s to %s\n", rangeLabel(f.Range.Start), rangeLabel(f.Range.End))

	fmt.Println("\nAll-Time Usage:")
	fmt.Println("----------------------------------------")
	fmt.Printf("%-16s  %10s  %14s\n", "Meter", "Events", "kWh")
	fmt.Println("----------------------------------------")
	for _, m := range pivot.AllTime(f.Monthly) {
		fmt.Printf("%-16s  %10s  %14s\n", m.Meter,
			humanize.Comma(int64(m.ChargingEvents)), humanize.CommafWithDigits(m.TotalUsageKWh, 2))
	}

	fmt.Println("\nMonthly Summary:")
	printRecords(pivot.Monthly(f.Monthly).WithTotals().Records())

	if len(f.Weekday) == 0 {
		fmt.Printf("\nUsage by Day of the Week: %s\n", dashboard.NoDataWarning)
		return nil
	}
	fmt.Println("\nUsage by Day of the Week (kWh):")
	fmt.Println("----------------------------------------")
	fmt.Printf("%-10s  %-16s  %-6s  %12s\n", "Day", "Meter", "Year", "kWh")
	fmt.Println("----------------------------------------")
	for _, w := range f.Weekday {
		fmt.Printf("%-10s  %-16s  %-6s  %12s\n", w.DayName, w.MeterName, w.Year, humanize.CommafWithDigits(w.TotalUsageKWh, 2))
	}
	return nil
}

func rangeLabel(t time.Time) string {
	if t.IsZero() {
		return "the beginning"
	}
	return strftime.Format("%b %Y", t)
}

// printRecords prints string records as a left-aligned first column followed
// by right-aligned value columns sized to their content
func printRecords(records [][]string) {
	if len(records) == 0 {
		return
	}
	widths := make([]int, len(records[0]))
	for _, rec := range records {
		for i, cell := range rec {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	rule := strings.Repeat("-", total)

	for i, rec := range records {
		if i == 1 || i == len(records)-1 {
			fmt.Println(rule)
		}
		var b strings.Builder
		for j, cell := range rec {
			if j == 0 {
				fmt.Fprintf(&b, "%-*s", widths[j], cell)
				continue
			}
			fmt.Fprintf(&b, "  %*s", widths[j], cell)
		}
		fmt.Println(b.String())
	}
}
