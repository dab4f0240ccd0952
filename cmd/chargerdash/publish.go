package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/chargerdash/internal/dashboard"
	"github.com/jgoulah/chargerdash/internal/pivot"
	"github.com/jgoulah/chargerdash/internal/publisher"
)

var (
	publishStart string
	publishEnd   string
	publishMeter string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish per-meter totals to MQTT and Home Assistant",
	Long: `Computes each meter's charging events and total kWh for the date range and
publishes them as retained MQTT messages and/or Home Assistant sensor states.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishStart, "start", "", "Start date (YYYY-MM-DD or relative like 30d, default: earliest month)")
	publishCmd.Flags().StringVar(&publishEnd, "end", "", "End date (YYYY-MM-DD, default: today)")
	publishCmd.Flags().StringVar(&publishMeter, "meter", "", "Only publish this meter (default: all meters)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	pub, err := publisher.New(s.cfg.MQTT, s.cfg.HomeAssistant, s.logger)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	f, err := s.load(ctx, publishStart, publishEnd)
	if err != nil {
		return err
	}

	metrics := pivot.AllTime(f.Monthly)
	if publishMeter != "" {
		var only []pivot.MeterMetric
		for _, m := range metrics {
			if m.Meter == publishMeter {
				only = append(only, m)
			}
		}
		metrics = only
	}
	if len(metrics) == 0 {
		fmt.Println(dashboard.NoDataWarning)
		return nil
	}

	for _, m := range metrics {
		fmt.Printf("%s: %d events, %s kWh\n", m.Meter, m.ChargingEvents, m.Display(pivot.TotalUsageKWh))
	}

	sent, err := pub.Publish(ctx, metrics)
	if err != nil {
		return fmt.Errorf("publishing (after %d values): %w", sent, err)
	}

	fmt.Printf("✓ Published %d values for %d meters\n", sent, len(metrics))
	return nil
}
