package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/chargerdash/internal/config"
	"github.com/jgoulah/chargerdash/internal/snapshot"
)

var (
	snapshotURL     string
	snapshotOut     string
	snapshotWidth   int64
	snapshotVisible bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a PNG screenshot of a running dashboard",
	Long: `Opens the dashboard in headless Chrome, waits for the charts to render, and
saves a full page screenshot. The dashboard must already be served.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotURL, "url", "", "Dashboard URL (default: http://localhost<addr>/)")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "dashboard.png", "Output PNG file")
	snapshotCmd.Flags().Int64Var(&snapshotWidth, "width", 1400, "Viewport width in pixels")
	snapshotCmd.Flags().BoolVar(&snapshotVisible, "visible", false, "Show browser window (for debugging)")
	rootCmd.AddCommand(snapshotCmd)
}

// defaultDashboardURL points at the locally served dashboard
func defaultDashboardURL(server config.ServerConfig) string {
	addr := server.GetAddr()
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Snapshot started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	target := snapshotURL
	if target == "" {
		target = defaultDashboardURL(cfg.Server)
	}

	if err := snapshot.Capture(cmd.Context(), snapshot.Options{
		URL:     target,
		Out:     snapshotOut,
		Width:   snapshotWidth,
		Visible: snapshotVisible,
	}, logger); err != nil {
		return err
	}

	info, err := os.Stat(snapshotOut)
	if err != nil {
		return fmt.Errorf("stat %s: %w", snapshotOut, err)
	}
	fmt.Printf("✓ Saved %s (%s)\n", snapshotOut, humanize.Bytes(uint64(info.Size())))
	return nil
}
