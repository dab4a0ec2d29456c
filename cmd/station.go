package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shelfpoint/shelfpoint/internal/scanner"
	"github.com/shelfpoint/shelfpoint/internal/station"
	"github.com/shelfpoint/shelfpoint/pkg/logger"
)

var stationCmd = &cobra.Command{
	Use:   "station",
	Short: "Run the interactive scan station",
	Long: `Run the scan station against a running shelfpoint server. Barcodes are
read line by line from stdin, the way a keyboard-wedge scanner types them.`,
	Run: func(cmd *cobra.Command, args []string) {
		runStation()
	},
}

func runStation() {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	client := station.NewClient(cfg.Station.ServerURL, cfg.Station.RequestTimeout)
	sink := station.NewConsoleSink(os.Stdout)
	source := station.NewLineSource(os.Stdin)

	controller := scanner.NewController(scanner.Config{
		SettleDelay:    cfg.Station.SettleDelay,
		Cooldown:       cfg.Station.Cooldown,
		RequestTimeout: cfg.Station.RequestTimeout,
		DueDays:        cfg.Station.DueDays,
	}, source, client, sink, logger.L())

	fmt.Printf("shelfpoint station connected to %s (Ctrl-C to quit)\n", cfg.Station.ServerURL)

	if err := controller.Start(); err != nil {
		log.Fatalf("failed to start scanning: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := controller.Stop(); err != nil {
		logger.L().Warn("stop scanning", "error", err)
	}
	fmt.Println("station stopped")
}
