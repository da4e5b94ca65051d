// cmd/scan/main.go
package main

import (
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/warewolf/demand-engine/internal/cache"
	"github.com/warewolf/demand-engine/internal/detector"
	"github.com/warewolf/demand-engine/internal/notify"
	"github.com/warewolf/demand-engine/internal/repository/postgres"
	"github.com/warewolf/demand-engine/internal/service"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "scan",
		Usage: "Run demand anomaly detection (robust MAD z-score) and store results",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.IntFlag{Name: "days-back", Value: 120, Usage: "Lookback window in days"},
			&cli.IntFlag{Name: "recent-days", Value: 14, Usage: "Only flag anomalies in the most recent N days"},
			&cli.IntFlag{Name: "min-points", Value: 21, Usage: "Minimum series length to scan an item"},
			&cli.Float64Flag{Name: "z-low", Value: 3.0, Usage: "Candidate z-score threshold"},
			&cli.Float64Flag{Name: "z-med", Value: 4.0, Usage: "MEDIUM severity z-score threshold"},
			&cli.Float64Flag{Name: "z-high", Value: 5.0, Usage: "HIGH severity z-score threshold"},
			&cli.IntFlag{Name: "workers", Value: 4, Usage: "Per-item scan concurrency"},
			&cli.BoolFlag{Name: "notify", Value: true, Usage: "Fan out notifications for new MEDIUM/HIGH anomalies"},
			&cli.IntFlag{Name: "notify-cap", Value: 25, Usage: "Maximum items to notify about per run"},
		},
		Action: runScan,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runScan(c *cli.Context) error {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return err
	}
	defer db.Close()

	saleRepo := postgres.NewSaleRepository(db)
	anomalyRepo := postgres.NewAnomalyRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	notifier := notify.NewNotifier(itemRepo, notificationRepo, c.Int("notify-cap"))
	svc := service.NewAnomalyService(saleRepo, anomalyRepo, notifier, cache.NewNoopAnomalyCache())

	cfg := detector.Config{
		LookbackDays: c.Int("days-back"),
		RecentDays:   c.Int("recent-days"),
		MinPoints:    c.Int("min-points"),
		ZLow:         c.Float64("z-low"),
		ZMed:         c.Float64("z-med"),
		ZHigh:        c.Float64("z-high"),
		Workers:      c.Int("workers"),
	}

	summary, _, err := svc.RunScan(c.Context, cfg, c.Bool("notify"))
	if err != nil {
		return err
	}

	fmt.Printf("Detected %d anomalies. New records created: %d.\n", summary.Detected, summary.Created)
	return nil
}
