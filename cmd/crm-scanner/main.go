// Package main provides the periodic automation rule scanner.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/automation"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/cmd"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/log"
)

const defaultCadence = "*/5 * * * *"

func main() {
	command := &cli.Command{
		Name:                  "crm-scanner",
		Usage:                 "Scan automation rules and create follow-up tasks",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "cadence",
				Usage:   "Cron expression controlling how often the scan runs",
				Value:   defaultCadence,
				Sources: cli.EnvVars("SCAN_CADENCE"),
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single scan pass and exit",
			},
			&cli.DurationFlag{
				Name:    "deal-stage-lookback",
				Usage:   "How far back a deal stage change still counts as recent",
				Value:   time.Hour,
				Sources: cli.EnvVars("DEAL_STAGE_LOOKBACK"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("scanner")
			logger.InfoContext(ctx, "Initializing CRM automation scanner")

			cmd.SetupTracing(ctx, logger, "crm-scanner")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			scanner := automation.NewScanner(persistence, logger,
				automation.WithDealStageLookback(command.Duration("deal-stage-lookback")))

			runScan := func() {
				results, err := scanner.Scan(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Scan failed", "error", err)

					return
				}

				created := 0
				failed := 0

				for _, result := range results {
					created += result.TasksCreated
					if result.Err != "" {
						failed++
					}
				}

				logger.InfoContext(ctx, "Scan complete",
					"rules", len(results), "tasks_created", created, "failed_rules", failed)
			}

			if command.Bool("once") {
				runScan()

				return nil
			}

			scheduler := cron.New(cron.WithChain(
				cron.SkipIfStillRunning(cron.DefaultLogger),
				cron.Recover(cron.DefaultLogger),
			))

			if _, err := scheduler.AddFunc(command.String("cadence"), runScan); err != nil {
				return err
			}

			scheduler.Start()
			logger.InfoContext(ctx, "Scanner started", "cadence", command.String("cadence"))

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			logger.InfoContext(ctx, "Shutting down scanner")
			<-scheduler.Stop().Done()

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
