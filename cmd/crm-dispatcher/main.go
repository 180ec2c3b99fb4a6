package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	pkgcmd "github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/cmd"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/config"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "crm-dispatcher",
		Usage:                 "Dispatch entity mutation events to workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dispatcher-id",
				Aliases: []string{"id"},
				Usage:   "Custom dispatcher ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("DISPATCHER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus channel (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the dispatcher YAML config (queue receiver settings)",
				Value:   "",
				Sources: cli.EnvVars("DISPATCHER_CONFIG"),
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

			dispatcherID := command.String("dispatcher-id")
			if dispatcherID == "" {
				dispatcherID = fmt.Sprintf("dispatcher-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("dispatcher")
			logger.InfoContext(ctx, "Initializing CRM dispatcher", "dispatcher_id", dispatcherID)

			pkgcmd.SetupTracing(ctx, logger, "crm-dispatcher")

			cfg, err := config.LoadDispatcherConfig(command.String("config"))
			if err != nil {
				return err
			}

			persistence, err := pkgcmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := pkgcmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			registry := pkgcmd.NewRegistry(logger, persistence)

			dispatcher, err := NewDispatcher(dispatcherID, persistence, eventBus, logger, registry, cfg.Queue)
			if err != nil {
				return err
			}

			return dispatcher.Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
