package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/automation"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/cmd"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/log"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the active automation rules",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("scanner").With("action", "validate")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			scanner := automation.NewScanner(persistence, logger)

			rules, err := persistence.Rules().ActiveRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch rules: %w", err)
			}

			logger.InfoContext(ctx, "Validating rules", "rules", len(rules))

			fmt.Println("Rule Validation Results:")
			fmt.Println("========================")

			invalid := 0

			for _, rule := range rules {
				fmt.Printf("\nRule: %s (%s)\n", rule.Name, rule.ID)

				if err := scanner.ValidateRule(rule); err != nil {
					fmt.Printf("    ❌ INVALID: %v\n", err)

					invalid++

					continue
				}

				fmt.Printf("    ✅ VALID\n")
			}

			fmt.Printf("\nValidation Summary:\n")
			fmt.Printf("  Total rules: %d\n", len(rules))
			fmt.Printf("  Invalid rules: %d\n", invalid)

			if invalid > 0 {
				return fmt.Errorf("found %d invalid rules", invalid)
			}

			fmt.Println("All rules are valid! ✅")

			return nil
		},
	}
}
