package main

import (
	"github.com/spf13/cobra"

	"github.com/j-veylop/weekly-report/internal/logger"
	"github.com/j-veylop/weekly-report/internal/mail"
	"github.com/j-veylop/weekly-report/internal/services"
)

func newSendCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Compute the weekly digest and email it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			// Nothing is computed until every mail setting is present.
			if err := cfg.ValidateMail(); err != nil {
				return err
			}

			source, release, err := services.OpenSource(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := release(); closeErr != nil {
					logger.Warn("failed to close catalog", "error", closeErr)
				}
			}()

			client, err := mail.NewClient(cfg.Mail.SMTP, cfg.Mail.SendTimeout)
			if err != nil {
				return err
			}
			dispatcher, err := mail.New(cfg.Mail, client)
			if err != nil {
				return err
			}

			runner, err := services.NewRunner(cfg, source,
				services.WithDispatcher(dispatcher),
				services.WithOutput(c.stdout),
			)
			if err != nil {
				return err
			}
			return runner.Run(cmd.Context())
		},
	}
}
