package login

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkcm/auth-bridge/internal/business"
	"github.com/openkcm/auth-bridge/internal/cmdutils"
	"github.com/openkcm/auth-bridge/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Auth Bridge login",
		Long:  "Auth Bridge login signs in at the identity provider and establishes the backend session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutils.LoadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			err = cmdutils.RunAsJob(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
				return business.LoginMain(ctx, cfg, email, password)
			}, cfg)
			if err != nil {
				return fmt.Errorf("running the command: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")

	return cmd
}
