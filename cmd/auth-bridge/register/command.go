package register

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkcm/auth-bridge/internal/business"
	"github.com/openkcm/auth-bridge/internal/cmdutils"
	"github.com/openkcm/auth-bridge/internal/config"
	"github.com/openkcm/auth-bridge/internal/wizard"
)

func Cmd(buildInfo string) *cobra.Command {
	var (
		creds   wizard.Credentials
		profile wizard.Profile
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Auth Bridge registration",
		Long:  "Auth Bridge registration creates the identity provider account and submits the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutils.LoadConfig(buildInfo)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			err = cmdutils.RunAsJob(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
				return business.RegisterMain(ctx, cfg, creds, profile)
			}, cfg)
			if err != nil {
				return fmt.Errorf("running the command: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.Flags().StringVar(&creds.ConfirmPassword, "confirm-password", "", "account password, repeated")

	cmd.Flags().StringVar(&profile.FullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&profile.BirthDate, "birth-date", "", "birth date, YYYY-MM-DD")
	cmd.Flags().StringVar(&profile.CPF, "cpf", "", "CPF number")
	cmd.Flags().StringVar(&profile.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&profile.AccountType, "account-type", "", "individual or professional")
	cmd.Flags().StringVar(&profile.ProfessionalKind, "professional-kind", "", "professional kind")
	cmd.Flags().StringVar(&profile.RegistrationNumber, "registration-number", "", "professional registration number")
	cmd.Flags().StringVar(&profile.RegistrationIssuer, "registration-issuer", "", "professional registration issuer")
	cmd.Flags().StringVar(&profile.RegistrationState, "registration-state", "", "professional registration state")

	return cmd
}
