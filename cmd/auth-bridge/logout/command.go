package logout

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/auth-bridge/internal/business"
	"github.com/openkcm/auth-bridge/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"logout",
		"Auth Bridge logout",
		"Auth Bridge logout tears down the backend session and the provider state",
		buildInfo,
		cmdutils.RunAsJob,
		business.LogoutMain,
	)
}
