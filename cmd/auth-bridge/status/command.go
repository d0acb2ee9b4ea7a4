package status

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/auth-bridge/internal/business"
	"github.com/openkcm/auth-bridge/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"status",
		"Auth Bridge session status",
		"Auth Bridge session status asks the backend whether it holds a session",
		buildInfo,
		cmdutils.RunAsJob,
		business.StatusMain,
	)
}
