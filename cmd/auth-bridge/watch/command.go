package watch

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/auth-bridge/internal/business"
	"github.com/openkcm/auth-bridge/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"watch",
		"Auth Bridge liveness watch",
		"Auth Bridge liveness watch polls the backend health endpoint and reports recoveries",
		buildInfo,
		cmdutils.RunAsService,
		business.WatchMain,
	)
}
