package theme

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/auth-bridge/internal/business"
	"github.com/openkcm/auth-bridge/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"theme",
		"Auth Bridge theme toggle",
		"Auth Bridge theme toggle flips the persisted light/dark preference",
		buildInfo,
		cmdutils.RunAsJob,
		business.ThemeMain,
	)
}
