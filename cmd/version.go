package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcmanager/devtask/pkg/buildinfo"
	"github.com/mcmanager/devtask/pkg/taskrun"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String(taskrun.Program))
		},
	}
}
