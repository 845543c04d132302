package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print one name<TAB>description line per task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := prepare(cmd, flags, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range s.tasks.Names() {
				fmt.Fprintf(out, "%s\t%s\n", name, s.tasks[name].Desc)
			}
			return nil
		},
	}
}
