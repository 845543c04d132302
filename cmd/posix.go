package cmd

import (
	"path/filepath"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mcmanager/devtask/pkg/fsops"
)

// expandArgs resolves glob patterns on Windows where the shell doesn't do it for us.
// Patterns without matches are dropped when allowEmpty is set.
func expandArgs(args []string, allowEmpty bool) ([]string, error) {
	if runtime.GOOS != "windows" {
		return args, nil
	}

	items := []string{}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to resolve pattern %s", arg)
		}

		if matches == nil {
			if allowEmpty {
				continue
			}
			return nil, eris.Errorf("pattern %s produced no matches", arg)
		}

		items = append(items, matches...)
	}
	return items, nil
}

func newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv SOURCE... DEST",
		Short: "Cross-platform implementation of the POSIX mv command",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := expandArgs(args[:len(args)-1], false)
			if err != nil {
				return err
			}

			return fsops.Move(items, args[len(args)-1])
		},
	}
}

func newRmCmd() *cobra.Command {
	rmCmd := &cobra.Command{
		Use:   "rm PATH...",
		Short: "A cross-platform implementation of the POSIX rm command",
		RunE: func(cmd *cobra.Command, args []string) error {
			recursive, err := cmd.Flags().GetBool("recursive")
			if err != nil {
				return err
			}

			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}

			items, err := expandArgs(args, force)
			if err != nil {
				return err
			}

			return fsops.Remove(items, recursive, force)
		},
	}

	rmCmd.Flags().BoolP("recursive", "r", false, "recursively delete directories")
	rmCmd.Flags().BoolP("force", "f", false, "suppresses errors caused by missing files/folders")
	return rmCmd
}

func newMkdirCmd() *cobra.Command {
	mkdirCmd := &cobra.Command{
		Use:   "mkdir DIR...",
		Short: "A cross-platform implementation of the POSIX mkdir command",
		RunE: func(cmd *cobra.Command, args []string) error {
			parents, err := cmd.Flags().GetBool("parents")
			if err != nil {
				return err
			}

			return fsops.Mkdir(args, parents)
		},
	}

	mkdirCmd.Flags().BoolP("parents", "p", false, "create parent directories as needed")
	return mkdirCmd
}
