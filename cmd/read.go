package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-gitfleet/pkg/gitfleet"
)

var statusCmd = &cobra.Command{
	Use:   "status <path>",
	Short: "Show the changed and untracked files of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, args []string) error {
		st, err := a.client.Status(args[0])
		if err != nil {
			return err
		}
		return a.printer.Status(st)
	}),
}

var infoCmd = &cobra.Command{
	Use:   "info <path>...",
	Short: "Summarize branch, upstream distance and last commit of repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: run(func(a *app, args []string) error {
		if len(args) == 1 {
			info, err := a.client.Info(args[0])
			if err != nil {
				return err
			}
			return a.printer.Infos([]gitfleet.RepositoryInfo{info})
		}

		infos := a.client.InfoMany(args)
		if err := a.printer.Infos(infos); err != nil {
			return err
		}
		// Failing paths are logged by the batch; only the count is known here.
		if failed := len(args) - len(infos); failed > 0 {
			return fmt.Errorf("info failed for %d of %d repositories", failed, len(args))
		}
		return nil
	}),
}

var branchesCmd = &cobra.Command{
	Use:   "branches <path>",
	Short: "List the local branches of a repository",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, args []string) error {
		branches, err := a.client.Branches(args[0])
		if err != nil {
			return err
		}
		return a.printer.Branches(branches)
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd, infoCmd, branchesCmd)
}
