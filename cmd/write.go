package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	flagMessage string
	flagYes     bool
)

var commitCmd = &cobra.Command{
	Use:   "commit -m <message> <path>...",
	Short: "Stage every change and commit it in each repository",
	Long: `Stage all changes, untracked files included, and commit them on top of
HEAD with the same message in every repository. The message may not be
empty or longer than 10000 characters; NUL characters are removed and only
the first 100 lines are kept.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run(func(a *app, args []string) error {
		if len(args) == 1 {
			hash, err := a.client.Commit(args[0], flagMessage)
			if err != nil {
				return err
			}
			return a.printer.Commit(args[0], hash)
		}
		return a.finish("commit", args, a.client.CommitMany(args, flagMessage))
	}),
}

var pushCmd = &cobra.Command{
	Use:   "push <path>...",
	Short: "Push the current branch of each repository to origin",
	Args:  cobra.MinimumNArgs(1),
	RunE: run(func(a *app, args []string) error {
		return each(a, "push", args, a.client.Push, a.client.PushMany)
	}),
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <path>...",
	Short: "Fetch origin in each repository without touching local branches",
	Args:  cobra.MinimumNArgs(1),
	RunE: run(func(a *app, args []string) error {
		return each(a, "fetch", args, a.client.Fetch, a.client.FetchMany)
	}),
}

var pullCmd = &cobra.Command{
	Use:   "pull <path>...",
	Short: "Fast-forward the current branch of each repository to origin",
	Long: `Fetch the current branch from origin and fast-forward to it. A
repository whose branch has diverged from origin fails and is left
untouched; gitfleet never merges.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run(func(a *app, args []string) error {
		return each(a, "pull", args, a.client.Pull, a.client.PullMany)
	}),
}

var discardCmd = &cobra.Command{
	Use:   "discard --yes <path>...",
	Short: "Throw away all uncommitted changes in each repository",
	Long: `Reset tracked files to HEAD and delete untracked files. Ignored files
are kept. This cannot be undone, so --yes is required.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run(func(a *app, args []string) error {
		if !flagYes {
			return errors.New("discard deletes uncommitted work and cannot be undone; pass --yes to confirm")
		}
		return each(a, "discard", args, a.client.Discard, a.client.DiscardMany)
	}),
}

// each runs single for one path, so its error surfaces unchanged, and many
// for several.
func each(a *app, operation string, args []string, single func(string) error, many func([]string) []string) error {
	if len(args) == 1 {
		if err := single(args[0]); err != nil {
			return err
		}
		return a.printer.Paths(args)
	}
	return a.finish(operation, args, many(args))
}

func init() {
	commitCmd.Flags().StringVarP(&flagMessage, "message", "m", "", "commit message")
	_ = commitCmd.MarkFlagRequired("message")
	discardCmd.Flags().BoolVar(&flagYes, "yes", false, "confirm that changes should be discarded")
	rootCmd.AddCommand(commitCmd, pushCmd, fetchCmd, pullCmd, discardCmd)
}
