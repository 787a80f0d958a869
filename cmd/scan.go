package cmd

import (
	"github.com/spf13/cobra"
)

var (
	flagMaxDepth   int
	flagSequential bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <root>",
	Short: "List the git repositories below a directory",
	Long: `Walk root and print every directory that holds a .git directory.

Hidden directories, dependency caches and build output are skipped, and
operating-system directories such as /etc or /usr/bin are refused.`,
	Args: cobra.ExactArgs(1),
	RunE: run(func(a *app, args []string) error {
		paths, err := a.client.Scan(args[0])
		if err != nil {
			return err
		}
		return a.printer.Paths(paths)
	}),
}

func init() {
	scanCmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, "maximum directory depth (default 20, at most 50)")
	scanCmd.Flags().BoolVar(&flagSequential, "sequential", false, "walk on a single goroutine")
	rootCmd.AddCommand(scanCmd)
}
