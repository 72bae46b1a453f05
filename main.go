// Program comboforge consolidates variant files, scores every unique variant
// against the round history, and writes the two-segment selection in the
// exchange format.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// newRootCmd builds a fresh command tree so tests can execute commands
// without sharing flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "comboforge",
		Short:         "Consolidate, score and select number variants",
		Long:          "comboforge merges variant files, removes duplicates, scores each variant\nby how many historical rounds contain it, and allocates the final selection.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "comboforge %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
