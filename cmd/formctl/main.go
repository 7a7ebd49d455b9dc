package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "formctl",
		Short:         "Offline tools for form modules, prompts, exports and reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.catalogDir, "catalog", "", "directory of module YAML files (default: embedded modules)")

	root.AddCommand(
		newValidateCmd(opts),
		newPromptCmd(opts),
		newExportCmd(opts),
		newNormalizeCmd(opts),
	)
	return root
}
