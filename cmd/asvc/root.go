package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "asvc",
		Short:         "Inspect application-services component databases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlacesCmd())
	root.AddCommand(newLoginsCmd())
	return root
}
