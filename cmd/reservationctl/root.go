package main

import (
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reservationctl",
		Short:         "Operator tooling for the bookstore reservation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newCheckTableCmd())
	root.AddCommand(newSlotsCmd())

	return root
}
