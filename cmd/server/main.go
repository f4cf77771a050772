package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	serve := newServeCommand()

	rootCmd := &cobra.Command{
		Use:   "road-treatment",
		Short: "Road treatment dispatch backend",
		Long:  `Dispatch API for bridge treatment tickets, truck reservations and material stock, with a realtime event channel.`,
		RunE:  serve.RunE,
	}
	rootCmd.Flags().AddFlagSet(serve.Flags())
	rootCmd.AddCommand(serve, newMigrateCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
