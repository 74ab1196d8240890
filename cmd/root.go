package cmd

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "elessar",
	Short:   "Google Takeout media organizer",
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}
