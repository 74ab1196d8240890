package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"elessar/internal"
)

var (
	formatFlag string
	deepFlag   bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [folder]",
	Short: "Summarize an organized collection",
	Long: `Scan an organized output directory and report per-extension counts and
sizes plus the embedded date range. With --exiftool, container formats are
also read through exiftool and GPS coverage is counted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := args[0]

		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("folder does not exist or is not a directory: %s", folder)
		}

		opts := internal.InspectOptions{
			Format: formatFlag,
			Deep:   deepFlag,
		}

		stats, err := internal.InspectCollection(folder, opts)
		if err != nil {
			return fmt.Errorf("failed to inspect collection: %w", err)
		}

		out, err := internal.RenderStats(stats, opts)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, json")
	inspectCmd.Flags().BoolVar(&deepFlag, "exiftool", false, "Read container tags through exiftool (slower)")

	rootCmd.AddCommand(inspectCmd)
}
