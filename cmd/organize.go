package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"elessar/internal"
)

var (
	takeoutFlag  string
	outputFlag   string
	failFastFlag bool
	watchFlag    bool
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Match takeout media to sidecar metadata and build the collection",
	Long: `Walk a Google Takeout directory, pair every media file with its JSON
sidecar by title, and save matched items into a flat, deduplicated,
content-addressed output directory with timestamp and GPS tags embedded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, dir := range []string{takeoutFlag} {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("folder does not exist or is not a directory: %s", dir)
			}
		}

		conf, err := internal.LoadConfig()
		if err != nil {
			return err
		}
		logger := internal.NewLogger(conf.LogLevel)

		if err := internal.CheckTools(conf.ExiftoolBin, conf.FfmpegBin); err != nil {
			return err
		}

		pipeline := &internal.Pipeline{
			Config: conf,
			Tools: internal.Tools{
				Tags:  internal.NewExifTool(conf.ExiftoolBin, conf.ToolTimeout),
				Remux: internal.NewFFmpeg(conf.FfmpegBin, conf.ToolTimeout),
			},
			Log:      logger,
			FailFast: failFastFlag,
		}

		runOnce := func() (*internal.Report, error) {
			report, err := pipeline.Run(cmd.Context(), takeoutFlag, outputFlag)
			if report != nil {
				fmt.Print(report.Render())
			}
			return report, err
		}

		report, err := runOnce()
		if err != nil {
			return err
		}

		if !watchFlag {
			if report.HasFailures() {
				return fmt.Errorf("%d items failed", len(report.Failures))
			}
			return nil
		}

		watcher, err := internal.NewWatcher(takeoutFlag, 2*time.Second)
		if err != nil {
			return err
		}
		defer watcher.Close()
		logger.Info().Str("dir", takeoutFlag).Msg("watching for new takeout files")

		for {
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-watcher.Changed:
				if _, err := runOnce(); err != nil {
					return err
				}
			}
		}
	},
}

func init() {
	organizeCmd.Flags().StringVarP(&takeoutFlag, "takeout", "t", "", "Google Takeout directory")
	organizeCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory in which to put organized files")
	organizeCmd.Flags().BoolVar(&failFastFlag, "fail-fast", false, "Halt the run on the first external tool failure")
	organizeCmd.Flags().BoolVar(&watchFlag, "watch", false, "Keep watching the takeout directory and re-run on new files")
	organizeCmd.MarkFlagRequired("takeout")
	organizeCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(organizeCmd)
}
