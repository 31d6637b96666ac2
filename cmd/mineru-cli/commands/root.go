package commands

import (
	"github.com/spf13/cobra"

	"github.com/tom832/MinerU/cmd/mineru-cli/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "mineru-cli",
	Short: "Convert PDF and image documents to Markdown",
	Long: `mineru-cli runs the MinerU processing pipeline on local files, without the
HTTP server. PDFs with a usable text layer are extracted directly, scanned PDFs
and images go through OCR.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.Init(noColor)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
