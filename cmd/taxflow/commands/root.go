package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "taxflow",
	Short: "TaxDeedFlow extraction engine - county tax sale PDF processing",
	Long: `Taxflow downloads county tax-sale PDF listings, extracts property
records from repository, judicial and upset sale formats, and persists them
with parsing job bookkeeping. It can also parse local PDF files ad hoc and
serve the extracted data over HTTP.`,
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
