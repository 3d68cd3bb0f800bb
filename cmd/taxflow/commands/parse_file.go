package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taxdeedflow/extraction-engine/cmd/taxflow/ui"
	"github.com/taxdeedflow/extraction-engine/internal/extraction"
	"github.com/taxdeedflow/extraction-engine/internal/observability"
	"github.com/taxdeedflow/extraction-engine/internal/pdf"
)

var (
	fileState    string
	fileSaleType string
	fileTaxYear  int
	fileJSON     bool
)

var parseFileCmd = &cobra.Command{
	Use:   "parse-file <path>",
	Short: "Parse a local PDF without storing results",
	Long: `Extracts property records from a PDF on disk and prints them,
useful for checking a new county's list before registering it.`,
	Args: cobra.ExactArgs(1),
	RunE: runParseFile,
}

func init() {
	parseFileCmd.Flags().StringVar(&fileState, "state", "PA", "Two-letter state code for parcel patterns")
	parseFileCmd.Flags().StringVar(&fileSaleType, "sale-type", "", "Sale type hint: repository, judicial or upset")
	parseFileCmd.Flags().IntVar(&fileTaxYear, "tax-year", 0, "Tax year to attach (defaults to current year)")
	parseFileCmd.Flags().BoolVar(&fileJSON, "json", false, "emit records as JSON")
	rootCmd.AddCommand(parseFileCmd)
}

func runParseFile(cmd *cobra.Command, args []string) error {
	path := args[0]

	ui.InitUI(noColor, verbose)

	logger := observability.NopLogger()
	if verbose {
		logger = observability.DefaultLogger()
	}

	source, err := pdf.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	spinner := ui.NewSpinner(fmt.Sprintf("Parsing %s (%d pages)...", path, source.PageCount()))
	spinner.Start()

	start := time.Now()
	result, err := extraction.NewEngine(logger).Parse(source, extraction.ParseOptions{
		StateCode: strings.ToUpper(fileState),
		SaleType:  extraction.SaleType(fileSaleType),
		TaxYear:   fileTaxYear,
	})
	spinner.Stop()

	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if fileJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	ui.Section("Extraction Summary")
	ui.Table([]string{"Metric", "Value"}, [][]string{
		{"Format", string(result.Format)},
		{"Records", fmt.Sprintf("%d", result.Extracted)},
		{"Skipped rows", fmt.Sprintf("%d", result.Skipped)},
		{"Failed rows", fmt.Sprintf("%d", result.Failed)},
		{"Avg confidence", fmt.Sprintf("%.2f", result.AverageConfidence())},
		{"Duration", ui.FormatDuration(time.Since(start))},
	})

	if len(result.Records) == 0 {
		ui.Newline()
		ui.Warning("No records extracted")
		return nil
	}

	ui.Newline()
	ui.Section("Records")
	rows := make([][]string, 0, len(result.Records))
	for _, rec := range result.Records {
		rows = append(rows, []string{
			rec.ParcelID,
			rec.Owner,
			rec.Address,
			rec.City,
			ui.FormatMoney(rec.TotalDue),
			fmt.Sprintf("%.2f", rec.Confidence),
		})
	}
	ui.Table([]string{"Parcel ID", "Owner", "Address", "City", "Total Due", "Conf"}, rows)

	return nil
}
