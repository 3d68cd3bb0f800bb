package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taxdeedflow/extraction-engine/cmd/taxflow/ui"
	"github.com/taxdeedflow/extraction-engine/internal/storage"
)

var (
	parseCounty string
	parseState  string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse all unparsed sale documents for a county",
	Long: `Downloads every registered sale document for a county that has not
been parsed yet, extracts its property records and stores them.`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseCounty, "county", "", "County name (required)")
	parseCmd.Flags().StringVar(&parseState, "state", "", "Two-letter state code (required)")
	parseCmd.MarkFlagRequired("county")
	parseCmd.MarkFlagRequired("state")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	ui.InitUI(noColor, verbose)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ui.Section(fmt.Sprintf("Parsing %s County, %s", parseCounty, parseState))

	county, err := a.repos.Counties.GetOrCreate(ctx, parseCounty, parseState)
	if err != nil {
		return fmt.Errorf("resolve county: %w", err)
	}

	docs, err := a.repos.Documents.ListUnparsed(ctx, county.ID, storage.DocumentTypePropertyList, a.cfg.Parser.BatchLimit)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		ui.Info("No unparsed documents for %s County", county.Name)
		return nil
	}

	bar := ui.NewProgressBar(int64(len(docs)), "Processing documents")
	parsed, unchanged, failed, properties := 0, 0, 0, 0

	for _, doc := range docs {
		job, err := a.pipeline.ProcessDocument(ctx, county, doc)
		bar.Add(1)

		switch {
		case err != nil:
			failed++
			ui.Error("%s: %v", doc.Title, err)
		case job == nil:
			unchanged++
		default:
			parsed++
			properties += job.PropertiesExtracted
		}
	}
	bar.Finish()

	ui.Newline()
	ui.Section("Run Summary")
	ui.Table([]string{"Metric", "Value"}, [][]string{
		{"Documents", fmt.Sprintf("%d", len(docs))},
		{"Parsed", fmt.Sprintf("%d", parsed)},
		{"Unchanged", fmt.Sprintf("%d", unchanged)},
		{"Failed", fmt.Sprintf("%d", failed)},
		{"Properties stored", fmt.Sprintf("%d", properties)},
	})

	ui.Newline()
	if failed > 0 {
		ui.Warning("%d document(s) failed, see job records for details", failed)
	} else {
		ui.Success("All documents processed")
	}
	return nil
}
