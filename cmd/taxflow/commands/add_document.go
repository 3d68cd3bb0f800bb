package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taxdeedflow/extraction-engine/cmd/taxflow/ui"
	"github.com/taxdeedflow/extraction-engine/internal/storage"
)

var (
	addCounty   string
	addState    string
	addTitle    string
	addURL      string
	addSaleDate string
)

var addDocumentCmd = &cobra.Command{
	Use:   "add-document",
	Short: "Register a county sale document for parsing",
	RunE:  runAddDocument,
}

func init() {
	addDocumentCmd.Flags().StringVar(&addCounty, "county", "", "County name (required)")
	addDocumentCmd.Flags().StringVar(&addState, "state", "", "Two-letter state code (required)")
	addDocumentCmd.Flags().StringVar(&addTitle, "title", "", "Document title, e.g. '2025 Upset Sale List' (required)")
	addDocumentCmd.Flags().StringVar(&addURL, "url", "", "PDF URL (required)")
	addDocumentCmd.Flags().StringVar(&addSaleDate, "sale-date", "", "Sale date, e.g. 2025-10-01")
	addDocumentCmd.MarkFlagRequired("county")
	addDocumentCmd.MarkFlagRequired("state")
	addDocumentCmd.MarkFlagRequired("title")
	addDocumentCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(addDocumentCmd)
}

func runAddDocument(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	ui.InitUI(noColor, verbose)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	county, err := a.repos.Counties.GetOrCreate(ctx, addCounty, addState)
	if err != nil {
		return fmt.Errorf("resolve county: %w", err)
	}

	doc := &storage.Document{
		CountyID: county.ID,
		Title:    addTitle,
		URL:      addURL,
	}
	if addSaleDate != "" {
		doc.SaleDate = &addSaleDate
	}

	if err := a.repos.Documents.Create(ctx, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	ui.Success("Registered document %s", doc.ID)
	ui.KeyValue("County", fmt.Sprintf("%s (%s)", county.Name, county.StateCode))
	ui.KeyValue("Title", doc.Title)
	ui.KeyValue("URL", doc.URL)
	return nil
}
