package pdf

import (
	"regexp"
	"strings"

	"github.com/taxdeedflow/extraction-engine/internal/extraction"
)

// columnGapRe splits a text line into cells on runs of two or more spaces,
// the gaps a PDF text layer leaves between table columns.
var columnGapRe = regexp.MustCompile(`\s{2,}`)

// splitCells breaks one line into column cells.
func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cells := columnGapRe.Split(line, -1)
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// extractTables reconstructs tables from a page's text layer. A table opens
// at the first line that splits into three or more columns and runs until a
// blank line. Lines inside a table with fewer columns are kept as short
// rows so section markers between listings survive.
func extractTables(text string) []extraction.Table {
	var tables []extraction.Table
	var current [][]string
	inTable := false

	flush := func() {
		if len(current) > 0 {
			tables = append(tables, extraction.Table{Rows: current})
			current = nil
		}
		inTable = false
	}

	for _, line := range strings.Split(text, "\n") {
		cells := splitCells(line)
		if cells == nil {
			flush()
			continue
		}

		if len(cells) >= 3 {
			inTable = true
			current = append(current, cells)
			continue
		}

		if inTable {
			current = append(current, cells)
		}
	}
	flush()

	return tables
}
