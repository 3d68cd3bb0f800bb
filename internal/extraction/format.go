package extraction

import "strings"

// pageTextWindow bounds how much leading page text participates in format
// detection.
const pageTextWindow = 500

// DetectFormat classifies a document's tabular layout from its first table
// row and the leading page text. Detection runs once per document; the
// orchestrator freezes the result.
func DetectFormat(firstRow []string, pageText string) Format {
	var sb strings.Builder
	for _, cell := range firstRow {
		sb.WriteString(strings.ToUpper(cell))
		sb.WriteString(" ")
	}

	text := pageText
	if len(text) > pageTextWindow {
		text = text[:pageTextWindow]
	}
	sb.WriteString(strings.ToUpper(text))
	full := sb.String()

	switch {
	case strings.Contains(full, "CAMA") && strings.Contains(full, "REPUTED OWNER"):
		return FormatRepository
	case strings.Contains(full, "WINNING BID") || strings.Contains(full, "WINNING BIDDER"):
		return FormatJudicial
	case strings.Contains(full, "UPSET") || strings.Contains(full, "APPROXIMATE") || strings.Contains(full, "CONTROL NO"):
		return FormatUpset
	case strings.Contains(full, "REPOSITORY"):
		return FormatRepository
	case strings.Contains(full, "JUDICIAL"):
		return FormatJudicial
	}
	return FormatUnknown
}

// FormatFromSaleType maps a caller-declared sale type hint onto a parsing
// format, used when detection comes back unknown.
func FormatFromSaleType(t SaleType) Format {
	switch t {
	case SaleTypeRepository:
		return FormatRepository
	case SaleTypeJudicial:
		return FormatJudicial
	case SaleTypeUpset:
		return FormatUpset
	}
	return FormatUnknown
}
