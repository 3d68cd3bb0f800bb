package extraction

import (
	"regexp"
	"strings"
)

// RowClass is the disposition of a table row before parsing.
type RowClass int

const (
	// RowData proceeds to a format-specific or generic parser.
	RowData RowClass = iota
	// RowHeaderSkip is a column-header or section row yielding no record.
	RowHeaderSkip
	// RowMunicipality carries a new municipality context value.
	RowMunicipality
)

// headerVocabulary marks a first cell as a column header or section row.
var headerVocabulary = []string{
	"TOWNSHIP", "BOROUGH", "CITY OF", "CAMA", "CONTROL",
	"REPUTED OWNER", "PROPERTY DESC", "MAP NUMBER", "LAND USE",
	"OWNER", "PARCEL", "DESCRIPTION", "AMOUNT", "BID",
}

// corporateSuffixes signal that a long all-caps cell is plausibly an owner
// name rather than a section title.
var corporateSuffixes = []string{"LLC", "INC", "CORP", "TRUST"}

var allCapsRe = regexp.MustCompile(`^[A-Z\s]+$`)

// ClassifyRow decides whether a row is data, a header/section row to skip,
// or a municipality-context marker. Known limitation: a long all-caps
// individual owner name without a corporate suffix can be misread as a
// section title.
func ClassifyRow(row []string) RowClass {
	if len(row) < 2 {
		return RowHeaderSkip
	}

	first := strings.ToUpper(strings.TrimSpace(row[0]))
	if first == "" {
		return RowData
	}

	if isMunicipality(first) {
		return RowMunicipality
	}

	for _, kw := range headerVocabulary {
		if strings.Contains(first, kw) {
			return RowHeaderSkip
		}
	}

	// All-caps section titles: alphabetic, longer than 5 characters, no
	// digits, and nothing suggesting an owner name.
	if allCapsRe.MatchString(first) && len(first) > 5 {
		owner := false
		for _, suffix := range corporateSuffixes {
			if strings.Contains(first, suffix) {
				owner = true
				break
			}
		}
		if !owner {
			return RowHeaderSkip
		}
	}

	return RowData
}

// Municipality returns the municipality name carried by a marker row, or
// false when the row is not a marker.
func Municipality(row []string) (string, bool) {
	if len(row) == 0 {
		return "", false
	}
	first := strings.ToUpper(strings.TrimSpace(row[0]))
	if isMunicipality(first) {
		return first, true
	}
	return "", false
}

func isMunicipality(upperFirst string) bool {
	return strings.Contains(upperFirst, "TOWNSHIP") ||
		strings.Contains(upperFirst, "BOROUGH") ||
		strings.Contains(upperFirst, "CITY OF")
}
