package extraction

import (
	"regexp"
	"strings"
)

// Parser-path confidence tiers. Format-specific parses always outrank the
// generic cell-guessing parse, which outranks the bare-text fallback.
const (
	confidenceFormatSpecific = 0.95
	confidenceGeneric        = 0.70
	confidenceBareTextState  = 0.60
	confidenceBareText       = 0.50
)

// notSoldToken marks an unpublished winning bid in judicial listings.
const notSoldToken = "Not Sold"

var (
	camaNumberRe    = regexp.MustCompile(`^\d{7,8}$`)
	controlNumberRe = regexp.MustCompile(`^\d{3}-\d{6}$`)
	streetSuffixRe  = regexp.MustCompile(`\d+.*(?:ST|AVE|RD|DR|LN|CT|WAY|BLVD)`)
	ownerGuessRe    = regexp.MustCompile(`^[A-Z\s&,.]+$`)
)

// cell returns the trimmed cell at index i, or "" when the row is short.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseRepositoryRow parses the repository layout:
// CAMA#(0), Owner(1), Address(2), MapNumber(3), LandUse(4).
func parseRepositoryRow(row []string, stateCode, municipality string) *PropertyRecord {
	if len(row) < 4 {
		return nil
	}

	if !camaNumberRe.MatchString(cell(row, 0)) {
		return nil
	}

	parcelID, ok := NormalizeParcelID(cell(row, 3), stateCode)
	if !ok {
		return nil
	}

	return &PropertyRecord{
		ParcelID:   parcelID,
		Owner:      cell(row, 1),
		Address:    cell(row, 2),
		City:       municipality,
		Confidence: confidenceFormatSpecific,
	}
}

// parseJudicialRow parses the judicial sale layout:
// *(0), Control#(1), Owner(2), Map#(3), Desc(4), LandUse(5), WinningBid(6), Winner(7).
// Judicial listings carry no municipality context.
func parseJudicialRow(row []string, stateCode string) *PropertyRecord {
	if len(row) < 5 {
		return nil
	}

	if !controlNumberRe.MatchString(cell(row, 1)) {
		return nil
	}

	parcelID, ok := NormalizeParcelID(cell(row, 3), stateCode)
	if !ok {
		return nil
	}

	rec := &PropertyRecord{
		ParcelID:   parcelID,
		Owner:      RepairName(cell(row, 2)),
		Address:    RepairAddress(cell(row, 4)),
		Confidence: confidenceFormatSpecific,
	}

	if bid := cell(row, 6); bid != "" && bid != notSoldToken {
		if amount, ok := ParseMoney(bid); ok {
			rec.TotalDue = &amount
		}
	}
	return rec
}

// parseUpsetRow parses the upset sale layout:
// blank(0), Control#(1), Owner(2), Map#(3), Description(4), UpsetAmount(5).
func parseUpsetRow(row []string, stateCode, municipality string) *PropertyRecord {
	if len(row) < 6 {
		return nil
	}

	if !controlNumberRe.MatchString(cell(row, 1)) {
		return nil
	}

	parcelID, ok := NormalizeParcelID(cell(row, 3), stateCode)
	if !ok {
		return nil
	}

	rec := &PropertyRecord{
		ParcelID:   parcelID,
		Owner:      RepairName(cell(row, 2)),
		Address:    RepairAddress(cell(row, 4)),
		City:       municipality,
		Confidence: confidenceFormatSpecific,
	}

	if amount, ok := ParseMoney(cell(row, 5)); ok {
		rec.TotalDue = &amount
	}
	return rec
}

// parseGenericRow guesses field roles cell by cell when no layout is known:
// first valid parcel ID, first $-bearing cell as amount, first street-suffix
// match as address, first long all-caps cell as owner.
func parseGenericRow(row []string, stateCode, municipality string) *PropertyRecord {
	var (
		parcelID string
		address  string
		owner    string
		amount   *float64
	)

	for i := range row {
		c := cell(row, i)
		if c == "" {
			continue
		}

		if parcelID == "" {
			if id, ok := NormalizeParcelID(c, stateCode); ok {
				parcelID = id
			}
		}

		if amount == nil && strings.Contains(c, "$") {
			if v, ok := ParseMoney(c); ok {
				amount = &v
			}
		}

		if address == "" && streetSuffixRe.MatchString(strings.ToUpper(c)) {
			address = RepairAddress(c)
		}

		if owner == "" && len(c) > 5 && ownerGuessRe.MatchString(c) {
			if _, isMarker := Municipality([]string{c}); !isMarker {
				owner = RepairName(c)
			}
		}
	}

	if parcelID == "" {
		return nil
	}

	return &PropertyRecord{
		ParcelID:   parcelID,
		Address:    address,
		Owner:      owner,
		City:       municipality,
		TotalDue:   amount,
		Confidence: confidenceGeneric,
	}
}

// scanTextLines is the bare-text fallback for pages with no extractable
// tables: any line containing a parcel ID substring yields a minimal record.
// State-pattern matches grade slightly higher than generic ones.
func scanTextLines(pageText, stateCode string) []PropertyRecord {
	var records []PropertyRecord
	for _, line := range strings.Split(pageText, "\n") {
		id, stateSpecific, ok := matchParcelID(line, stateCode)
		if !ok {
			continue
		}
		confidence := confidenceBareText
		if stateSpecific {
			confidence = confidenceBareTextState
		}
		records = append(records, PropertyRecord{
			ParcelID:   id,
			RawText:    strings.TrimSpace(line),
			Confidence: confidence,
		})
	}
	return records
}
