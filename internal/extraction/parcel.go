package extraction

import (
	"regexp"
	"strings"
)

// rejectKeywords are structural vocabulary that can never appear inside a
// parcel ID cell: municipality headers and column-header tokens.
var rejectKeywords = []string{
	"TOWNSHIP", "BOROUGH", "CITY OF", "CAMA", "MAP NUMBER",
	"CONTROL", "OWNER", "DESCRIPTION", "LAND USE",
}

// statePatterns lists known parcel ID layouts per state, most specific
// first. State-specific patterns keep phone numbers and dates from matching;
// the generic fallback still extracts something for unmodeled counties.
var statePatterns = map[string][]*regexp.Regexp{
	"PA": {
		// Blair County: XX.XX-XX..-XXX.XX-XXX
		regexp.MustCompile(`\d{2}\.\d{2}-\d{2}\.+-\d{3}\.\d{2}-\d{3}`),
		regexp.MustCompile(`\d{2,3}-\d{2,3}-\d{3,4}\.?\d?`),
	},
	"FL": {
		regexp.MustCompile(`\d{2}-\d{2}-\d{2}-\d{4}-\d{3}-\d{4}`),
	},
	"TX": {
		regexp.MustCompile(`\d{5,10}`),
	},
}

var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2,3}[-.]\d{2,3}[-.]\d{3,4}`),
	regexp.MustCompile(`\d{8,12}`),
}

// NormalizeParcelID extracts a canonical parcel identifier from a raw cell
// value. It returns false when the cell contains structural vocabulary or
// no known pattern matches.
func NormalizeParcelID(raw, stateCode string) (string, bool) {
	id, _, ok := matchParcelID(raw, stateCode)
	return id, ok
}

// matchParcelID additionally reports whether the match came from a
// state-specific pattern, which callers use to grade confidence.
func matchParcelID(raw, stateCode string) (id string, stateSpecific bool, ok bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false, false
	}

	upper := strings.ToUpper(value)
	for _, kw := range rejectKeywords {
		if strings.Contains(upper, kw) {
			return "", false, false
		}
	}

	value = whitespaceRe.ReplaceAllString(value, "")

	for _, re := range statePatterns[strings.ToUpper(stateCode)] {
		if m := re.FindString(value); m != "" {
			return m, true, true
		}
	}
	for _, re := range genericPatterns {
		if m := re.FindString(value); m != "" {
			return m, false, true
		}
	}
	return "", false, false
}
