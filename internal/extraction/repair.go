package extraction

import (
	"regexp"
	"strings"
)

// commonFirstNames are tokens that must never be absorbed as the suffix of a
// de-spaced surname. Membership means "do not merge", not "this is a first
// name"; a failed merge is preferred over corrupting a real two-word name.
var commonFirstNames = map[string]struct{}{
	"DAVID": {}, "JAMES": {}, "JOHN": {}, "MARY": {}, "MARI": {}, "JACK": {},
	"JANE": {}, "PAUL": {}, "ANNE": {}, "MARK": {}, "RUTH": {}, "LOUIS": {},
	"MICHAEL": {}, "PATRICIA": {}, "THOMAS": {}, "RICHARD": {}, "ROBERT": {},
	"WILLIAM": {}, "MARGARET": {}, "ANDREA": {}, "NAOMI": {}, "CONNIE": {},
	"EVELYN": {}, "IRENE": {}, "KIRSTEN": {}, "VINCENT": {}, "LEO": {},
	"TARA": {}, "THELMA": {}, "MATTHEW": {}, "TERRY": {}, "JERE": {},
	"LINDA": {}, "DEBRA": {}, "KENNETH": {}, "SHIRLEY": {}, "WENDY": {},
	"SOPHIE": {}, "RANDALL": {}, "EUGENE": {}, "CARL": {}, "ELAINE": {},
	"LORIE": {}, "MARTIN": {}, "GREGORY": {}, "TRAVIS": {}, "LEE": {},
	"GERTRUDE": {}, "ROBIN": {}, "EDWARD": {}, "JODY": {}, "CHARLOTTE": {},
	"KRISTOPHER": {}, "DAWNA": {}, "BRUNHILDE": {}, "HERBERT": {}, "LYNN": {},
}

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	strayLetterRe  = regexp.MustCompile(`\b([A-Z]) ([A-Z]{5,})\b`)
	upperSuffixRe  = regexp.MustCompile(`^[A-Z]{2,10}$`)
	allDigitsRe    = regexp.MustCompile(`^\d+$`)
)

// RepairName reverses character-spacing artifacts in an extracted name,
// e.g. "B A R N ER DAVID W" becomes "BARNER DAVID W". Legitimately spaced
// multi-word names are left alone.
func RepairName(text string) string {
	if text == "" {
		return text
	}

	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	words := strings.Split(text, " ")

	var result []string
	i := 0
	for i < len(words) {
		if !isSingleUpperLetter(words[i]) {
			result = append(result, words[i])
			i++
			continue
		}

		// Collect the run of consecutive single uppercase letters.
		j := i + 1
		for j < len(words) && isSingleUpperLetter(words[j]) {
			j++
		}
		if j-i < 2 {
			result = append(result, words[i])
			i++
			continue
		}

		combined := strings.Join(words[i:j], "")

		// A short uppercase word right after the run is usually the tail of
		// the same surname, unless it is a known first name.
		if j < len(words) {
			next := words[j]
			if upperSuffixRe.MatchString(next) {
				if _, excluded := commonFirstNames[next]; !excluded {
					combined += next
					j++
				}
			}
		}

		result = append(result, combined)
		i = j
	}

	text = strings.Join(result, " ")

	// Residual "D ESCRIPTION" style splits.
	return strayLetterRe.ReplaceAllString(text, "$1$2")
}

// RepairAddress reverses digit-spacing artifacts in a street address,
// e.g. "8 1 5 3RD AVE" becomes "815 3RD AVE", then applies the same name
// repair pass to any spaced street text.
func RepairAddress(text string) string {
	if text == "" {
		return text
	}

	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	words := strings.Split(text, " ")

	// A leading run of single digits, optionally ending in one 1-2 digit
	// token, is a spaced-out house number. One single digit alone is a real
	// house number and stays put.
	run := 0
	for run < len(words) && len(words[run]) == 1 && isDigits(words[run]) {
		run++
	}
	if run >= 1 {
		tail := run < len(words) && len(words[run]) <= 2 && isDigits(words[run])
		if run >= 2 || tail {
			if tail {
				run++
			}
			joined := strings.Join(words[:run], "")
			words = append([]string{joined}, words[run:]...)
			text = strings.Join(words, " ")
		}
	}

	return strings.TrimSpace(RepairName(text))
}

func isSingleUpperLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

func isDigits(s string) bool {
	return s != "" && allDigitsRe.MatchString(s)
}
