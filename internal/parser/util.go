package parser

import (
	"regexp"
	"strings"
)

// Patterns for the Union Bank statement layout.
var (
	// DD-MMM-YYYY alone on a line, e.g. "05-MAR-2024"
	datePattern = regexp.MustCompile(`^\d{2}-[A-Z]{3}-\d{4}\s*$`)
	// 1,234.56 or 25.99, always two fractional digits
	amountPattern = regexp.MustCompile(`[\d,]+\.\d{2}`)
	// "-----   -------- ----" rules between table sections
	separatorPattern = regexp.MustCompile(`^-[-\s]{19,}$`)
)

// Field labels as printed on the statement. The spaced variants are
// extraction artifacts seen on real statements.
const (
	labelDescription      = "Detajet"
	labelDescriptionSplit = "Detaj et"
	labelBeneficiary      = "Perfituesi"
	labelOrderedBy        = "Me Urdher Te"
	labelReference        = "Referenca"
	labelCardNumber       = "Nr i Kartes"
	labelTimestamp        = "Data/Ora"
	labelTerminal         = "Terminali"
	labelTerminalSplit    = "Termi nali"
)

var fieldPatterns = compileFieldPatterns(
	labelDescription, labelDescriptionSplit,
	labelBeneficiary, labelOrderedBy,
	labelReference, labelCardNumber, labelTimestamp,
	labelTerminal, labelTerminalSplit,
)

func compileFieldPatterns(labels ...string) map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(labels))
	for _, l := range labels {
		m[l] = regexp.MustCompile(regexp.QuoteMeta(l) + `:\s+(.+)`)
	}
	return m
}

// isStartLine reports whether a line opens a new transaction block.
func isStartLine(line string) bool {
	return datePattern.MatchString(strings.TrimSpace(line))
}

// hasLabel reports whether the line carries "<label>:" for any of the labels.
func hasLabel(line string, labels ...string) bool {
	for _, l := range labels {
		if strings.Contains(line, l+":") {
			return true
		}
	}
	return false
}

// extractField returns the value following "<label>:" and at least one
// space, or "" when the label is missing or has no value.
func extractField(label, line string) string {
	re, ok := fieldPatterns[label]
	if !ok {
		re = regexp.MustCompile(regexp.QuoteMeta(label) + `:\s+(.+)`)
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractFirst tries each label in order and returns the first non-empty value.
func extractFirst(line string, labels ...string) string {
	for _, l := range labels {
		if v := extractField(l, line); v != "" {
			return v
		}
	}
	return ""
}

// lineAt returns lines[idx], or "" when idx is past the end.
func lineAt(lines []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(lines) {
		return "", false
	}
	return lines[idx], true
}

// nextStartLine returns the index of the first start line at or after from,
// or len(lines) when none remains.
func nextStartLine(lines []string, from int) int {
	j := from
	for j < len(lines) && !isStartLine(lines[j]) {
		j++
	}
	return j
}
