package parser

import (
	"strings"
	"unicode"
)

// DefaultHeaders are boilerplate fragments printed on every statement page.
// Any line containing one of them is dropped.
var DefaultHeaders = []string{
	"NXJERRJE LLOGARIE",
	"Dega UB",
	"NUMERI I KLIENTIT:",
	"KLIENTI:",
	"ADRESA:",
	"RRUGA ",
	"NJESIA BASHKEIAKE",
	"TIRANE",
	"PERIUDHA -",
	"DATA E FILLIMIT:",
	"DATA E MBARIMIT:",
	"DATA E PRINTIMIT:",
	"LLOGARIA:",
	"FAQE NR.",
	"DATA  TIPI I TRANSAKSIONIT",
	"PERSHKRIMI               REFERENCA",
	"UNION BANK",
	"PERIUDHA                 :",
	"BALANCA E FILLIMIT",
	"-llogar",
}

// HeaderFilter strips page headers and separator rules from extracted text.
type HeaderFilter struct {
	headers []string
}

// NewHeaderFilter returns a filter using DefaultHeaders plus any extra entries.
func NewHeaderFilter(extra ...string) *HeaderFilter {
	headers := make([]string, 0, len(DefaultHeaders)+len(extra))
	headers = append(headers, DefaultHeaders...)
	for _, h := range extra {
		if h != "" {
			headers = append(headers, h)
		}
	}
	return &HeaderFilter{headers: headers}
}

// Filter removes boilerplate from one page (or several pages already joined).
// The result is newline-joined, right-trimmed and has no empty lines.
func (f *HeaderFilter) Filter(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		if f.isHeader(line) {
			continue
		}
		if separatorPattern.MatchString(strings.TrimSpace(line)) {
			continue
		}
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func (f *HeaderFilter) isHeader(line string) bool {
	for _, h := range f.headers {
		if strings.Contains(line, h) {
			return true
		}
	}
	return false
}

var defaultFilter = NewHeaderFilter()

// Filter applies the default header filter.
func Filter(text string) string {
	return defaultFilter.Filter(text)
}
