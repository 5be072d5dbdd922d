package parser

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/logging"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

// BankName is the only statement layout this parser understands.
const BankName = "Union Bank"

// Parser turns extracted page text into transaction records.
// A Parser holds no per-document state and is safe for concurrent use.
type Parser struct {
	filter *HeaderFilter
	resync bool
	log    logrus.FieldLogger
}

// Option configures a Parser.
type Option func(*Parser)

// WithResync makes the POS branch stop at a start line found inside its
// fixed-size block instead of stepping over it. Off by default, which keeps
// the stride unchecked.
func WithResync(enabled bool) Option {
	return func(p *Parser) { p.resync = enabled }
}

// WithExtraHeaders adds entries to the header denylist.
func WithExtraHeaders(headers ...string) Option {
	return func(p *Parser) { p.filter = NewHeaderFilter(headers...) }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// New returns a Parser with the default header list and no resync.
func New(opts ...Option) *Parser {
	p := &Parser{
		filter: defaultFilter,
		log:    discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BankName returns the human-readable bank name.
func (p *Parser) BankName() string {
	return BankName
}

// Clean filters each page and joins the pages that still carry text.
func (p *Parser) Clean(pages []string) string {
	var kept []string
	for _, page := range pages {
		cleaned := p.filter.Filter(page)
		if strings.TrimSpace(cleaned) != "" {
			kept = append(kept, cleaned)
		}
	}
	return strings.Join(kept, "\n")
}

// Reconstruct parses an already cleaned line sequence.
func (p *Parser) Reconstruct(lines []string) []models.TransactionRecord {
	r := &reconstructor{lines: lines, resync: p.resync, log: p.log}
	return r.run()
}

// Parse cleans the pages and reconstructs their transactions. It returns the
// records in statement order and the cleaned text they were read from.
func (p *Parser) Parse(pages []string) ([]models.TransactionRecord, string) {
	text := p.Clean(pages)
	records := p.Reconstruct(strings.Split(text, "\n"))
	p.log.WithFields(logrus.Fields{
		logging.FieldPages: len(pages),
		logging.FieldCount: len(records),
	}).Debug("Parsed statement text")
	return records, text
}

// Reconstruct parses a cleaned line sequence with default options.
func Reconstruct(lines []string) []models.TransactionRecord {
	return New().Reconstruct(lines)
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
