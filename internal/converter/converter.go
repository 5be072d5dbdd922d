// Package converter runs one statement through extraction and parsing and
// memoizes the result by content digest.
package converter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/cache"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/extractor"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/logging"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/parser"
)

// Converter turns PDF bytes into a Document. It is safe for concurrent use.
type Converter struct {
	extractor extractor.Extractor
	parser    *parser.Parser
	cache     *cache.Cache
	log       logrus.FieldLogger
}

// New wires a Converter. c may be nil to disable memoization.
func New(ex extractor.Extractor, p *parser.Parser, c *cache.Cache, log logrus.FieldLogger) *Converter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Converter{extractor: ex, parser: p, cache: c, log: log}
}

// ConvertFile reads and converts the PDF at path.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &extractor.ExtractionError{Kind: extractor.ErrUnreadable, Source: path, Err: err}
	}
	return c.Convert(ctx, path, data)
}

// Convert processes data. name is used for logging and errors only; the
// result is keyed by the digest of data.
func (c *Converter) Convert(ctx context.Context, name string, data []byte) (*models.Document, error) {
	digest := cache.Digest(data)
	log := c.log.WithFields(logrus.Fields{
		logging.FieldFile:   name,
		logging.FieldDigest: digest[:16],
	})

	doc, hit, err := c.cache.GetOrLoad(digest, func() (*models.Document, error) {
		return c.process(ctx, log, name, digest, data)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		log.Debug("Reusing processed statement")
	}
	return doc, nil
}

func (c *Converter) process(ctx context.Context, log logrus.FieldLogger, name, digest string, data []byte) (*models.Document, error) {
	start := time.Now()

	res, err := c.extractor.Extract(ctx, name, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("conversion of %s cancelled: %w", name, err)
	}

	records, text := c.parser.Parse(res.Pages)
	doc := &models.Document{
		Digest:       digest,
		Pages:        res.PageCount,
		Transactions: records,
		Text:         text,
		Warnings:     res.Warnings,
	}

	log.WithFields(logrus.Fields{
		logging.FieldPages:    res.PageCount,
		logging.FieldCount:    len(records),
		logging.FieldDuration: time.Since(start).Milliseconds(),
	}).Info("Converted statement")
	if len(records) == 0 {
		log.Warn("No transactions found; the PDF may not be a " + parser.BankName + " statement")
	}
	return doc, nil
}
