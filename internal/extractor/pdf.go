package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/logging"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

// Result is the text of one document, one entry per page that yielded text.
type Result struct {
	PageCount int
	Pages     []string
	Warnings  []models.PageWarning
}

// Extractor turns PDF bytes into per-page text.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (*Result, error)
}

// PDFExtractor reads PDFs with the ledongthuc/pdf library and rebuilds the
// fixed-width layout from text positions. When the library yields no text
// at all it can fall back to poppler's pdftotext.
type PDFExtractor struct {
	CharWidth         float64
	PdftotextFallback bool
	Log               logrus.FieldLogger
}

// NewPDFExtractor returns an extractor with the default character width.
func NewPDFExtractor(log logrus.FieldLogger) *PDFExtractor {
	return &PDFExtractor{
		CharWidth:         DefaultCharWidth,
		PdftotextFallback: true,
		Log:               log,
	}
}

// ExtractFile reads a PDF from disk and extracts its pages.
func (e *PDFExtractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	return e.Extract(ctx, path, data)
}

// Extract returns the text of every page. Pages that fail are reported as
// warnings; only an unopenable file or a document without any text fails.
func (e *PDFExtractor) Extract(ctx context.Context, name string, data []byte) (*Result, error) {
	r, err := openReader(data)
	if err != nil {
		return nil, unreadable(name, err)
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, empty(name, fmt.Errorf("PDF has no pages"))
	}

	res, err := collectPages(ctx, numPages, func(n int) (string, error) {
		return e.pageText(r, n)
	})
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		e.logger().WithFields(logrus.Fields{
			logging.FieldFile: name,
			logging.FieldPage: w.Page,
			"reason":          w.Message,
		}).Warn("Could not extract text from page")
	}

	if len(res.Pages) == 0 && e.PdftotextFallback && pdftotextAvailable() {
		e.logger().WithField(logging.FieldFile, name).Info("No text from PDF library, trying pdftotext")
		pages, ferr := extractWithPdftotext(ctx, data, numPages)
		if ferr != nil {
			e.logger().WithError(ferr).Warn("pdftotext fallback failed")
		} else {
			res.Pages = pages
		}
	}

	if len(res.Pages) == 0 {
		return nil, empty(name, fmt.Errorf("no extractable text in %d page(s)", numPages))
	}
	return res, nil
}

// collectPages walks pages 1..n, keeping pages with text and recording a
// warning for each page that fails.
func collectPages(ctx context.Context, n int, pageText func(int) (string, error)) (*Result, error) {
	res := &Result{PageCount: n}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(i)
		if err != nil {
			res.Warnings = append(res.Warnings, models.PageWarning{Page: i, Message: err.Error()})
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		res.Pages = append(res.Pages, text)
	}
	return res, nil
}

func (e *PDFExtractor) pageText(r *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed on page %d: %v", n, rec)
		}
	}()

	page := r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	content := page.Content()
	return layoutPage(content.Text, e.CharWidth), nil
}

func openReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (e *PDFExtractor) logger() logrus.FieldLogger {
	if e.Log == nil {
		return discard
	}
	return e.Log
}
