package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

// injectionPrefixes are the leading characters spreadsheet applications
// treat as the start of a formula.
const injectionPrefixes = "=+-@\t\r\n"

// CSVWriter writes transaction records to CSV format.
type CSVWriter struct{}

// WriteToFile writes records to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, records []models.TransactionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, records); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the header row and one row per record. Lines end in CRLF.
func (w *CSVWriter) Write(out io.Writer, records []models.TransactionRecord) error {
	csvWriter := csv.NewWriter(out)
	csvWriter.UseCRLF = true
	safe := gocsv.NewSafeCSVWriter(csvWriter)

	// The prefix column has an empty header, so the header is not derived
	// from the struct tags.
	if err := safe.Write(models.FieldNames); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rows := make([]models.TransactionRecord, len(records))
	for i, r := range records {
		rows[i] = sanitizeRecord(r)
	}

	if err := gocsv.MarshalCSVWithoutHeaders(rows, safe); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// SanitizeField neutralises values a spreadsheet would evaluate as a formula
// by prefixing them with a single quote.
func SanitizeField(value string) string {
	if value != "" && strings.IndexByte(injectionPrefixes, value[0]) >= 0 {
		return "'" + value
	}
	return value
}

func sanitizeRecord(r models.TransactionRecord) models.TransactionRecord {
	r.Prefix = SanitizeField(r.Prefix)
	r.Description = SanitizeField(r.Description)
	r.Beneficiary = SanitizeField(r.Beneficiary)
	r.Reference = SanitizeField(r.Reference)
	r.CardNumber = SanitizeField(r.CardNumber)
	r.Timestamp = SanitizeField(r.Timestamp)
	r.Terminal = SanitizeField(r.Terminal)
	r.Debit = SanitizeField(r.Debit)
	r.Credit = SanitizeField(r.Credit)
	r.Balance = SanitizeField(r.Balance)
	return r
}
