package writer

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

// SheetName is the worksheet the transactions are written to.
const SheetName = "Transactions"

// amount columns start here (0-based index into models.FieldNames)
const firstAmountColumn = 7

// XLSXWriter writes transaction records to an Excel workbook. Amount
// columns are stored as numbers, everything else as text.
type XLSXWriter struct{}

// WriteToFile saves the workbook at the given path.
func (w *XLSXWriter) WriteToFile(path string, records []models.TransactionRecord) error {
	f, err := w.build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %q: %w", path, err)
	}
	return nil
}

// Write streams the workbook to out.
func (w *XLSXWriter) Write(out io.Writer, records []models.TransactionRecord) error {
	f, err := w.build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) build(records []models.TransactionRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(models.FieldNames))
	for i, name := range models.FieldNames {
		header[i] = name
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, style)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := xlsxRow(r)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "B", "C", 40)
	_ = f.SetColWidth(SheetName, "D", "G", 18)
	return f, nil
}

func xlsxRow(r models.TransactionRecord) []interface{} {
	values := r.Values()
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	for i, amount := range []decimal.Decimal{r.DebitAmount(), r.CreditAmount(), r.BalanceAmount()} {
		if values[firstAmountColumn+i] != "" {
			row[firstAmountColumn+i] = amount.InexactFloat64()
		}
	}
	return row
}
