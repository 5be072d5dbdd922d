package writer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

// Format is an export format for a processed statement.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "txt"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatCSV, FormatText, FormatXLSX}

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: csv, txt, xlsx)", name)
	}
}

// Extension is the file extension, with the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FileName is the download name used for a document in this format.
func (f Format) FileName() string {
	return "transactions" + f.Extension()
}

// OutputPath returns where the export of input goes: next to it, or in dir
// when dir is set.
func (f Format) OutputPath(input, dir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+f.Extension())
}

// Write exports doc in the given format.
func Write(out io.Writer, f Format, doc *models.Document) error {
	switch f {
	case FormatCSV:
		return (&CSVWriter{}).Write(out, doc.Transactions)
	case FormatText:
		return (&TextWriter{}).Write(out, doc.Text)
	case FormatXLSX:
		return (&XLSXWriter{}).Write(out, doc.Transactions)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

// WriteToFile exports doc to path in the given format.
func WriteToFile(path string, f Format, doc *models.Document) error {
	switch f {
	case FormatCSV:
		return (&CSVWriter{}).WriteToFile(path, doc.Transactions)
	case FormatText:
		return (&TextWriter{}).WriteToFile(path, doc.Text)
	case FormatXLSX:
		return (&XLSXWriter{}).WriteToFile(path, doc.Transactions)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}
