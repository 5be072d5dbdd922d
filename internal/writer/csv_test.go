package writer

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

const expectedHeader = ",Detajet,Perfituesi,Referenca,Nr i Kartes,Data/Ora,Terminali,Debi,Kredi,Balanca"

func sampleRecords() []models.TransactionRecord {
	return []models.TransactionRecord{
		{
			Prefix:      "Blerje me karte",
			Description: "BLERJE POS",
			Reference:   "FT24065ABCD",
			CardNumber:  "4111XXXXXXXX1111",
			Timestamp:   "05/03/2024 14:22",
			Terminal:    "SPAR TIRANA",
			Debit:       "1250.00",
			Balance:     "48310.75",
			Variant:     models.StructuredPOS,
		},
		{
			Prefix:      "Transferte",
			Description: "PAGA MARS",
			Beneficiary: "ACME SHPK TIRANA",
			Credit:      "85000.00",
			Balance:     "133310.75",
			Variant:     models.BeneficiaryContinuation,
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.Write(&buf, sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	lines := strings.Split(strings.TrimSuffix(output, "\r\n"), "\r\n")
	// 1 header + 2 transactions
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), output)
	}

	if lines[0] != expectedHeader {
		t.Errorf("header: got %q, want %q", lines[0], expectedHeader)
	}

	want := "Blerje me karte,BLERJE POS,,FT24065ABCD,4111XXXXXXXX1111,05/03/2024 14:22,SPAR TIRANA,1250.00,,48310.75"
	if lines[1] != want {
		t.Errorf("first row: got %q, want %q", lines[1], want)
	}
	if !strings.Contains(lines[2], "ACME SHPK TIRANA") {
		t.Error("expected beneficiary in second row")
	}
	if !strings.HasSuffix(lines[2], ",85000.00,133310.75") {
		t.Errorf("expected credit and balance columns, got %q", lines[2])
	}
}

func TestCSVWriter_WriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVWriter{}).Write(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != expectedHeader+"\r\n" {
		t.Errorf("expected header only, got %q", got)
	}
}

func TestCSVWriter_Sanitizes(t *testing.T) {
	records := []models.TransactionRecord{
		{Prefix: "-fee", Description: "=HYPERLINK(\"x\")", Beneficiary: "@SUM(1,2)", Terminal: "+355"},
	}

	var buf bytes.Buffer
	if err := (&CSVWriter{}).Write(&buf, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	row := rows[1]
	checks := map[int]string{
		0: "'-fee",
		1: "'=HYPERLINK(\"x\")",
		2: "'@SUM(1,2)",
		6: "'+355",
	}
	for col, want := range checks {
		if row[col] != want {
			t.Errorf("column %d: got %q, want %q", col, row[col], want)
		}
	}

	// the caller's records are not modified
	if records[0].Description != "=HYPERLINK(\"x\")" {
		t.Error("sanitizing must not modify the input records")
	}
}

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"PAGESE", "PAGESE"},
		{"1250.00", "1250.00"},
		{"=1+1", "'=1+1"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@A1", "'@A1"},
		{"\tx", "'\tx"},
		{"\rx", "'\rx"},
		{"\nx", "'\nx"},
		{"a=b", "a=b"},
	}

	for _, tt := range tests {
		got := SanitizeField(tt.input)
		if got != tt.expected {
			t.Errorf("SanitizeField(%q): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := (&CSVWriter{}).WriteToFile(path, sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.HasPrefix(string(data), expectedHeader+"\r\n") {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestCSVWriter_WriteToFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	if err := (&CSVWriter{}).WriteToFile(path, nil); err == nil {
		t.Error("expected error for a path in a missing directory")
	}
}
