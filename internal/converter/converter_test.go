package converter

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/cache"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/extractor"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/parser"
)

type fakeExtractor struct {
	result *extractor.Result
	err    error
	calls  atomic.Int32
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, _ []byte) (*extractor.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func posPage() string {
	return strings.Join([]string{
		"UNION BANK                     NXJERRJE LLOGARIE",
		"05-MAR-2024",
		fmt.Sprintf("%-65s%-35s%s", "Blerje me karte", "1,250.00", "48,310.75"),
		"Detajet: BLERJE POS",
		"Referenca: FT24065ABCD",
		"Nr i Kartes: 4111XXXXXXXX1111",
		"Data/Ora: 05/03/2024 14:22",
		"Terminali: SPAR TIRANA",
	}, "\n")
}

func newTestConverter(t *testing.T, ex extractor.Extractor, size int) *Converter {
	t.Helper()
	c, err := cache.New(size, nil)
	require.NoError(t, err)
	return New(ex, parser.New(), c, nil)
}

func TestConvert(t *testing.T) {
	ex := &fakeExtractor{result: &extractor.Result{
		PageCount: 3,
		Pages:     []string{posPage()},
		Warnings:  []models.PageWarning{{Page: 2, Message: "bad font"}},
	}}
	conv := newTestConverter(t, ex, 8)

	data := []byte("%PDF-1.4 statement")
	doc, err := conv.Convert(context.Background(), "march.pdf", data)
	require.NoError(t, err)

	assert.Equal(t, cache.Digest(data), doc.Digest)
	assert.Len(t, doc.ShortID(), 16)
	assert.Equal(t, 3, doc.Pages)
	assert.Equal(t, []models.PageWarning{{Page: 2, Message: "bad font"}}, doc.Warnings)
	assert.NotContains(t, doc.Text, "UNION BANK")

	require.Len(t, doc.Transactions, 1)
	assert.Equal(t, models.TransactionRecord{
		Prefix:      "Blerje me karte",
		Description: "BLERJE POS",
		Reference:   "FT24065ABCD",
		CardNumber:  "4111XXXXXXXX1111",
		Timestamp:   "05/03/2024 14:22",
		Terminal:    "SPAR TIRANA",
		Debit:       "1250.00",
		Balance:     "48310.75",
		Variant:     models.StructuredPOS,
	}, doc.Transactions[0])
}

func TestConvert_MemoizedByContent(t *testing.T) {
	ex := &fakeExtractor{result: &extractor.Result{PageCount: 1, Pages: []string{posPage()}}}
	conv := newTestConverter(t, ex, 8)

	data := []byte("same bytes")
	first, err := conv.Convert(context.Background(), "a.pdf", data)
	require.NoError(t, err)
	second, err := conv.Convert(context.Background(), "renamed.pdf", data)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), ex.calls.Load())

	_, err = conv.Convert(context.Background(), "a.pdf", []byte("other bytes"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), ex.calls.Load())
}

func TestConvert_ExtractionErrors(t *testing.T) {
	for _, kind := range []error{extractor.ErrUnreadable, extractor.ErrEmptyDocument} {
		ex := &fakeExtractor{err: &extractor.ExtractionError{Kind: kind, Source: "x.pdf"}}
		conv := newTestConverter(t, ex, 8)

		_, err := conv.Convert(context.Background(), "x.pdf", []byte("x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, kind)

		// failures are retried, not cached
		_, err = conv.Convert(context.Background(), "x.pdf", []byte("x"))
		assert.ErrorIs(t, err, kind)
		assert.Equal(t, int32(2), ex.calls.Load())
	}
}

func TestConvert_NoTransactions(t *testing.T) {
	ex := &fakeExtractor{result: &extractor.Result{PageCount: 1, Pages: []string{"just some text\nwithout records"}}}
	conv := newTestConverter(t, ex, 0)

	doc, err := conv.Convert(context.Background(), "x.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, doc.Transactions)
	assert.Equal(t, "just some text\nwithout records", doc.Text)
}

func TestConvert_Cancelled(t *testing.T) {
	ex := &fakeExtractor{result: &extractor.Result{PageCount: 1, Pages: []string{posPage()}}}
	conv := newTestConverter(t, ex, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := conv.Convert(ctx, "x.pdf", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertFile_Missing(t *testing.T) {
	conv := newTestConverter(t, &fakeExtractor{}, 8)
	_, err := conv.ConvertFile(context.Background(), "/nonexistent/statement.pdf")
	assert.ErrorIs(t, err, extractor.ErrUnreadable)
}
