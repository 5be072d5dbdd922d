package models

import "github.com/shopspring/decimal"

// Variant identifies which statement layout produced a transaction record.
type Variant int

const (
	// NoDescription is a ledger entry without a Detajet line (periodic fees etc).
	NoDescription Variant = iota
	// BeneficiaryContinuation carries a Perfituesi block that may span lines.
	BeneficiaryContinuation
	// ImmediateNextDate has a description and nothing else.
	ImmediateNextDate
	// StructuredPOS is a card-terminal purchase with fixed-offset sub-fields.
	StructuredPOS
)

func (v Variant) String() string {
	switch v {
	case NoDescription:
		return "no-description"
	case BeneficiaryContinuation:
		return "beneficiary"
	case ImmediateNextDate:
		return "immediate-next-date"
	case StructuredPOS:
		return "structured-pos"
	default:
		return "unknown"
	}
}

// FieldNames is the column order of the exported transaction table.
// The first column has no header; it carries the transaction type prefix.
var FieldNames = []string{
	"",
	"Detajet",
	"Perfituesi",
	"Referenca",
	"Nr i Kartes",
	"Data/Ora",
	"Terminali",
	"Debi",
	"Kredi",
	"Balanca",
}

// AmountSet is what the amount line of a transaction yields.
// Amounts are canonical numeric strings with thousands separators removed.
type AmountSet struct {
	Prefix  string
	Debit   string
	Credit  string
	Balance string
}

// TransactionRecord is a single reconstructed statement row.
// Every string field is empty when the statement did not carry it.
type TransactionRecord struct {
	Prefix      string  `json:"prefix" csv:"prefix"`
	Description string  `json:"detajet" csv:"Detajet"`
	Beneficiary string  `json:"perfituesi" csv:"Perfituesi"`
	Reference   string  `json:"referenca" csv:"Referenca"`
	CardNumber  string  `json:"nrKartes" csv:"Nr i Kartes"`
	Timestamp   string  `json:"dataOra" csv:"Data/Ora"`
	Terminal    string  `json:"terminali" csv:"Terminali"`
	Debit       string  `json:"debi" csv:"Debi"`
	Credit      string  `json:"kredi" csv:"Kredi"`
	Balance     string  `json:"balanca" csv:"Balanca"`
	Variant     Variant `json:"-" csv:"-"`
}

// NewRecord starts a record from the amount line values.
func NewRecord(a AmountSet, v Variant) TransactionRecord {
	return TransactionRecord{
		Prefix:  a.Prefix,
		Debit:   a.Debit,
		Credit:  a.Credit,
		Balance: a.Balance,
		Variant: v,
	}
}

// Values returns the record's fields in FieldNames order.
func (r TransactionRecord) Values() []string {
	return []string{
		r.Prefix,
		r.Description,
		r.Beneficiary,
		r.Reference,
		r.CardNumber,
		r.Timestamp,
		r.Terminal,
		r.Debit,
		r.Credit,
		r.Balance,
	}
}

// DebitAmount returns the debit as a decimal, zero when absent.
func (r TransactionRecord) DebitAmount() decimal.Decimal { return toDecimal(r.Debit) }

// CreditAmount returns the credit as a decimal, zero when absent.
func (r TransactionRecord) CreditAmount() decimal.Decimal { return toDecimal(r.Credit) }

// BalanceAmount returns the running balance as a decimal, zero when absent.
func (r TransactionRecord) BalanceAmount() decimal.Decimal { return toDecimal(r.Balance) }

func toDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PageWarning records a page whose text could not be extracted.
type PageWarning struct {
	Page    int    `json:"page"`
	Message string `json:"message"`
}

// Document is the result of processing one statement.
type Document struct {
	Digest       string              `json:"digest"`
	Pages        int                 `json:"pages"`
	Transactions []TransactionRecord `json:"transactions"`
	Text         string              `json:"-"`
	Warnings     []PageWarning       `json:"warnings,omitempty"`
}

// ShortID is the abbreviated content digest shown to users.
func (d *Document) ShortID() string {
	if len(d.Digest) > 16 {
		return d.Digest[:16]
	}
	return d.Digest
}

// Totals sums the debit and credit columns.
func (d *Document) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, r := range d.Transactions {
		debit = debit.Add(r.DebitAmount())
		credit = credit.Add(r.CreditAmount())
	}
	return debit, credit
}
