package parser

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/logging"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

// Union Bank transaction blocks look like:
//
//	05-MAR-2024
//	Blerje me karte            1,250.00                           48,310.75
//	Detajet: BLERJE POS
//	Referenca: 123456
//	Nr i Kartes: 4561********1234
//	Data/Ora: 04/03/2024 18:22
//	Terminali: ATM1
//
// The description may wrap onto a second line, pushing every later field
// down by one. Transfers carry a Perfituesi block instead of the POS fields,
// fees carry no Detajet at all.

// block is one candidate transaction: its start line, the parsed amount line
// and, when found, the description and the offset it was found at.
type block struct {
	start       int
	amounts     models.AmountSet
	description string
	descOffset  int
}

// reconstructor walks a cleaned line sequence with a single forward cursor.
type reconstructor struct {
	lines  []string
	resync bool
	log    logrus.FieldLogger
}

func (r *reconstructor) run() []models.TransactionRecord {
	var records []models.TransactionRecord
	i := 0
	for i < len(r.lines)-2 {
		if !isStartLine(r.lines[i]) {
			i++
			continue
		}

		b := block{start: i, amounts: parseAmounts(r.lines[i+1])}
		if b.amounts.Balance == "" {
			r.log.WithField(logging.FieldLine, i).Debug("Rejected start line: no balance on amount line")
			i++
			continue
		}
		b.description, b.descOffset = r.findDescription(i)

		variant := r.classify(b)
		var rec models.TransactionRecord
		var next int
		switch variant {
		case models.NoDescription:
			rec, next = r.noDescription(b)
		case models.BeneficiaryContinuation:
			rec, next = r.beneficiary(b)
		case models.ImmediateNextDate:
			rec, next = r.immediateNextDate(b)
		default:
			rec, next = r.structuredPOS(b)
		}

		r.log.WithFields(logrus.Fields{
			logging.FieldLine:    i,
			logging.FieldVariant: variant.String(),
			"next":               next,
		}).Debug("Reconstructed transaction")

		records = append(records, rec)
		i = next
	}
	return records
}

// findDescription looks for the Detajet label two or three lines after the
// start line. The first line carrying the label wins even if its value is
// empty, in which case the block is treated as having no description.
func (r *reconstructor) findDescription(start int) (string, int) {
	for _, offset := range []int{2, 3} {
		line, ok := lineAt(r.lines, start+offset)
		if !ok {
			break
		}
		if hasLabel(line, labelDescription, labelDescriptionSplit) {
			return extractFirst(line, labelDescription, labelDescriptionSplit), offset
		}
	}
	return "", 0
}

// classify picks the layout variant from the line following the description.
func (r *reconstructor) classify(b block) models.Variant {
	if b.description == "" {
		return models.NoDescription
	}
	next, ok := lineAt(r.lines, b.start+b.descOffset+1)
	if !ok {
		return models.StructuredPOS
	}
	if hasLabel(next, labelBeneficiary, labelOrderedBy) {
		return models.BeneficiaryContinuation
	}
	if isStartLine(next) {
		return models.ImmediateNextDate
	}
	return models.StructuredPOS
}

// noDescription emits the amounts alone and skips to the next start line.
func (r *reconstructor) noDescription(b block) (models.TransactionRecord, int) {
	rec := models.NewRecord(b.amounts, models.NoDescription)
	return rec, nextStartLine(r.lines, b.start+2)
}

// beneficiary absorbs every line up to the next start line into Perfituesi.
func (r *reconstructor) beneficiary(b block) (models.TransactionRecord, int) {
	rec := models.NewRecord(b.amounts, models.BeneficiaryContinuation)
	rec.Description = b.description

	idx := b.start + b.descOffset + 1
	parts := []string{extractFirst(r.lines[idx], labelBeneficiary, labelOrderedBy)}
	j := idx + 1
	for ; j < len(r.lines) && !isStartLine(r.lines[j]); j++ {
		parts = append(parts, strings.TrimSpace(r.lines[j]))
	}
	rec.Beneficiary = strings.Join(parts, " ")
	return rec, j
}

// immediateNextDate emits the description only; the following start line
// belongs to the next transaction.
func (r *reconstructor) immediateNextDate(b block) (models.TransactionRecord, int) {
	rec := models.NewRecord(b.amounts, models.ImmediateNextDate)
	rec.Description = b.description
	return rec, b.start + b.descOffset + 1
}

// structuredPOS reads the four card-terminal fields at fixed offsets after
// the description and advances by the fixed block stride. With resync on,
// a start line inside the block ends it early: fields from that line on
// belong to the next transaction and are left empty.
func (r *reconstructor) structuredPOS(b block) (models.TransactionRecord, int) {
	rec := models.NewRecord(b.amounts, models.StructuredPOS)
	rec.Description = b.description

	ref := b.start + b.descOffset + 1
	next := b.start + b.descOffset + 5
	end := len(r.lines)
	if r.resync {
		if boundary := nextStartLine(r.lines, ref); boundary < next {
			r.log.WithFields(logrus.Fields{
				logging.FieldLine: b.start,
				"stride":          next,
				"boundary":        boundary,
			}).Debug("POS block shorter than its stride, resynchronizing")
			end, next = boundary, boundary
		}
	}

	field := func(idx int, labels ...string) string {
		if idx >= end {
			return ""
		}
		line, ok := lineAt(r.lines, idx)
		if !ok {
			return ""
		}
		return extractFirst(line, labels...)
	}
	rec.Reference = field(ref, labelReference)
	rec.CardNumber = field(ref+1, labelCardNumber)
	rec.Timestamp = field(ref+2, labelTimestamp)
	rec.Terminal = field(ref+3, labelTerminal, labelTerminalSplit)

	return rec, next
}
