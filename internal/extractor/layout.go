package extractor

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultCharWidth is the advance of one character of the statement's
// fixed-width font, in points (8pt Courier).
const DefaultCharWidth = 4.8

// layoutPage rebuilds the page as fixed-width text lines. Text pieces are
// grouped into rows by Y and placed at the character column their X
// coordinate maps to, so the table's column alignment survives.
func layoutPage(items []pdf.Text, charWidth float64) string {
	if charWidth <= 0 {
		charWidth = DefaultCharWidth
	}

	rowMap := make(map[int][]pdf.Text)
	left := math.Inf(1)
	for _, t := range items {
		if t.S == "" {
			continue
		}
		// Round Y to group into rows
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], t)
		if strings.TrimSpace(t.S) != "" && t.X < left {
			left = t.X
		}
	}
	if len(rowMap) == 0 {
		return ""
	}
	if math.IsInf(left, 1) {
		left = 0
	}

	// PDF Y goes bottom-to-top
	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	lines := make([]string, 0, len(yKeys))
	for _, y := range yKeys {
		row := rowMap[y]
		sort.SliceStable(row, func(a, b int) bool {
			return row[a].X < row[b].X
		})
		lines = append(lines, layoutRow(row, left, charWidth))
	}
	return strings.Join(lines, "\n")
}

func layoutRow(row []pdf.Text, left, charWidth float64) string {
	var line []rune
	prevEnd := math.Inf(-1)
	for _, t := range row {
		// A visible gap means the piece starts a new column: pad to it.
		if t.X-prevEnd > charWidth/2 {
			col := int(math.Round((t.X - left) / charWidth))
			for len(line) < col {
				line = append(line, ' ')
			}
		}
		line = append(line, []rune(t.S)...)
		end := t.X + t.W
		if t.W <= 0 {
			end = t.X + charWidth*float64(len([]rune(t.S)))
		}
		prevEnd = end
	}
	return strings.TrimRight(string(line), " ")
}
