package extractor

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Structural table detection from positioned row text.
//
// A row whose fragments cluster into two or more columns (separated by a
// horizontal gap well beyond word spacing) is a candidate table row; a run of
// at least minTableRows consecutive candidates becomes a table. Serialization
// is row-major and pipe-delimited, one row per line, and must stay stable:
// chunk identifiers depend on the serialized text.
const (
	minTableRows = 2
	// columnGapFactor scales the font size into the minimum horizontal gap
	// that separates columns rather than words.
	columnGapFactor = 2.0
)

// detectTables returns the serialized tables found on a page.
func detectTables(rows pdf.Rows) []string {
	var tables []string
	var run [][]string

	flush := func() {
		if len(run) >= minTableRows {
			tables = append(tables, serializeTable(run))
		}
		run = nil
	}

	for _, row := range rows {
		cells := splitCells(row.Content)
		if len(cells) >= 2 {
			run = append(run, cells)
		} else {
			flush()
		}
	}
	flush()

	return tables
}

// splitCells groups a row's text fragments into cells by x-position gaps.
func splitCells(content pdf.TextHorizontal) []string {
	if len(content) == 0 {
		return nil
	}

	frags := make([]pdf.Text, len(content))
	copy(frags, content)
	sort.Slice(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	var cells []string
	var cell strings.Builder
	prevEnd := frags[0].X

	for i, f := range frags {
		if i > 0 {
			gap := f.X - prevEnd
			minGap := f.FontSize * columnGapFactor
			if minGap <= 0 {
				minGap = 12
			}
			if gap > minGap {
				cells = append(cells, strings.TrimSpace(cell.String()))
				cell.Reset()
			}
		}
		cell.WriteString(f.S)
		prevEnd = f.X + f.W
	}
	if s := strings.TrimSpace(cell.String()); s != "" {
		cells = append(cells, s)
	}

	out := cells[:0]
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// serializeTable renders a table row-major, cells joined by " | ".
func serializeTable(rows [][]string) string {
	var b strings.Builder
	b.WriteString("[table]\n")
	for i, cells := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(cells, " | "))
	}
	return b.String()
}
