package extractor

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
)

func frag(s string, x, w, fontSize float64) pdf.Text {
	return pdf.Text{S: s, X: x, W: w, FontSize: fontSize}
}

// tableRow builds a positioned row with a wide gap between the two columns.
func tableRow(left, right string) *pdf.Row {
	return &pdf.Row{Content: pdf.TextHorizontal{
		frag(left, 10, 80, 10),
		frag(right, 200, 80, 10),
	}}
}

func proseRow(text string) *pdf.Row {
	return &pdf.Row{Content: pdf.TextHorizontal{frag(text, 10, 300, 10)}}
}

func TestDetectTables(t *testing.T) {
	rows := pdf.Rows{
		proseRow("Introduction paragraph."),
		tableRow("Company", "Location"),
		tableRow("Acme Ltd", "Gandhinagar"),
		tableRow("Widget Co", "Ahmedabad"),
		proseRow("Closing paragraph."),
	}

	tables := detectTables(rows)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	want := "[table]\nCompany | Location\nAcme Ltd | Gandhinagar\nWidget Co | Ahmedabad"
	if tables[0] != want {
		t.Errorf("serialized table mismatch:\ngot:  %q\nwant: %q", tables[0], want)
	}
}

func TestDetectTablesIgnoresSingleRow(t *testing.T) {
	// One multi-column row between prose is layout noise, not a table.
	rows := pdf.Rows{
		proseRow("Some text."),
		tableRow("Left", "Right"),
		proseRow("More text."),
	}

	if tables := detectTables(rows); len(tables) != 0 {
		t.Errorf("expected no tables, got %d", len(tables))
	}
}

func TestDetectTablesSplitsRuns(t *testing.T) {
	rows := pdf.Rows{
		tableRow("A", "1"),
		tableRow("B", "2"),
		proseRow("Interlude paragraph between the tables."),
		tableRow("C", "3"),
		tableRow("D", "4"),
	}

	tables := detectTables(rows)
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if !strings.Contains(tables[0], "A | 1") || !strings.Contains(tables[1], "C | 3") {
		t.Errorf("tables split incorrectly: %q / %q", tables[0], tables[1])
	}
}

func TestSplitCellsMergesWordSpacing(t *testing.T) {
	// Two fragments separated by ordinary word spacing form one cell.
	content := pdf.TextHorizontal{
		frag("Total", 10, 40, 10),
		frag(" revenue", 52, 60, 10),
		frag("42", 300, 20, 10),
	}

	cells := splitCells(content)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d: %v", len(cells), cells)
	}
	if cells[0] != "Total revenue" {
		t.Errorf("expected merged first cell, got %q", cells[0])
	}
	if cells[1] != "42" {
		t.Errorf("expected %q, got %q", "42", cells[1])
	}
}

func TestSplitCellsUnsortedFragments(t *testing.T) {
	// Fragments arrive in content-stream order, not reading order.
	content := pdf.TextHorizontal{
		frag("Right", 200, 40, 10),
		frag("Left", 10, 40, 10),
	}

	cells := splitCells(content)
	if len(cells) != 2 || cells[0] != "Left" || cells[1] != "Right" {
		t.Errorf("expected [Left Right], got %v", cells)
	}
}
