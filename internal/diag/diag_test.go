package diag

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestLineColumn(t *testing.T) {
	source := "first line\nsecond line\nthird"

	tests := []struct {
		name     string
		offset   int
		wantLine int
		wantCol  int
		wantText string
	}{
		{"start of buffer", 0, 1, 1, "first line"},
		{"middle of first line", 6, 1, 7, "first line"},
		{"start of second line", 11, 2, 1, "second line"},
		{"inside second line", 18, 2, 8, "second line"},
		{"last line without newline", 23, 3, 1, "third"},
		{"past the end clamps", 99, 3, 6, "third"},
		{"negative clamps to start", -5, 1, 1, "first line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col, text := LineColumn(source, tt.offset)
			if line != tt.wantLine || col != tt.wantCol || text != tt.wantText {
				t.Errorf("LineColumn(%d) = (%d, %d, %q), want (%d, %d, %q)",
					tt.offset, line, col, text, tt.wantLine, tt.wantCol, tt.wantText)
			}
		})
	}
}

func TestCollectorAnchorsErrors(t *testing.T) {
	source := "integer(x, 1)\nf(missing)\n"
	c := NewCollector("demo.epoch", source)

	c.SetContext(16) // "missing" on line 2
	c.SemanticError(KindUnknownIdentifier, "Undefined identifier")

	if !c.HasErrors() {
		t.Fatal("collector reports no errors after one was added")
	}
	e := c.Errors()[0]
	if e.Line != 2 {
		t.Errorf("anchored line %d, want 2", e.Line)
	}
	if e.Kind != KindUnknownIdentifier {
		t.Errorf("kind %v, want unknown identifier", e.Kind)
	}
}

func TestErrorsSortInSourceOrder(t *testing.T) {
	c := NewCollector("demo.epoch", "aaa\nbbb\nccc\n")

	c.SemanticErrorAt(KindTypeMismatch, "second", 8)
	c.SemanticErrorAt(KindTypeMismatch, "first", 1)

	errs := c.Errors()
	if errs[0].Message != "first" || errs[1].Message != "second" {
		t.Errorf("errors not in source order: %q then %q", errs[0].Message, errs[1].Message)
	}
}

func TestErrorFormatting(t *testing.T) {
	source := "integer(x, \"oops\")\n"
	c := NewCollector("demo.epoch", source)
	c.SemanticErrorAt(KindTypeMismatch, "Left-hand side of assignment differs in type from right-hand side", 11)

	snaps.MatchSnapshot(t, c.Errors()[0].Format(false))
}
