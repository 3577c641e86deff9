package diag

import "sort"

// Collector accumulates recoverable compilation errors. The current context
// is the byte offset of the most recently visited identifier; each reported
// error is anchored there so diagnostics point at the construct that failed.
type Collector struct {
	file   string
	source string
	anchor int
	errors []*CompileError
}

// NewCollector creates a collector for the given source buffer.
func NewCollector(file, source string) *Collector {
	return &Collector{file: file, source: source}
}

// SetContext records the byte offset of the identifier subsequent errors
// should anchor to.
func (c *Collector) SetContext(offset int) {
	c.anchor = offset
}

// Context returns the current anchor offset.
func (c *Collector) Context() int {
	return c.anchor
}

// SemanticError reports a recoverable error anchored at the current context.
func (c *Collector) SemanticError(kind Kind, message string) {
	c.SemanticErrorAt(kind, message, c.anchor)
}

// SemanticErrorAt reports a recoverable error anchored at an explicit byte
// offset.
func (c *Collector) SemanticErrorAt(kind Kind, message string, offset int) {
	line, column, text := LineColumn(c.source, offset)
	c.errors = append(c.errors, &CompileError{
		Kind:       kind,
		Message:    message,
		File:       c.file,
		Line:       line,
		Column:     column,
		SourceLine: text,
		Offset:     offset,
	})
}

// HasErrors reports whether any error has been collected.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns the collected errors in source order.
func (c *Collector) Errors() []*CompileError {
	sorted := append([]*CompileError(nil), c.errors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// Count returns the number of collected errors.
func (c *Collector) Count() int {
	return len(c.errors)
}
