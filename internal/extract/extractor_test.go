package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := New("report.rtf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_TxtUTF8(t *testing.T) {
	text, err := Extract("notes.txt", []byte("The   board   approved   the budget.\n\n\n\nIt takes effect immediately."))
	require.NoError(t, err)
	assert.Contains(t, text, "The board approved the budget.")
	assert.Contains(t, text, "It takes effect immediately.")
	assert.NotContains(t, text, "\n\n\n")
}

func TestExtract_EmptyDocument(t *testing.T) {
	_, err := Extract("empty.txt", []byte("   \n\n  \t"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestCleanup_CollapsesBlankRuns(t *testing.T) {
	out := cleanup("line one\n\n\n\n\nline two")
	assert.Equal(t, "line one\n\nline two", out)
}

func TestStripRunningHeaders_RemovesRepeatedLine(t *testing.T) {
	pages := []string{
		"CONFIDENTIAL\nClause one.\n1",
		"CONFIDENTIAL\nClause two.\n2",
		"CONFIDENTIAL\nClause three.\n3",
	}
	out := stripRunningHeaders(pages)
	assert.NotContains(t, out, "CONFIDENTIAL")
	assert.NotContains(t, out, "\n1\n")
	assert.Contains(t, out, "Clause one.")
	assert.Contains(t, out, "Clause three.")
}

func TestStripRunningHeaders_RemovesVaryingPageNumber(t *testing.T) {
	pages := []string{
		"Confidential — Page 1\nClause one.",
		"Confidential — Page 2\nClause two.",
		"Confidential — Page 3\nClause three.",
	}
	out := stripRunningHeaders(pages)
	assert.NotContains(t, out, "Confidential")
	assert.Contains(t, out, "Clause one.")
	assert.Contains(t, out, "Clause three.")
}

func TestSkipTable_NumericMajority(t *testing.T) {
	// sanity: pattern matches currency/percent/date-like cells
	assert.True(t, numericCellPattern.MatchString("$1,200.00"))
	assert.True(t, numericCellPattern.MatchString("45%"))
	assert.True(t, numericCellPattern.MatchString("01/15/2026"))
	assert.False(t, numericCellPattern.MatchString("Net revenue"))
}
