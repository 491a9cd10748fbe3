package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_AssignsContiguousPositions(t *testing.T) {
	text := "SECTION 1\n\nThe contractor shall deliver the goods within thirty days of signing.\n\nThe buyer must pay the full invoice amount upon delivery of the goods."
	clauses, err := Segment(text)
	require.NoError(t, err)
	require.Len(t, clauses, 2)
	for i, c := range clauses {
		assert.Equal(t, i, c.Position)
	}
	assert.Equal(t, "SECTION 1", clauses[0].Section)
}

func TestSegment_DropsNoiseAndHeadings(t *testing.T) {
	text := "TABLE OF CONTENTS\n\nPage 3 of 10\n\nConfidential\n\nARTICLE 1\n\nThe parties agree that this agreement terminates on December 31."
	clauses, err := Segment(text)
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].Text, "terminates")
}

func TestSegment_SkipsWholeDefinitionsSection(t *testing.T) {
	text := "DEFINITIONS\n\n\"Agreement\" means the binding contract between the parties.\n\nARTICLE 1\n\nThe contractor shall deliver the goods within thirty days of signing."
	clauses, err := Segment(text)
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0].Text, "thirty days")
}

func TestSegment_DropsNearDuplicates(t *testing.T) {
	text := "The vendor shall deliver all units by March first.\n\nThe vendor shall deliver all units by March 1st."
	clauses, err := Segment(text)
	require.NoError(t, err)
	assert.Len(t, clauses, 1)
}

func TestIsAssertive_RejectsShortFragment(t *testing.T) {
	assert.False(t, isAssertive("Ratings:"))
}

func TestStripNumericPrefix(t *testing.T) {
	assert.Equal(t, "Payment is due net 30.", stripNumericPrefix("3.2) Payment is due net 30."))
	assert.Equal(t, "Payment is due net 30.", stripNumericPrefix("- Payment is due net 30."))
}

func TestIsDuplicate_ContentOverlap(t *testing.T) {
	seen := []string{contentSignature("The vendor shall deliver all units by march first")}
	assert.True(t, isDuplicate("The vendor shall deliver all units by March 1st", seen))
	assert.False(t, isDuplicate("The buyer must inspect the shipment within five days", seen))
}
