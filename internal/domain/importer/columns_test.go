package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "booktitle", normalizeHeader("Book Title"))
	assert.Equal(t, "booktitle", normalizeHeader("book_title"))
	assert.Equal(t, "booktitle", normalizeHeader("BOOK-TITLE"))
	assert.Equal(t, "accessionno", normalizeHeader("Accession No."))
}

func TestResolveColumns(t *testing.T) {
	cm, err := resolveColumns([]string{"Accession No", "Book Title", "Author Name", "Total Copies"})
	require.NoError(t, err)

	assert.Equal(t, FieldAccession, cm[0])
	assert.Equal(t, FieldTitle, cm[1])
	assert.Equal(t, FieldAuthor, cm[2])
	assert.Equal(t, FieldCopies, cm[3])
}

func TestResolveColumns_FirstSynonymWins(t *testing.T) {
	// "title" outranks "name" inside the title group; "name" stays unbound
	// because each field binds once.
	cm, err := resolveColumns([]string{"name", "title"})
	require.NoError(t, err)

	assert.Equal(t, FieldTitle, cm[1])
	_, bound := cm[0]
	assert.False(t, bound)
}

func TestResolveColumns_HeaderClaimedOnce(t *testing.T) {
	// A single "code" header binds to accession and cannot be claimed again.
	cm, err := resolveColumns([]string{"code", "writer"})
	require.NoError(t, err)

	assert.Equal(t, FieldAccession, cm[0])
	assert.Equal(t, FieldAuthor, cm[1])
	assert.Len(t, cm, 2)
}

func TestResolveColumns_NoneRecognized(t *testing.T) {
	_, err := resolveColumns([]string{"alpha", "beta"})
	assert.Error(t, err)
}

func TestRowAccessors(t *testing.T) {
	row := Row{Index: 3, Fields: map[Field]string{
		FieldTitle:  "  spaced  ",
		FieldCopies: "4",
		FieldYear:   "1998",
	}}

	assert.Equal(t, "spaced", row.Get(FieldTitle))
	assert.Equal(t, 4, row.Copies())
	require.NotNil(t, row.Year())
	assert.Equal(t, 1998, *row.Year())

	empty := Row{Fields: map[Field]string{FieldCopies: "junk", FieldYear: "-3"}}
	assert.Equal(t, 1, empty.Copies())
	assert.Nil(t, empty.Year())
}
