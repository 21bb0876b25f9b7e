package importer

import (
	"fmt"
	"strings"
)

// Field is a canonical logical column of an import row.
type Field string

const (
	FieldTitle       Field = "title"
	FieldAuthor      Field = "author"
	FieldAccession   Field = "accession"
	FieldCategory    Field = "category"
	FieldDescription Field = "description"
	FieldPublisher   Field = "publisher"
	FieldYear        Field = "year"
	FieldShelf       Field = "shelf"
	FieldCopies      Field = "copies"
)

// fieldOrder fixes resolution priority so a header like "name" binds to the
// title group before anything else can claim it.
var fieldOrder = []Field{
	FieldTitle, FieldAuthor, FieldAccession, FieldCategory,
	FieldDescription, FieldPublisher, FieldYear, FieldShelf, FieldCopies,
}

// columnSynonyms is the typed mapping {accepted spelling -> canonical field}.
// Spellings are compared after header normalization, so "Book Title",
// "book_title" and "BOOK-TITLE" all collapse to "booktitle".
var columnSynonyms = map[Field][]string{
	FieldTitle:       {"title", "booktitle", "bookname", "name"},
	FieldAuthor:      {"author", "authors", "writer", "authorname"},
	FieldAccession:   {"accessionno", "accession", "accno", "bookno", "code"},
	FieldCategory:    {"category", "subject", "genre"},
	FieldDescription: {"description", "notes", "remarks"},
	FieldPublisher:   {"publisher", "publication", "press"},
	FieldYear:        {"year", "publicationyear", "pubyear"},
	FieldShelf:       {"shelf", "shelflocation", "rack", "location"},
	FieldCopies:      {"copies", "totalcopies", "copycount", "quantity", "qty", "noofcopies"},
}

func init() {
	// The synonym table is configuration; validate it once instead of
	// tolerating ambiguity per request.
	seen := make(map[string]Field)
	for field, names := range columnSynonyms {
		for _, n := range names {
			if prev, ok := seen[n]; ok {
				panic(fmt.Sprintf("importer: synonym %q claimed by both %s and %s", n, prev, field))
			}
			seen[n] = field
		}
	}
}

// normalizeHeader lowercases a header cell and strips whitespace,
// underscores, hyphens and dots.
func normalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '_', '-', '.':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columnMap binds spreadsheet column indexes to logical fields.
type columnMap map[int]Field

// resolveColumns matches a header row against the synonym groups.
// For each logical field the first synonym present in the row wins;
// a header cell binds to at most one field. Unresolved fields simply
// stay absent and default per field at parse time.
func resolveColumns(headers []string) (columnMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	cm := make(columnMap)
	claimed := make(map[int]bool)
	for _, field := range fieldOrder {
		for _, syn := range columnSynonyms[field] {
			idx := -1
			for i, h := range normalized {
				if !claimed[i] && h == syn {
					idx = i
					break
				}
			}
			if idx >= 0 {
				cm[idx] = field
				claimed[idx] = true
				break
			}
		}
	}

	if len(cm) == 0 {
		return nil, fmt.Errorf("no recognizable columns in header row")
	}
	return cm, nil
}
