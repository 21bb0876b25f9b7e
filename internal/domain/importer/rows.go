package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"pustakalaya/pkg/krutidev"
)

// Row is one parsed import row. Index is the 1-based position in the
// original file (header excluded) and is carried through to error reports.
type Row struct {
	Index  int
	Fields map[Field]string
}

// Get returns a trimmed field value, empty when absent.
func (r Row) Get(f Field) string {
	return strings.TrimSpace(r.Fields[f])
}

// Copies returns the parsed copy count, defaulting to 1.
func (r Row) Copies() int {
	n, err := strconv.Atoi(r.Get(FieldCopies))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Year returns the parsed publication year, or nil.
func (r Row) Year() *int {
	n, err := strconv.Atoi(r.Get(FieldYear))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// rowSource streams rows one at a time so a 10k-row file never has to sit
// in memory as a single slice.
type rowSource interface {
	// Next returns the next row, or io.EOF when exhausted.
	Next() (Row, error)
	Close() error
}

// newRow builds a Row from raw cells, repairing legacy glyph-mapped text in
// the descriptive fields on the way in.
func newRow(index int, cells []string, cm columnMap) Row {
	fields := make(map[Field]string, len(cm))
	for i, f := range cm {
		if i >= len(cells) {
			continue
		}
		v := strings.TrimSpace(cells[i])
		if v == "" {
			continue
		}
		switch f {
		case FieldTitle, FieldAuthor, FieldCategory, FieldPublisher, FieldShelf, FieldDescription:
			v = krutidev.Normalize(v)
		}
		fields[f] = v
	}
	return Row{Index: index, Fields: fields}
}

// --- delimited text ---

type csvSource struct {
	r       *csv.Reader
	columns columnMap
	index   int
}

// newCSVSource reads the header row eagerly and streams the rest.
func newCSVSource(text string) (*csvSource, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // ragged exports are the norm, tolerate them
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	cm, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}
	return &csvSource{r: r, columns: cm}, nil
}

func (s *csvSource) Next() (Row, error) {
	record, err := s.r.Read()
	if err != nil {
		return Row{}, err
	}
	s.index++
	return newRow(s.index, record, s.columns), nil
}

func (s *csvSource) Close() error { return nil }

// --- spreadsheet workbook ---

type xlsxSource struct {
	file    *excelize.File
	rows    *excelize.Rows
	columns columnMap
	index   int
}

// newXLSXSource opens the first sheet of a workbook and streams its rows.
func newXLSXSource(raw []byte) (*xlsxSource, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open sheet %q: %w", sheets[0], err)
	}

	if !rows.Next() {
		_ = rows.Close()
		_ = f.Close()
		return nil, fmt.Errorf("workbook sheet %q is empty", sheets[0])
	}
	header, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = f.Close()
		return nil, fmt.Errorf("read header row: %w", err)
	}
	cm, err := resolveColumns(header)
	if err != nil {
		_ = rows.Close()
		_ = f.Close()
		return nil, err
	}

	return &xlsxSource{file: f, rows: rows, columns: cm}, nil
}

func (s *xlsxSource) Next() (Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return Row{}, err
		}
		return Row{}, io.EOF
	}
	cells, err := s.rows.Columns()
	if err != nil {
		return Row{}, err
	}
	s.index++
	return newRow(s.index, cells, s.columns), nil
}

func (s *xlsxSource) Close() error {
	_ = s.rows.Close()
	return s.file.Close()
}
