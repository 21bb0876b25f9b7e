package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pustakalaya/internal/core/id"
	"pustakalaya/internal/core/tx"
	"pustakalaya/internal/domain/catalogs/title"
	"pustakalaya/pkg/logger"
)

// ContentType declares how the raw upload bytes should be parsed.
type ContentType string

const (
	// ContentDelimited is CSV or similar delimited text, possibly
	// gzip-compressed and in any of the supported byte encodings.
	ContentDelimited ContentType = "delimited-text"
	// ContentWorkbook is an xlsx spreadsheet workbook.
	ContentWorkbook ContentType = "spreadsheet-workbook"
)

// ChunkSize is how many rows travel through lookups and writes together.
const ChunkSize = 500

// Recorder appends book_added events for inserted rows.
type Recorder interface {
	BookAddedBatch(ctx context.Context, added map[id.ID]string) error
}

// Pipeline ingests spreadsheet-like files into the Title catalog.
//
// Rows are streamed in chunks, never buffered whole. Each chunk is one
// transaction; committed chunks survive a later failure or cancellation,
// which the caller sees as a partial report plus the terminating error.
type Pipeline struct {
	titles    title.Repository
	matcher   *Matcher
	activity  Recorder
	txManager tx.Manager
}

// NewPipeline creates the import pipeline.
func NewPipeline(titles title.Repository, activity Recorder, txManager tx.Manager) *Pipeline {
	return &Pipeline{
		titles:    titles,
		matcher:   NewMatcher(titles),
		activity:  activity,
		txManager: txManager,
	}
}

// Run imports raw upload bytes and returns the structured report.
// The report is populated even when an error is returned.
func (p *Pipeline) Run(ctx context.Context, raw []byte, contentType ContentType) (*Report, error) {
	report := &Report{}

	source, err := p.openSource(raw, contentType)
	if err != nil {
		return report, err
	}
	defer source.Close()

	chunk := make([]Row, 0, ChunkSize)
	exhausted := false
	for !exhausted {
		chunk = chunk[:0]
		for len(chunk) < ChunkSize {
			row, err := source.Next()
			if errors.Is(err, io.EOF) {
				exhausted = true
				break
			}
			if err != nil {
				// The reader cannot recover reliably past a mangled
				// record; report it and stop consuming.
				report.Total++
				report.Skipped++
				report.addError(report.Total, fmt.Sprintf("unreadable row: %v", err))
				exhausted = true
				break
			}
			chunk = append(chunk, row)
		}
		if len(chunk) == 0 {
			break
		}

		// Cancellation is honored between chunks; committed chunks stay.
		if err := ctx.Err(); err != nil {
			logger.Warn(ctx, "import cancelled",
				"processed", report.Total, "inserted", report.Inserted)
			return report, err
		}

		p.processChunk(ctx, chunk, report)
	}

	logger.Info(ctx, "import finished",
		"total", report.Total,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (p *Pipeline) openSource(raw []byte, contentType ContentType) (rowSource, error) {
	switch contentType {
	case ContentWorkbook:
		return newXLSXSource(raw)
	case ContentDelimited, "":
		text, err := DecodeText(raw)
		if err != nil {
			return nil, err
		}
		return newCSVSource(text)
	default:
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}
}

// processChunk runs one chunk through validate -> match -> upsert inside a
// single transaction. If the transaction fails as a whole, the chunk is
// retried row by row so one bad row cannot lose the rest.
func (p *Pipeline) processChunk(ctx context.Context, chunk []Row, report *Report) {
	valid := make([]Row, 0, len(chunk))
	for _, row := range chunk {
		report.Total++
		if reason := validateRow(row); reason != "" {
			report.Skipped++
			report.addError(row.Index, reason)
			continue
		}
		valid = append(valid, row)
	}
	if len(valid) == 0 {
		return
	}

	inserted, updated, err := p.upsertChunk(ctx, valid)
	if err == nil {
		report.Inserted += inserted
		report.Updated += updated
		return
	}

	logger.Warn(ctx, "chunk upsert failed, retrying row by row",
		"rows", len(valid), "error", err)
	p.upsertRowwise(ctx, valid, report)
}

// upsertChunk is the fast path: batched lookups, per-row updates for
// matches, one multi-row insert for the rest, all in one transaction.
func (p *Pipeline) upsertChunk(ctx context.Context, rows []Row) (inserted, updated int, err error) {
	err = p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		matched, err := p.matcher.Resolve(ctx, rows)
		if err != nil {
			return err
		}

		var toInsert []*title.Title
		added := make(map[id.ID]string)
		for _, row := range rows {
			if existing, ok := matched[row.Index]; ok {
				if err := p.titles.UpdateDescriptive(ctx, rowUpsert(row, existing)); err != nil {
					return fmt.Errorf("row %d: %w", row.Index, err)
				}
				updated++
				continue
			}
			t := rowTitle(row)
			toInsert = append(toInsert, t)
			added[t.ID] = t.Name
		}

		if len(toInsert) > 0 {
			if err := p.titles.CreateBatch(ctx, toInsert); err != nil {
				return fmt.Errorf("batch insert: %w", err)
			}
			inserted = len(toInsert)
			if err := p.activity.BookAddedBatch(ctx, added); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, updated, nil
}

// upsertRowwise is the fallback path: every row gets its own transaction
// and its own error line in the report.
func (p *Pipeline) upsertRowwise(ctx context.Context, rows []Row, report *Report) {
	for _, row := range rows {
		row := row
		err := p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			matched, err := p.matcher.Resolve(ctx, []Row{row})
			if err != nil {
				return err
			}
			if existing, ok := matched[row.Index]; ok {
				if err := p.titles.UpdateDescriptive(ctx, rowUpsert(row, existing)); err != nil {
					return err
				}
				report.Updated++
				return nil
			}
			t := rowTitle(row)
			if err := p.titles.Create(ctx, t); err != nil {
				return err
			}
			report.Inserted++
			return p.activity.BookAddedBatch(ctx, map[id.ID]string{t.ID: t.Name})
		})
		if err != nil {
			report.Skipped++
			report.addError(row.Index, err.Error())
		}
	}
}

// validateRow returns a rejection reason, or "" for a usable row.
func validateRow(row Row) string {
	if row.Get(FieldTitle) == "" {
		return "missing title"
	}
	if row.Get(FieldAuthor) == "" {
		return "missing author"
	}
	return ""
}

// rowTitle builds a new catalog entry from an unmatched row.
// available_copies starts equal to total_copies.
func rowTitle(row Row) *title.Title {
	t := title.NewTitle(row.Get(FieldTitle), row.Get(FieldAuthor), row.Copies())
	t.AccessionNo = optional(row.Get(FieldAccession))
	t.Category = optional(row.Get(FieldCategory))
	t.Publisher = optional(row.Get(FieldPublisher))
	t.Shelf = optional(row.Get(FieldShelf))
	t.Description = optional(row.Get(FieldDescription))
	t.Year = row.Year()
	return t
}

// rowUpsert builds the descriptive update for a matched row. Only fields
// the row actually carries are set; a matched row never nulls out an
// existing value and never touches the copy counts.
func rowUpsert(row Row, existing *title.Title) title.Upsert {
	return title.Upsert{
		ID:          existing.ID,
		Name:        optional(row.Get(FieldTitle)),
		Author:      optional(row.Get(FieldAuthor)),
		AccessionNo: optional(row.Get(FieldAccession)),
		Category:    optional(row.Get(FieldCategory)),
		Publisher:   optional(row.Get(FieldPublisher)),
		Shelf:       optional(row.Get(FieldShelf)),
		Description: optional(row.Get(FieldDescription)),
		Year:        row.Year(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
