// Package activity_repo provides the PostgreSQL implementation of the
// activity event log and loan notice storage.
package activity_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"pustakalaya/internal/domain/activity"
	"pustakalaya/internal/infrastructure/storage/postgres"
)

const (
	eventTable  = "sys_activity"
	noticeTable = "sys_loan_notice"
	cutoffTable = "sys_activity_cutoff"
)

var _ activity.Repository = (*ActivityRepo)(nil)

// ActivityRepo implements activity.Repository.
type ActivityRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
	eventCols []string
}

// NewActivityRepo creates a new activity repository.
func NewActivityRepo(txManager *postgres.TxManager) *ActivityRepo {
	return &ActivityRepo{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
		eventCols: postgres.ExtractDBColumns[activity.Event](),
	}
}

func (r *ActivityRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// AppendEvent inserts one event.
func (r *ActivityRepo) AppendEvent(ctx context.Context, e *activity.Event) error {
	q := r.builder().
		Insert(eventTable).
		SetMap(postgres.StructToMap(e))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// AppendEvents inserts a chunk of events through the COPY protocol.
// Import chunks produce hundreds of events at once; COPY keeps that cheap.
// Requires a transaction context.
func (r *ActivityRepo) AppendEvents(ctx context.Context, events []*activity.Event) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(events))
	for _, e := range events {
		data := postgres.StructToMap(e)
		row := make([]any, len(r.eventCols))
		for i, col := range r.eventCols {
			row[i] = data[col]
		}
		rows = append(rows, row)
	}

	if _, err := r.batch.CopyFromSlice(ctx, eventTable, r.eventCols, rows); err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	return nil
}

// ListEvents returns events newest first, dropping everything at or before
// the cutoff when one is given.
func (r *ActivityRepo) ListEvents(ctx context.Context, hiddenBefore *time.Time, limit int) ([]*activity.Event, error) {
	q := r.builder().
		Select(r.eventCols...).
		From(eventTable).
		OrderBy("occurred_at DESC")

	if hiddenBefore != nil {
		q = q.Where(squirrel.Gt{"occurred_at": *hiddenBefore})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*activity.Event
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return items, nil
}

// GetCutoff returns the viewer's hidden-before timestamp, or nil when the
// viewer never cleared their feed.
func (r *ActivityRepo) GetCutoff(ctx context.Context, viewer string) (*time.Time, error) {
	const sql = `SELECT hidden_before FROM sys_activity_cutoff WHERE viewer = $1`

	var cutoff time.Time
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, viewer).Scan(&cutoff)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cutoff: %w", err)
	}
	return &cutoff, nil
}

// SetCutoff records the viewer's hidden-before timestamp. The cutoff only
// ever moves forward; clearing an already-cleared feed keeps the later mark.
func (r *ActivityRepo) SetCutoff(ctx context.Context, viewer string, hiddenBefore time.Time) error {
	const sql = `
		INSERT INTO sys_activity_cutoff (viewer, hidden_before)
		VALUES ($1, $2)
		ON CONFLICT (viewer)
		DO UPDATE SET hidden_before = GREATEST(sys_activity_cutoff.hidden_before, EXCLUDED.hidden_before)
	`
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, viewer, hiddenBefore); err != nil {
		return fmt.Errorf("set cutoff: %w", err)
	}
	return nil
}

// noticeCandidateSQL joins active loans with the display fields notice
// messages need. Returned loans never produce notices.
const noticeCandidateSQL = `
	SELECT l.id AS loan_id,
	       t.name AS title_name,
	       m.name AS member_name,
	       l.due_date
	FROM doc_loan l
	JOIN cat_title t ON t.id = l.title_id
	JOIN cat_member m ON m.id = l.member_id
	WHERE l.status IN ('issued', 'overdue')
`

// FindDueSoonLoans returns active loans due within (from, to].
func (r *ActivityRepo) FindDueSoonLoans(ctx context.Context, from, to time.Time) ([]activity.NoticeCandidate, error) {
	sql := noticeCandidateSQL + ` AND l.due_date > $1 AND l.due_date <= $2 ORDER BY l.due_date`

	var items []activity.NoticeCandidate
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, from, to); err != nil {
		return nil, fmt.Errorf("find due-soon loans: %w", err)
	}
	return items, nil
}

// FindOverdueLoans returns active loans whose due date has passed.
func (r *ActivityRepo) FindOverdueLoans(ctx context.Context, asOf time.Time) ([]activity.NoticeCandidate, error) {
	sql := noticeCandidateSQL + ` AND l.due_date < $1 ORDER BY l.due_date`

	var items []activity.NoticeCandidate
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, asOf); err != nil {
		return nil, fmt.Errorf("find overdue loans: %w", err)
	}
	return items, nil
}

// InsertNotices inserts notices, silently skipping any whose
// (loan, type, date) triple already exists. This is the idempotency point
// for notice generation.
func (r *ActivityRepo) InsertNotices(ctx context.Context, notices []*activity.Notice) error {
	if len(notices) == 0 {
		return nil
	}

	q := r.builder().
		Insert(noticeTable).
		Columns("id", "loan_id", "type", "notice_date", "message", "created_at").
		Suffix("ON CONFLICT (loan_id, type, notice_date) DO NOTHING")
	for _, n := range notices {
		q = q.Values(n.ID, n.LoanID, n.Type, n.NoticeDate, n.Message, n.CreatedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build notice insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert notices: %w", err)
	}
	return nil
}

// ListNotices returns notices generated on the given calendar day.
func (r *ActivityRepo) ListNotices(ctx context.Context, onDate time.Time, limit int) ([]*activity.Notice, error) {
	q := r.builder().
		Select("id", "loan_id", "type", "notice_date", "message", "created_at").
		From(noticeTable).
		Where(squirrel.Eq{"notice_date": onDate}).
		OrderBy("created_at DESC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*activity.Notice
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return items, nil
}
