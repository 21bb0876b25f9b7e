package activity

import (
	"context"
	"time"
)

// Repository defines storage operations for events and notices.
type Repository interface {
	// AppendEvent inserts one event (write-once, no updates).
	AppendEvent(ctx context.Context, e *Event) error
	// AppendEvents inserts a chunk of events with one multi-row statement.
	AppendEvents(ctx context.Context, events []*Event) error

	// ListEvents returns events ordered by occurrence timestamp descending.
	// A non-nil hiddenBefore drops events at or before the cutoff.
	ListEvents(ctx context.Context, hiddenBefore *time.Time, limit int) ([]*Event, error)

	// Cutoff is a per-viewer display filter, stored as a timestamp rather
	// than deleting events.
	GetCutoff(ctx context.Context, viewer string) (*time.Time, error)
	SetCutoff(ctx context.Context, viewer string, hiddenBefore time.Time) error

	// Notice generation inputs and output.
	FindDueSoonLoans(ctx context.Context, from, to time.Time) ([]NoticeCandidate, error)
	FindOverdueLoans(ctx context.Context, asOf time.Time) ([]NoticeCandidate, error)
	// InsertNotices skips rows whose (loan, type, date) already exist.
	InsertNotices(ctx context.Context, notices []*Notice) error
	ListNotices(ctx context.Context, onDate time.Time, limit int) ([]*Notice, error)
}
