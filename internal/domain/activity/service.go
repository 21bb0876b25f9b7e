package activity

import (
	"context"
	"fmt"
	"time"

	appctx "pustakalaya/internal/core/context"
	"pustakalaya/internal/core/id"
	"pustakalaya/pkg/krutidev"
	"pustakalaya/pkg/logger"
)

// DueSoonWindow is how far ahead the due-soon notice looks.
const DueSoonWindow = 2 * 24 * time.Hour

var displayPrefixes = []string{
	EventIssue.Label(),
	EventReturn.Label(),
	EventBookAdded.Label(),
	EventMemberAdded.Label(),
}

// Service generates and reads activity events and loan notices.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates the activity service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// --- Event recorders, called inside the mutating transaction ---

// LoanIssued records an issue event.
func (s *Service) LoanIssued(ctx context.Context, loanID, titleID, memberID id.ID) error {
	return s.append(ctx, EventIssue, "loan", loanID,
		fmt.Sprintf("title %s issued to member %s", titleID, memberID))
}

// LoanReturned records a return event.
func (s *Service) LoanReturned(ctx context.Context, loanID, titleID, memberID id.ID) error {
	return s.append(ctx, EventReturn, "loan", loanID,
		fmt.Sprintf("title %s returned by member %s", titleID, memberID))
}

// BookAdded records a catalog insertion.
func (s *Service) BookAdded(ctx context.Context, titleID id.ID, name string) error {
	return s.append(ctx, EventBookAdded, "title", titleID, name)
}

// BookAddedBatch records catalog insertions from an import chunk with one
// multi-row statement.
func (s *Service) BookAddedBatch(ctx context.Context, added map[id.ID]string) error {
	if len(added) == 0 {
		return nil
	}
	events := make([]*Event, 0, len(added))
	now := s.now()
	for titleID, name := range added {
		events = append(events, &Event{
			ID:         id.New(),
			Type:       EventBookAdded,
			EntityType: "title",
			EntityID:   titleID,
			OccurredAt: now,
			Title:      EventBookAdded.Label() + name,
		})
	}
	return s.repo.AppendEvents(ctx, events)
}

// MemberAdded records a member registration.
func (s *Service) MemberAdded(ctx context.Context, memberID id.ID, name string) error {
	return s.append(ctx, EventMemberAdded, "member", memberID, name)
}

func (s *Service) append(ctx context.Context, t EventType, entityType string, entityID id.ID, detail string) error {
	e := &Event{
		ID:         id.New(),
		Type:       t,
		EntityType: entityType,
		EntityID:   entityID,
		OccurredAt: s.now(),
		Title:      t.Label() + detail,
	}
	if err := s.repo.AppendEvent(ctx, e); err != nil {
		return fmt.Errorf("append %s event: %w", t, err)
	}
	return nil
}

// --- Reads ---

// List returns recent events for the requesting viewer, honoring the
// per-viewer hidden-before cutoff. Display text is passed through the
// encoding normalizer so legacy glyph-mapped titles render as Devanagari.
func (s *Service) List(ctx context.Context, limit int) ([]*Event, error) {
	var cutoff *time.Time
	if viewer := appctx.GetViewer(ctx); viewer != "" {
		c, err := s.repo.GetCutoff(ctx, viewer)
		if err != nil {
			return nil, err
		}
		cutoff = c
	}

	events, err := s.repo.ListEvents(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		e.Title = krutidev.NormalizeSentence(e.Title, displayPrefixes...)
		if e.Detail != "" {
			e.Detail = krutidev.NormalizeSentence(e.Detail, displayPrefixes...)
		}
	}
	return events, nil
}

// HideBefore moves the viewer's cutoff. Events are hidden, never deleted.
func (s *Service) HideBefore(ctx context.Context, hiddenBefore time.Time) error {
	viewer := appctx.GetViewer(ctx)
	if viewer == "" {
		return nil
	}
	return s.repo.SetCutoff(ctx, viewer, hiddenBefore)
}

// --- Notice generation ---

// GenerateLoanNotices derives overdue and due-soon notices from current
// loan state. Cheap and repeatable: the unique (loan, type, date) key in
// storage makes a second run on the same day a no-op, so callers invoke it
// inline on any read that reports loan statistics.
func (s *Service) GenerateLoanNotices(ctx context.Context) error {
	now := s.now()
	today := now.Truncate(24 * time.Hour)

	overdue, err := s.repo.FindOverdueLoans(ctx, now)
	if err != nil {
		return fmt.Errorf("find overdue loans: %w", err)
	}
	dueSoon, err := s.repo.FindDueSoonLoans(ctx, now, now.Add(DueSoonWindow))
	if err != nil {
		return fmt.Errorf("find due-soon loans: %w", err)
	}

	notices := make([]*Notice, 0, len(overdue)+len(dueSoon))
	for _, c := range overdue {
		notices = append(notices, s.newNotice(c, NoticeOverdue, today,
			fmt.Sprintf("'%s' held by %s was due on %s",
				c.TitleName, c.MemberName, c.DueDate.Format("2006-01-02"))))
	}
	for _, c := range dueSoon {
		notices = append(notices, s.newNotice(c, NoticeDueSoon, today,
			fmt.Sprintf("'%s' held by %s is due on %s",
				c.TitleName, c.MemberName, c.DueDate.Format("2006-01-02"))))
	}

	if len(notices) == 0 {
		return nil
	}
	if err := s.repo.InsertNotices(ctx, notices); err != nil {
		return fmt.Errorf("insert notices: %w", err)
	}
	logger.Debug(ctx, "loan notices generated", "candidates", len(notices))
	return nil
}

func (s *Service) newNotice(c NoticeCandidate, t NoticeType, day time.Time, msg string) *Notice {
	return &Notice{
		ID:         id.New(),
		LoanID:     c.LoanID,
		Type:       t,
		NoticeDate: day,
		Message:    msg,
		CreatedAt:  s.now(),
	}
}

// ListNotices returns today's notices with display text normalized.
func (s *Service) ListNotices(ctx context.Context, limit int) ([]*Notice, error) {
	notices, err := s.repo.ListNotices(ctx, s.now().Truncate(24*time.Hour), limit)
	if err != nil {
		return nil, err
	}
	for _, n := range notices {
		n.Message = krutidev.NormalizeSentence(n.Message)
	}
	return notices, nil
}
