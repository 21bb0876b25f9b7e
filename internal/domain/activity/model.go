// Package activity derives human-readable events and notifications from
// catalog, member and loan mutations. Events are write-once and append-only;
// notifications are generated idempotently (one per loan, type and day).
package activity

import (
	"time"

	"pustakalaya/internal/core/id"
)

// EventType classifies an activity event.
type EventType string

const (
	EventIssue       EventType = "issue"
	EventReturn      EventType = "return"
	EventBookAdded   EventType = "book_added"
	EventMemberAdded EventType = "member_added"
)

// Label is the machine-generated prefix used when composing event text.
// The display normalizer treats it as trusted English and only repairs the
// content after it.
func (t EventType) Label() string {
	switch t {
	case EventIssue:
		return "Book issued: "
	case EventReturn:
		return "Book returned: "
	case EventBookAdded:
		return "Book added: "
	case EventMemberAdded:
		return "Member added: "
	default:
		return ""
	}
}

// Event is an append-only record of a catalog or circulation change.
type Event struct {
	ID         id.ID     `db:"id" json:"id"`
	Type       EventType `db:"type" json:"type"`
	EntityType string    `db:"entity_type" json:"entityType"`
	EntityID   id.ID     `db:"entity_id" json:"entityId"`
	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`
	Title      string    `db:"title" json:"title"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
}

// NoticeType classifies a loan notification.
type NoticeType string

const (
	NoticeOverdue NoticeType = "overdue"
	NoticeDueSoon NoticeType = "due_soon"
)

// Notice is a derived loan notification. The (LoanID, Type, NoticeDate)
// triple is unique in storage, which is what makes generation idempotent
// per calendar day.
type Notice struct {
	ID         id.ID      `db:"id" json:"id"`
	LoanID     id.ID      `db:"loan_id" json:"loanId"`
	Type       NoticeType `db:"type" json:"type"`
	NoticeDate time.Time  `db:"notice_date" json:"noticeDate"`
	Message    string     `db:"message" json:"message"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// NoticeCandidate is a loan eligible for a notification, joined with the
// display fields the message needs.
type NoticeCandidate struct {
	LoanID     id.ID     `db:"loan_id"`
	TitleName  string    `db:"title_name"`
	MemberName string    `db:"member_name"`
	DueDate    time.Time `db:"due_date"`
}
