package circulation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/id"
	"pustakalaya/internal/domain/catalogs/member"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeLoanRepo is an in-memory Repository.
type fakeLoanRepo struct {
	loans map[id.ID]*Loan
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[id.ID]*Loan)}
}

func (r *fakeLoanRepo) Create(ctx context.Context, l *Loan) error {
	cp := *l
	r.loans[l.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) GetByID(ctx context.Context, loanID id.ID) (*Loan, error) {
	l, ok := r.loans[loanID]
	if !ok {
		return nil, apperror.NewNotFound("loan", loanID.String())
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLoanRepo) List(ctx context.Context, f ListFilter) ([]*Loan, error) {
	var out []*Loan
	for _, l := range r.loans {
		if f.ActiveOnly && !l.Active() {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.MemberID != nil && l.MemberID != *f.MemberID {
			continue
		}
		if f.TitleID != nil && l.TitleID != *f.TitleID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeLoanRepo) CountActiveByMember(ctx context.Context, memberID id.ID) (int, error) {
	n := 0
	for _, l := range r.loans {
		if l.MemberID == memberID && l.Active() {
			n++
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) CountActiveByTitle(ctx context.Context, titleID id.ID) (int, error) {
	n := 0
	for _, l := range r.loans {
		if l.TitleID == titleID && l.Active() {
			n++
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) MarkReturned(ctx context.Context, loanID id.ID, returnedAt time.Time) (bool, error) {
	l, ok := r.loans[loanID]
	if !ok || l.Status == LoanReturned {
		return false, nil
	}
	l.Status = LoanReturned
	l.ReturnedAt = &returnedAt
	return true, nil
}

func (r *fakeLoanRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var promoted int64
	for _, l := range r.loans {
		if l.Status == LoanIssued && l.DueDate.Before(asOf) {
			l.Status = LoanOverdue
			promoted++
		}
	}
	return promoted, nil
}

// fakeLedger tracks copy counts per title.
type fakeLedger struct {
	total     map[id.ID]int
	available map[id.ID]int
	releases  int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{total: make(map[id.ID]int), available: make(map[id.ID]int)}
}

func (l *fakeLedger) addTitle(copies int) id.ID {
	titleID := id.New()
	l.total[titleID] = copies
	l.available[titleID] = copies
	return titleID
}

func (l *fakeLedger) ReserveCopy(ctx context.Context, titleID id.ID) error {
	if _, ok := l.available[titleID]; !ok {
		return apperror.NewNotFound("title", titleID.String())
	}
	if l.available[titleID] == 0 {
		return apperror.NewNoCopiesAvailable(titleID)
	}
	l.available[titleID]--
	return nil
}

func (l *fakeLedger) ReleaseCopy(ctx context.Context, titleID id.ID) error {
	if l.available[titleID] < l.total[titleID] {
		l.available[titleID]++
	}
	l.releases++
	return nil
}

// fakeMembers serves one category per code.
type fakeMembers struct {
	members    map[id.ID]*member.Member
	categories map[member.CategoryCode]*member.Category
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{
		members: make(map[id.ID]*member.Member),
		categories: map[member.CategoryCode]*member.Category{
			member.CategoryStudent: {Code: member.CategoryStudent, Name: "Student", MaxBooks: 3, LoanPeriodDays: 14},
			member.CategoryFaculty: {Code: member.CategoryFaculty, Name: "Faculty", MaxBooks: 6, LoanPeriodDays: 30},
		},
	}
}

func (f *fakeMembers) addMember(category member.CategoryCode, active bool) id.ID {
	m := member.NewMember("Test Member", category)
	m.Active = active
	f.members[m.ID] = m
	return m.ID
}

func (f *fakeMembers) GetByID(ctx context.Context, memberID id.ID) (*member.Member, error) {
	m, ok := f.members[memberID]
	if !ok {
		return nil, apperror.NewNotFound("member", memberID.String())
	}
	return m, nil
}

func (f *fakeMembers) GetCategory(ctx context.Context, code member.CategoryCode) (*member.Category, error) {
	c, ok := f.categories[code]
	if !ok {
		return nil, apperror.NewNotFound("member category", string(code))
	}
	return c, nil
}

type noopRecorder struct{}

func (noopRecorder) LoanIssued(ctx context.Context, loanID, titleID, memberID id.ID) error   { return nil }
func (noopRecorder) LoanReturned(ctx context.Context, loanID, titleID, memberID id.ID) error { return nil }

type fixture struct {
	service *Service
	loans   *fakeLoanRepo
	ledger  *fakeLedger
	members *fakeMembers
}

func newFixture() *fixture {
	loans := newFakeLoanRepo()
	ledger := newFakeLedger()
	members := newFakeMembers()
	service := NewService(loans, ledger, members, noopRecorder{}, passthroughTx{})
	return &fixture{service: service, loans: loans, ledger: ledger, members: members}
}

func (f *fixture) setNow(now time.Time) {
	f.service.now = func() time.Time { return now }
}

func TestIssue_ComputesDueDateFromCategory(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.setNow(now)

	titleID := f.ledger.addTitle(2)
	memberID := f.members.addMember(member.CategoryStudent, true)

	loan, err := f.service.Issue(context.Background(), titleID, memberID, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, LoanIssued, loan.Status)
	assert.Equal(t, now.AddDate(0, 0, 14), loan.DueDate)
	assert.Equal(t, 1, f.ledger.available[titleID])
}

func TestIssue_ExplicitDueDateWins(t *testing.T) {
	f := newFixture()
	titleID := f.ledger.addTitle(1)
	memberID := f.members.addMember(member.CategoryStudent, true)

	due := time.Now().UTC().AddDate(0, 0, 7)
	loan, err := f.service.Issue(context.Background(), titleID, memberID, due)
	require.NoError(t, err)
	assert.Equal(t, due, loan.DueDate)
}

func TestIssue_LastCopyThenNoCopiesAvailable(t *testing.T) {
	f := newFixture()
	titleID := f.ledger.addTitle(3)
	memberID := f.members.addMember(member.CategoryFaculty, true)

	for i := 0; i < 3; i++ {
		_, err := f.service.Issue(context.Background(), titleID, memberID, time.Time{})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, f.ledger.available[titleID])

	_, err := f.service.Issue(context.Background(), titleID, memberID, time.Time{})
	assert.True(t, apperror.HasCode(err, apperror.CodeNoCopiesAvailable))
	assert.Equal(t, 0, f.ledger.available[titleID])
}

func TestIssue_BorrowLimitExceeded(t *testing.T) {
	f := newFixture()
	memberID := f.members.addMember(member.CategoryStudent, true) // max 3

	for i := 0; i < 3; i++ {
		titleID := f.ledger.addTitle(1)
		_, err := f.service.Issue(context.Background(), titleID, memberID, time.Time{})
		require.NoError(t, err)
	}

	titleID := f.ledger.addTitle(1)
	_, err := f.service.Issue(context.Background(), titleID, memberID, time.Time{})
	assert.True(t, apperror.HasCode(err, apperror.CodeBorrowLimitExceeded))
	// The limit check precedes the reservation, so the copy stays free.
	assert.Equal(t, 1, f.ledger.available[titleID])
}

func TestIssue_InactiveMember(t *testing.T) {
	f := newFixture()
	titleID := f.ledger.addTitle(1)
	memberID := f.members.addMember(member.CategoryStudent, false)

	_, err := f.service.Issue(context.Background(), titleID, memberID, time.Time{})
	assert.True(t, apperror.HasCode(err, apperror.CodeMemberInactive))
	assert.Equal(t, 1, f.ledger.available[titleID])
}

func TestReturn_ReleasesCopyOnce(t *testing.T) {
	f := newFixture()
	titleID := f.ledger.addTitle(1)
	memberID := f.members.addMember(member.CategoryStudent, true)

	loan, err := f.service.Issue(context.Background(), titleID, memberID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, f.ledger.available[titleID])

	returned, err := f.service.Return(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, 1, f.ledger.available[titleID])

	// The repeat answers AlreadyReturned and availability stays put.
	_, err = f.service.Return(context.Background(), loan.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyReturned))
	assert.Equal(t, 1, f.ledger.available[titleID])
	assert.Equal(t, 1, f.ledger.releases)
}

func TestReturn_OverdueLoanStillReturns(t *testing.T) {
	f := newFixture()
	titleID := f.ledger.addTitle(1)
	memberID := f.members.addMember(member.CategoryStudent, true)

	loan, err := f.service.Issue(context.Background(), titleID, memberID, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)

	f.setNow(time.Now().UTC().Add(2 * time.Hour))
	promoted, err := f.service.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), promoted)

	returned, err := f.service.Return(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, LoanReturned, returned.Status)
}

func TestSweepOverdue_Idempotent(t *testing.T) {
	f := newFixture()
	memberID := f.members.addMember(member.CategoryFaculty, true)

	for i := 0; i < 2; i++ {
		titleID := f.ledger.addTitle(1)
		_, err := f.service.Issue(context.Background(), titleID, memberID, time.Now().UTC().Add(time.Minute))
		require.NoError(t, err)
	}

	f.setNow(time.Now().UTC().Add(time.Hour))
	promoted, err := f.service.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), promoted)

	// Already-overdue loans are not promoted again.
	promoted, err = f.service.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), promoted)
}

func TestList_SweepsBeforeReading(t *testing.T) {
	f := newFixture()
	memberID := f.members.addMember(member.CategoryStudent, true)
	titleID := f.ledger.addTitle(1)

	_, err := f.service.Issue(context.Background(), titleID, memberID, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)

	f.setNow(time.Now().UTC().Add(time.Hour))
	loans, err := f.service.List(context.Background(), ListFilter{Status: LoanOverdue})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, LoanOverdue, loans[0].Status)
}

func TestCirculation_CopyConservation(t *testing.T) {
	f := newFixture()
	titleID := f.ledger.addTitle(3)
	memberID := f.members.addMember(member.CategoryFaculty, true)

	var open []id.ID
	for step := 0; step < 20; step++ {
		if step%3 == 2 && len(open) > 0 {
			loanID := open[0]
			open = open[1:]
			_, err := f.service.Return(context.Background(), loanID)
			require.NoError(t, err)
		} else {
			loan, err := f.service.Issue(context.Background(), titleID, memberID, time.Time{})
			if err != nil {
				require.True(t, apperror.HasCode(err, apperror.CodeNoCopiesAvailable),
					fmt.Sprintf("unexpected error: %v", err))
				continue
			}
			open = append(open, loan.ID)
		}

		active, err := f.loans.CountActiveByTitle(context.Background(), titleID)
		require.NoError(t, err)
		avail := f.ledger.available[titleID]
		assert.GreaterOrEqual(t, avail, 0)
		assert.LessOrEqual(t, avail, 3)
		assert.Equal(t, 3, avail+active, "copies must be conserved")
	}
}
