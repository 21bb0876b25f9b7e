// Package member_repo provides the PostgreSQL implementation of the Member
// catalog repository.
package member_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/id"
	"pustakalaya/internal/domain/catalogs/member"
	"pustakalaya/internal/infrastructure/storage/postgres"
)

const (
	memberTable   = "cat_member"
	categoryTable = "cat_member_category"
)

var _ member.Repository = (*MemberRepo)(nil)

// MemberRepo implements member.Repository.
type MemberRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewMemberRepo creates a new member repository.
func NewMemberRepo(txManager *postgres.TxManager) *MemberRepo {
	return &MemberRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[member.Member](),
	}
}

func (r *MemberRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *MemberRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(memberTable)
}

// Create registers a new member.
func (r *MemberRepo) Create(ctx context.Context, m *member.Member) error {
	q := r.builder().
		Insert(memberTable).
		SetMap(postgres.StructToMap(m))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", memberTable, err)
	}
	return nil
}

// Update modifies a member with optimistic locking.
func (r *MemberRepo) Update(ctx context.Context, m *member.Member) error {
	data := postgres.StructToMap(m)
	delete(data, "id")
	delete(data, "version")
	delete(data, "created_at")

	q := r.builder().
		Update(memberTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": m.ID}).
		Where(squirrel.Eq{"version": m.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", memberTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(memberTable, m.ID)
	}
	return nil
}

// GetByID retrieves a member by ID.
func (r *MemberRepo) GetByID(ctx context.Context, memberID id.ID) (*member.Member, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": memberID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m member.Member
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("member", memberID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return &m, nil
}

// List retrieves members with filtering and pagination.
func (r *MemberRepo) List(ctx context.Context, f member.ListFilter) ([]*member.Member, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.ActiveOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*member.Member
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return items, nil
}

// GetCategory returns the borrowing rules for a category code.
func (r *MemberRepo) GetCategory(ctx context.Context, code member.CategoryCode) (*member.Category, error) {
	q := r.builder().
		Select("code", "name", "max_books", "loan_period_days").
		From(categoryTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c member.Category
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("member category", string(code))
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}
