// Package title_repo provides the PostgreSQL implementation of the Title
// catalog repository, including the availability ledger. Ledger mutations
// are single conditional UPDATEs so the check and the write are atomic.
package title_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"pustakalaya/internal/core/apperror"
	"pustakalaya/internal/core/id"
	"pustakalaya/internal/domain/catalogs/title"
	"pustakalaya/internal/infrastructure/storage/postgres"
)

const titleTable = "cat_title"

// Compile-time check.
var _ title.Repository = (*TitleRepo)(nil)

// TitleRepo implements title.Repository.
type TitleRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewTitleRepo creates a new title repository.
func NewTitleRepo(txManager *postgres.TxManager) *TitleRepo {
	return &TitleRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[title.Title](),
	}
}

func (r *TitleRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *TitleRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(titleTable)
}

// Create inserts a new catalog entry.
func (r *TitleRepo) Create(ctx context.Context, t *title.Title) error {
	q := r.builder().
		Insert(titleTable).
		SetMap(postgres.StructToMap(t))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("title", "accession_no", derefOr(t.AccessionNo, "")).WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", titleTable, err)
	}
	return nil
}

// CreateBatch inserts a chunk of titles with one multi-row statement.
// A single duplicate fails the whole statement; the import pipeline falls
// back to row-wise inserts in that case.
func (r *TitleRepo) CreateBatch(ctx context.Context, titles []*title.Title) error {
	if len(titles) == 0 {
		return nil
	}

	q := r.builder().
		Insert(titleTable).
		Columns(r.selectCols...)
	for _, t := range titles {
		data := postgres.StructToMap(t)
		row := make([]any, len(r.selectCols))
		for i, col := range r.selectCols {
			row[i] = data[col]
		}
		q = q.Values(row...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build batch insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("title", "accession_no", "").WithCause(err)
		}
		return fmt.Errorf("batch insert %s: %w", titleTable, err)
	}
	return nil
}

// Update modifies a catalog entry with optimistic locking. Copy counts are
// excluded: the ledger owns available_copies, SetTotalCopies owns capacity.
func (r *TitleRepo) Update(ctx context.Context, t *title.Title) error {
	data := postgres.StructToMap(t)
	delete(data, "id")
	delete(data, "version")
	delete(data, "total_copies")
	delete(data, "available_copies")
	delete(data, "created_at")

	q := r.builder().
		Update(titleTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": t.ID}).
		Where(squirrel.Eq{"version": t.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("title", "accession_no", derefOr(t.AccessionNo, "")).WithCause(err)
		}
		return fmt.Errorf("update %s: %w", titleTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(titleTable, t.ID)
	}
	return nil
}

// UpdateDescriptive refreshes the descriptive fields an import row carries.
// Nil pointers are skipped, so a sparse row never nulls out existing data.
func (r *TitleRepo) UpdateDescriptive(ctx context.Context, u title.Upsert) error {
	set := map[string]any{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Author != nil {
		set["author"] = *u.Author
	}
	if u.AccessionNo != nil {
		set["accession_no"] = *u.AccessionNo
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Publisher != nil {
		set["publisher"] = *u.Publisher
	}
	if u.Year != nil {
		set["year"] = *u.Year
	}
	if u.Shelf != nil {
		set["shelf"] = *u.Shelf
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if len(set) == 0 {
		return nil
	}

	q := r.builder().
		Update(titleTable).
		SetMap(set).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": u.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build descriptive update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", titleTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("title", u.ID.String())
	}
	return nil
}

// GetByID retrieves a title by ID.
func (r *TitleRepo) GetByID(ctx context.Context, titleID id.ID) (*title.Title, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": titleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t title.Title
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("title", titleID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return &t, nil
}

// MarkDeleted soft-deletes the entry.
func (r *TitleRepo) MarkDeleted(ctx context.Context, titleID id.ID) error {
	q := r.builder().
		Update(titleTable).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": titleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build deletion mark: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("title", titleID.String())
	}
	return nil
}

// FindByAccessionNos retrieves all titles whose accession number is in nos.
func (r *TitleRepo) FindByAccessionNos(ctx context.Context, nos []string) ([]*title.Title, error) {
	if len(nos) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"accession_no": nos}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*title.Title
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find by accession nos: %w", err)
	}
	return items, nil
}

// FindByNameAuthor retrieves all titles matching any of the given
// (name, author) pairs.
func (r *TitleRepo) FindByNameAuthor(ctx context.Context, pairs []title.NameAuthor) ([]*title.Title, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	or := make(squirrel.Or, 0, len(pairs))
	for _, p := range pairs {
		or = append(or, squirrel.And{
			squirrel.Eq{"name": p.Name},
			squirrel.Eq{"author": p.Author},
		})
	}

	q := r.baseSelect().
		Where(or).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*title.Title
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find by name/author: %w", err)
	}
	return items, nil
}

// List retrieves catalog entries with filtering and pagination.
func (r *TitleRepo) List(ctx context.Context, f title.ListFilter) ([]*title.Title, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC, author ASC")

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"author": pattern},
			squirrel.ILike{"accession_no": pattern},
		})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
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

	var items []*title.Title
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return items, nil
}

// ReserveCopy decrements available_copies when one is free. The guard is
// part of the statement, so two concurrent issues cannot both take the
// last copy.
func (r *TitleRepo) ReserveCopy(ctx context.Context, titleID id.ID) (bool, error) {
	const sql = `
		UPDATE cat_title
		SET available_copies = available_copies - 1,
		    updated_at = now()
		WHERE id = $1
		  AND deletion_mark = false
		  AND available_copies > 0
	`
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, titleID)
	if err != nil {
		return false, fmt.Errorf("reserve copy: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ReleaseCopy increments available_copies, capped at total_copies so a
// stray release can never overflow the ledger.
func (r *TitleRepo) ReleaseCopy(ctx context.Context, titleID id.ID) error {
	const sql = `
		UPDATE cat_title
		SET available_copies = LEAST(available_copies + 1, total_copies),
		    updated_at = now()
		WHERE id = $1
	`
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, titleID)
	if err != nil {
		return fmt.Errorf("release copy: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("title", titleID.String())
	}
	return nil
}

// SetTotalCopies applies a capacity edit in one statement, preserving the
// issued-copy count: available = max(0, new_total - issued).
func (r *TitleRepo) SetTotalCopies(ctx context.Context, titleID id.ID, newTotal int) error {
	const sql = `
		UPDATE cat_title
		SET available_copies = GREATEST(0, $2 - (total_copies - available_copies)),
		    total_copies = $2,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
	`
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, titleID, newTotal)
	if err != nil {
		return fmt.Errorf("set total copies: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("title", titleID.String())
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func derefOr(s *string, def string) string {
	if s != nil {
		return *s
	}
	return def
}
