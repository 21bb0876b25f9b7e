package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/jackc/pgx/v5/stdlib"

	"pustakalaya/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies embedded migrations. Run once at startup before any
// repository is used.
func Migrate(ctx context.Context, pool *Pool) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool.Pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info(ctx, "schema migrated", "version", version)
	return nil
}

// requiredColumns is the capability probe: every column the queries in this
// package assume. Checked once at startup instead of discovering drift
// through per-request "unknown column" failures.
var requiredColumns = map[string][]string{
	"cat_title":           {"id", "accession_no", "name", "author", "total_copies", "available_copies", "version", "deletion_mark"},
	"cat_member":          {"id", "name", "category", "active"},
	"cat_member_category": {"code", "max_books", "loan_period_days"},
	"doc_loan":            {"id", "title_id", "member_id", "issued_at", "due_date", "returned_at", "status"},
	"sys_activity":        {"id", "type", "entity_type", "entity_id", "occurred_at", "title"},
	"sys_loan_notice":     {"id", "loan_id", "type", "notice_date", "message"},
	"sys_activity_cutoff": {"viewer", "hidden_before"},
}

// VerifySchema confirms the live database carries every table and column
// this build was compiled against.
func VerifySchema(ctx context.Context, pool *Pool) error {
	const q = `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema()
	`
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("read schema metadata: %w", err)
	}
	defer rows.Close()

	present := make(map[string]map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return fmt.Errorf("scan schema metadata: %w", err)
		}
		if present[table] == nil {
			present[table] = make(map[string]bool)
		}
		present[table][column] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read schema metadata: %w", err)
	}

	for table, columns := range requiredColumns {
		for _, column := range columns {
			if !present[table][column] {
				return fmt.Errorf("schema check failed: missing %s.%s", table, column)
			}
		}
	}
	return nil
}
