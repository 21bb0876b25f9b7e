// Package report_repo computes dashboard aggregates in PostgreSQL.
package report_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"pustakalaya/internal/domain/reports"
	"pustakalaya/internal/infrastructure/storage/postgres"
)

var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// GetStats returns the dashboard counts in a single round trip.
func (r *ReportRepo) GetStats(ctx context.Context) (reports.Stats, error) {
	const sql = `
		SELECT
			(SELECT COUNT(*) FROM cat_title WHERE deletion_mark = false) AS titles,
			(SELECT COALESCE(SUM(total_copies), 0) FROM cat_title WHERE deletion_mark = false) AS total_copies,
			(SELECT COALESCE(SUM(available_copies), 0) FROM cat_title WHERE deletion_mark = false) AS available_copies,
			(SELECT COUNT(*) FROM cat_member WHERE deletion_mark = false AND active = true) AS members,
			(SELECT COUNT(*) FROM doc_loan WHERE status IN ('issued', 'overdue')) AS active_loans,
			(SELECT COUNT(*) FROM doc_loan WHERE status = 'overdue') AS overdue_loans
	`

	var stats reports.Stats
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &stats, sql); err != nil {
		return reports.Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}
