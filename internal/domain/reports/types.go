// Package reports provides aggregate reads over the catalog and loans.
package reports

// Stats is the dashboard snapshot.
type Stats struct {
	Titles          int `db:"titles" json:"titles"`
	TotalCopies     int `db:"total_copies" json:"totalCopies"`
	AvailableCopies int `db:"available_copies" json:"availableCopies"`
	Members         int `db:"members" json:"members"`
	ActiveLoans     int `db:"active_loans" json:"activeLoans"`
	OverdueLoans    int `db:"overdue_loans" json:"overdueLoans"`
}
