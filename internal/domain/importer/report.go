package importer

// MaxReportedErrors bounds the per-row error list so a pathological file
// cannot blow up the response.
const MaxReportedErrors = 50

// RowError records why a single row was skipped or failed.
type RowError struct {
	// Row is the 1-based index in the original file, header excluded.
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Report is the structured result of one import call. It is returned even
// on partial failure: counts are always complete, the error list is capped.
type Report struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`

	Errors          []RowError `json:"errors,omitempty"`
	ErrorsTruncated bool       `json:"errorsTruncated,omitempty"`
}

// addError appends a row error, respecting the cap.
func (r *Report) addError(row int, reason string) {
	if len(r.Errors) >= MaxReportedErrors {
		r.ErrorsTruncated = true
		return
	}
	r.Errors = append(r.Errors, RowError{Row: row, Reason: reason})
}
