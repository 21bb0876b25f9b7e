package title

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTitle_ClampsCopies(t *testing.T) {
	got := NewTitle("Godan", "Premchand", 0)
	assert.Equal(t, 1, got.TotalCopies)
	assert.Equal(t, 1, got.AvailableCopies)

	got = NewTitle("Godan", "Premchand", 3)
	assert.Equal(t, 3, got.TotalCopies)
	assert.Equal(t, 3, got.AvailableCopies)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		available int
		want      Status
	}{
		{name: "all copies in", total: 3, available: 3, want: StatusAvailable},
		{name: "some copies out", total: 3, available: 1, want: StatusPartiallyIssued},
		{name: "all copies out", total: 3, available: 0, want: StatusFullyIssued},
		{name: "zero total is available", total: 0, available: 0, want: StatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := &Title{TotalCopies: tt.total, AvailableCopies: tt.available}
			assert.Equal(t, tt.want, title.Status())
		})
	}
}

func TestIssuedCopies(t *testing.T) {
	title := &Title{TotalCopies: 5, AvailableCopies: 2}
	assert.Equal(t, 3, title.IssuedCopies())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Title)
		wantErr bool
	}{
		{name: "valid", mutate: func(t *Title) {}},
		{name: "missing name", mutate: func(t *Title) { t.Name = "" }, wantErr: true},
		{name: "missing author", mutate: func(t *Title) { t.Author = "" }, wantErr: true},
		{name: "negative total", mutate: func(t *Title) { t.TotalCopies = -1 }, wantErr: true},
		{name: "available above total", mutate: func(t *Title) { t.AvailableCopies = 9 }, wantErr: true},
		{name: "negative available", mutate: func(t *Title) { t.AvailableCopies = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := NewTitle("Godan", "Premchand", 2)
			tt.mutate(title)
			err := title.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecomputeAvailable(t *testing.T) {
	// 2 of 5 issued; growing capacity frees the difference.
	assert.Equal(t, 5, RecomputeAvailable(5, 3, 7))

	// Shrinking keeps the issued count and floors availability at zero.
	assert.Equal(t, 1, RecomputeAvailable(5, 3, 3))
	assert.Equal(t, 0, RecomputeAvailable(5, 3, 1))

	// No change is a no-op.
	assert.Equal(t, 3, RecomputeAvailable(5, 3, 5))
}
