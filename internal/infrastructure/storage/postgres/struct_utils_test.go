package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pustakalaya/internal/core/entity"
	"pustakalaya/internal/core/id"
)

type mockCatalog struct {
	entity.BaseEntity
	Code     string  `db:"code" json:"code"`
	Name     string  `db:"name" json:"name"`
	Ignored  string  `db:"-"`
	Untagged string
	Shelf    *string `db:"shelf" json:"shelf,omitempty"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	expected := []string{
		"id", "deletion_mark", "version", "created_at", "updated_at",
		"code", "name", "shelf",
	}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expected))
}

func TestStructToMap(t *testing.T) {
	shelf := "A-12"
	m := mockCatalog{
		BaseEntity: entity.BaseEntity{
			ID:           id.New(),
			DeletionMark: true,
			Version:      5,
		},
		Code:  "TEST",
		Name:  "Test Name",
		Shelf: &shelf,
	}

	got := StructToMap(m)

	assert.Equal(t, m.ID, got["id"])
	assert.Equal(t, true, got["deletion_mark"])
	assert.Equal(t, 5, got["version"])
	assert.Equal(t, "TEST", got["code"])
	assert.Equal(t, "Test Name", got["name"])
	assert.Equal(t, &shelf, got["shelf"])
	assert.NotContains(t, got, "Untagged")
}

func TestStructToMap_PointerAndNonStruct(t *testing.T) {
	m := &mockCatalog{Code: "PTR"}
	got := StructToMap(m)
	assert.Equal(t, "PTR", got["code"])

	assert.Nil(t, StructToMap(42))
}
