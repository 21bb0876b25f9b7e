package importer

import (
	"context"
	"fmt"

	"pustakalaya/internal/domain/catalogs/title"
)

// Matcher resolves import rows to existing catalog entries using batched
// lookups: one query per chunk for accession numbers, one for the remaining
// (title, author) pairs, instead of a round-trip per row.
type Matcher struct {
	titles title.Repository
}

// NewMatcher creates a record matcher over the title repository.
func NewMatcher(titles title.Repository) *Matcher {
	return &Matcher{titles: titles}
}

// Resolve returns the existing entry for each row that matches one, keyed
// by row index. Accession number wins over the (title, author) pair.
func (m *Matcher) Resolve(ctx context.Context, rows []Row) (map[int]*title.Title, error) {
	matched := make(map[int]*title.Title, len(rows))

	var accNos []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if no := r.Get(FieldAccession); no != "" && !seen[no] {
			accNos = append(accNos, no)
			seen[no] = true
		}
	}

	byAcc := make(map[string]*title.Title, len(accNos))
	if len(accNos) > 0 {
		existing, err := m.titles.FindByAccessionNos(ctx, accNos)
		if err != nil {
			return nil, fmt.Errorf("lookup by accession number: %w", err)
		}
		for _, t := range existing {
			if t.AccessionNo != nil {
				byAcc[*t.AccessionNo] = t
			}
		}
	}

	var pairs []title.NameAuthor
	pairSeen := make(map[title.NameAuthor]bool)
	for _, r := range rows {
		if no := r.Get(FieldAccession); no != "" {
			if t, ok := byAcc[no]; ok {
				matched[r.Index] = t
				continue
			}
		}
		key := title.NameAuthor{Name: r.Get(FieldTitle), Author: r.Get(FieldAuthor)}
		if key.Name != "" && key.Author != "" && !pairSeen[key] {
			pairs = append(pairs, key)
			pairSeen[key] = true
		}
	}

	byPair := make(map[title.NameAuthor]*title.Title, len(pairs))
	if len(pairs) > 0 {
		existing, err := m.titles.FindByNameAuthor(ctx, pairs)
		if err != nil {
			return nil, fmt.Errorf("lookup by title and author: %w", err)
		}
		for _, t := range existing {
			byPair[title.NameAuthor{Name: t.Name, Author: t.Author}] = t
		}
	}

	for _, r := range rows {
		if _, ok := matched[r.Index]; ok {
			continue
		}
		key := title.NameAuthor{Name: r.Get(FieldTitle), Author: r.Get(FieldAuthor)}
		if t, ok := byPair[key]; ok {
			matched[r.Index] = t
		}
	}

	return matched, nil
}
