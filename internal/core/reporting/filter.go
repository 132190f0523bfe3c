// Package reporting holds the pure report engine: criteria matching,
// table sorting and the seven-day dashboard aggregation. Nothing here
// performs I/O or reads the wall clock.
package reporting

import (
	"strings"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

// DefaultSearchFields are the columns scanned by a free-text search.
var DefaultSearchFields = map[domain.RecordKind][]domain.Column{
	domain.KindAsset: {
		domain.ColumnName,
		domain.ColumnSerialNumber,
		domain.ColumnPatrimony,
		domain.ColumnType,
		domain.ColumnCategory,
	},
	domain.KindTicket: {
		domain.ColumnTitle,
		domain.ColumnID,
		domain.ColumnCategory,
		domain.ColumnAssetName,
	},
}

// Evaluator decides whether records satisfy FilterCriteria.
type Evaluator struct {
	searchFields map[domain.RecordKind][]domain.Column
}

// NewEvaluator returns an Evaluator searching the given fields. A nil map
// selects DefaultSearchFields.
func NewEvaluator(searchFields map[domain.RecordKind][]domain.Column) *Evaluator {
	if searchFields == nil {
		searchFields = DefaultSearchFields
	}
	return &Evaluator{searchFields: searchFields}
}

var defaultEvaluator = NewEvaluator(nil)

// Matches reports whether record satisfies every predicate in c using the
// default search fields.
func Matches(record domain.Record, c domain.FilterCriteria) bool {
	return defaultEvaluator.Matches(record, c)
}

// Filter keeps the records matching c, in input order, and counts the
// malformed records it dropped.
func Filter(records []domain.Record, c domain.FilterCriteria) ([]domain.Record, int) {
	return defaultEvaluator.Filter(records, c)
}

// Matches reports whether record satisfies every predicate in c.
// Malformed records never match.
func (e *Evaluator) Matches(record domain.Record, c domain.FilterCriteria) bool {
	if record.Validate() != nil {
		return false
	}
	return e.matchesSearch(record, c.SearchTerm) &&
		matchesValue(record.Category(), c.Category) &&
		matchesValue(record.Status(), c.Status) &&
		matchesValue(record.Department(), c.Department) &&
		matchesLocation(record, c.Location) &&
		matchesResponsible(record.Responsible(), c.Responsible) &&
		matchesDateRange(record, c)
}

// Filter keeps the records matching c, in input order. The second result
// counts malformed records, which are dropped without being evaluated.
func (e *Evaluator) Filter(records []domain.Record, c domain.FilterCriteria) ([]domain.Record, int) {
	out := make([]domain.Record, 0, len(records))
	skipped := 0
	for _, r := range records {
		if r.Validate() != nil {
			skipped++
			continue
		}
		if e.Matches(r, c) {
			out = append(out, r)
		}
	}
	return out, skipped
}

func (e *Evaluator) matchesSearch(record domain.Record, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)

	for _, col := range e.searchFields[record.Kind()] {
		v, ok := record.Field(col)
		if !ok || v.Kind != domain.ValueString {
			continue
		}
		if strings.Contains(strings.ToLower(v.Str), needle) {
			return true
		}
	}
	return false
}

// matchesValue is a case-insensitive equality that treats "" and "all"
// as wildcards.
func matchesValue(actual, want string) bool {
	want = strings.TrimSpace(want)
	if IsWildcard(want) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(actual), want)
}

// matchesLocation only matches kinds that carry a location.
func matchesLocation(record domain.Record, want string) bool {
	if IsWildcard(strings.TrimSpace(want)) {
		return true
	}
	v, ok := record.Field(domain.ColumnLocation)
	return ok && matchesValue(v.Str, want)
}

// matchesResponsible also accepts the hyphenated form used in select
// options, so "maria-souza" matches "Maria Souza".
func matchesResponsible(actual, want string) bool {
	if matchesValue(actual, want) {
		return true
	}
	return strings.EqualFold(slug(actual), slug(want))
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// IsWildcard reports whether a criteria value imposes no constraint.
func IsWildcard(v string) bool {
	return v == "" || strings.EqualFold(v, domain.FilterAll)
}

func matchesDateRange(record domain.Record, c domain.FilterCriteria) bool {
	created := record.CreatedAt()
	if c.DateRangeStart != nil && created.Before(*c.DateRangeStart) {
		return false
	}
	if c.DateRangeEnd != nil && created.After(*c.DateRangeEnd) {
		return false
	}
	return true
}
