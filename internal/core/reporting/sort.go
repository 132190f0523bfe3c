package reporting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
)

// DefaultSort orders reports newest first.
var DefaultSort = domain.SortSpec{Column: domain.ColumnDate, Direction: domain.SortDescending}

// ParseSortDirection accepts asc, desc and the empty string (none).
func ParseSortDirection(s string) (domain.SortDirection, error) {
	switch d := domain.SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case domain.SortNone, domain.SortAscending, domain.SortDescending:
		return d, nil
	case "none":
		return domain.SortNone, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidSortOrder, s)
}

// Sort returns a new slice ordered by the given column and direction. Equal keys keep their input
// order in both directions. Malformed records are dropped.
func Sort(records []domain.Record, order domain.SortSpec) ([]domain.Record, error) {
	if err := ValidateSort(order); err != nil {
		return nil, err
	}

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r.Validate() == nil {
			out = append(out, r)
		}
	}
	if order.Direction == domain.SortNone {
		return out, nil
	}

	sign := 1
	if order.Direction == domain.SortDescending {
		sign = -1
	}

	slices.SortStableFunc(out, func(a, b domain.Record) int {
		av, _ := a.Field(order.Column)
		bv, _ := b.Field(order.Column)
		return sign * CompareValues(av, bv)
	})
	return out, nil
}

// ValidateSort rejects unknown columns and directions. The column of a
// SortNone order is not checked.
func ValidateSort(order domain.SortSpec) error {
	switch order.Direction {
	case domain.SortNone:
		return nil
	case domain.SortAscending, domain.SortDescending:
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidSortOrder, order.Direction)
	}
	if !order.Column.IsKnown() {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownColumn, order.Column)
	}
	return nil
}

// CompareValues orders missing values first, then by kind, then by
// content. Strings compare case-insensitively.
func CompareValues(a, b domain.Value) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	switch a.Kind {
	case domain.ValueString:
		return strings.Compare(strings.ToLower(a.Str), strings.ToLower(b.Str))
	case domain.ValueTime:
		return a.Time.Compare(b.Time)
	}
	return 0
}

// NextSort cycles the sort state for a column header click: a new column
// starts ascending, the same column goes asc, desc, none, asc.
func NextSort(current domain.SortSpec, column domain.Column) domain.SortSpec {
	if current.Column != column || current.Direction == domain.SortNone {
		return domain.SortSpec{Column: column, Direction: domain.SortAscending}
	}
	if current.Direction == domain.SortAscending {
		return domain.SortSpec{Column: column, Direction: domain.SortDescending}
	}
	return domain.SortSpec{Column: column, Direction: domain.SortNone}
}
