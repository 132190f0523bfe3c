package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
)

// statusAliases maps the status values used by the report UI to the
// stored ticket statuses.
var statusAliases = map[string]string{
	"active":    string(domain.StatusOpen),
	"pending":   string(domain.StatusPending),
	"completed": string(domain.StatusCompleted),
	"inactive":  string(domain.StatusClosed),
}

// ResolveStatusAlias translates a UI status value. Unknown values are
// returned unchanged.
func ResolveStatusAlias(status string) string {
	if v, ok := statusAliases[strings.ToLower(strings.TrimSpace(status))]; ok {
		return v
	}
	return status
}

// CriteriaInput is the raw, user-supplied form of FilterCriteria.
type CriteriaInput struct {
	Search      string
	Category    string
	Status      string
	Department  string
	Location    string
	Responsible string
	Range       string
	From        *time.Time
	To          *time.Time
}

// BuildCriteria resolves aliases and presets against now. A preset other
// than custom overrides From/To.
func BuildCriteria(in CriteriaInput, now time.Time) (domain.FilterCriteria, error) {
	c := domain.FilterCriteria{
		SearchTerm:  strings.TrimSpace(in.Search),
		Category:    strings.TrimSpace(in.Category),
		Status:      ResolveStatusAlias(in.Status),
		Department:  strings.TrimSpace(in.Department),
		Location:    strings.TrimSpace(in.Location),
		Responsible: strings.TrimSpace(in.Responsible),
	}

	preset := domain.DateRangePreset(strings.ToLower(strings.TrimSpace(in.Range)))
	switch preset {
	case domain.PresetNone, domain.PresetCustom, domain.DateRangePreset(domain.FilterAll):
		c.DateRangeStart = in.From
		c.DateRangeEnd = in.To
	default:
		start, end, err := ResolvePreset(preset, now)
		if err != nil {
			return domain.FilterCriteria{}, err
		}
		c.DateRangeStart = &start
		c.DateRangeEnd = &end
	}

	if err := ValidateCriteria(c); err != nil {
		return domain.FilterCriteria{}, err
	}
	return c, nil
}

// ValidateCriteria rejects inverted date ranges.
func ValidateCriteria(c domain.FilterCriteria) error {
	if c.DateRangeStart != nil && c.DateRangeEnd != nil && c.DateRangeStart.After(*c.DateRangeEnd) {
		return fmt.Errorf("%w: start %s is after end %s", apperrors.ErrInvalidDateRange,
			c.DateRangeStart.Format(time.RFC3339), c.DateRangeEnd.Format(time.RFC3339))
	}
	return nil
}

// ResolvePreset returns the inclusive bounds of a named range in now's
// location. Every preset ends today at 23:59:59.999.
func ResolvePreset(preset domain.DateRangePreset, now time.Time) (time.Time, time.Time, error) {
	today := startOfDay(now)
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(999*time.Millisecond), now.Location())

	var start time.Time
	switch preset {
	case domain.PresetToday:
		start = today
	case domain.PresetWeek:
		// Weeks start on Monday.
		offset := (int(now.Weekday()) + 6) % 7
		start = today.AddDate(0, 0, -offset)
	case domain.PresetMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case domain.PresetYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown preset %q", apperrors.ErrInvalidDateRange, preset)
	}
	return start, end, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
