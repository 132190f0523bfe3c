package reporting

import (
	"slices"
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

// WindowDays is the length of the dashboard chart window, anchor included.
const WindowDays = 7

// weekdayLabels are the pt-BR short day names, indexed by time.Weekday.
var weekdayLabels = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// WeekdayLabel returns the short label of a weekday.
func WeekdayLabel(d time.Weekday) string {
	return weekdayLabels[d]
}

// Aggregate buckets the records created in the seven calendar days ending
// on anchor's day, in anchor's location. The result always has seven
// buckets ordered Sunday to Saturday; days without records stay zeroed.
// Malformed records are ignored.
func Aggregate(records []domain.Record, anchor time.Time) []domain.DayBucket {
	loc := anchor.Location()
	anchorDay := startOfDay(anchor)
	windowStart := anchorDay.AddDate(0, 0, -(WindowDays - 1))

	buckets := make([]domain.DayBucket, WindowDays)
	for i := range buckets {
		day := windowStart.AddDate(0, 0, i)
		buckets[i] = domain.DayBucket{
			Label:      WeekdayLabel(day.Weekday()),
			Weekday:    day.Weekday(),
			DateKey:    day.Format(domain.DateKeyLayout),
			ColorClass: domain.ColorDefault,
		}
	}

	for _, r := range records {
		if r.Validate() != nil {
			continue
		}

		createdDay := startOfDay(r.CreatedAt().In(loc))
		idx := daysBetween(windowStart, createdDay)
		if idx < 0 || idx >= WindowDays {
			continue
		}

		b := &buckets[idx]
		b.TotalCount++
		if r.IsResolved() {
			b.ResolvedCount++
			continue
		}

		switch Classify(r, anchor) {
		case domain.VeryOverdue:
			b.VeryOverdueCount++
		case domain.Overdue:
			b.OverdueCount++
		}
	}

	for i := range buckets {
		b := &buckets[i]
		if b.TotalCount > 0 {
			b.ResolutionRatePercent = float64(b.ResolvedCount) / float64(b.TotalCount) * 100
		}
		b.ColorClass = colorFor(*b)
	}

	slices.SortFunc(buckets, func(a, b domain.DayBucket) int {
		return int(a.Weekday) - int(b.Weekday)
	})
	return buckets
}

// Classify compares an unresolved record's due date with the anchor's
// calendar day. Due more than one day before the anchor is VeryOverdue,
// exactly one day before is Overdue. Resolved records and records without
// a due date are never late.
func Classify(r domain.Record, anchor time.Time) domain.Lateness {
	if r.IsResolved() {
		return domain.NotLate
	}
	due := r.DueAt()
	if due == nil || due.IsZero() {
		return domain.NotLate
	}

	anchorDay := startOfDay(anchor)
	dueDay := startOfDay(due.In(anchor.Location()))
	if !dueDay.Before(anchorDay) {
		return domain.NotLate
	}
	if daysBetween(dueDay, anchorDay) > 1 {
		return domain.VeryOverdue
	}
	return domain.Overdue
}

func colorFor(b domain.DayBucket) domain.ColorClass {
	switch {
	case b.VeryOverdueCount > 0:
		return domain.ColorRed
	case b.OverdueCount > 0:
		return domain.ColorOrange
	case b.TotalCount > 0 && b.TotalCount == b.ResolvedCount:
		return domain.ColorBlue
	}
	return domain.ColorDefault
}

// daysBetween counts calendar days from a to b. Both are taken at their
// wall-clock date so DST shifts do not change the count.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
