package domain

import "time"

// FilterAll is the criteria sentinel that matches every value.
const FilterAll = "all"

// DateKeyLayout formats the calendar day of a DayBucket.
const DateKeyLayout = "2006-01-02"

// FilterCriteria narrows a record collection. Empty strings and FilterAll
// impose no constraint; nil bounds are open.
type FilterCriteria struct {
	SearchTerm     string
	Category       string
	Status         string
	Department     string
	Location       string
	Responsible    string
	DateRangeStart *time.Time
	DateRangeEnd   *time.Time
}

// DateRangePreset is a named relative date range.
type DateRangePreset string

const (
	PresetNone   DateRangePreset = ""
	PresetToday  DateRangePreset = "today"
	PresetWeek   DateRangePreset = "week"
	PresetMonth  DateRangePreset = "month"
	PresetYear   DateRangePreset = "year"
	PresetCustom DateRangePreset = "custom"
)

type SortDirection string

const (
	SortNone       SortDirection = ""
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SortSpec is the current table ordering. Direction SortNone keeps the
// order the records arrived in.
type SortSpec struct {
	Column    Column        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// ColorClass is the status colour of a chart bar.
type ColorClass string

const (
	ColorDefault ColorClass = "default"
	ColorBlue    ColorClass = "blue"
	ColorOrange  ColorClass = "orange"
	ColorRed     ColorClass = "red"
)

// DayBucket aggregates the tickets created on one calendar day.
type DayBucket struct {
	Label                 string       `json:"label"`
	Weekday               time.Weekday `json:"weekday"`
	DateKey               string       `json:"dateKey"`
	TotalCount            int          `json:"totalCount"`
	ResolvedCount         int          `json:"resolvedCount"`
	OverdueCount          int          `json:"overdueCount"`
	VeryOverdueCount      int          `json:"veryOverdueCount"`
	ResolutionRatePercent float64      `json:"resolutionRatePercent"`
	ColorClass            ColorClass   `json:"colorClass"`
}

// Lateness classifies an unresolved ticket against a reference day.
type Lateness int

const (
	NotLate Lateness = iota
	Overdue
	VeryOverdue
)

func (l Lateness) String() string {
	switch l {
	case Overdue:
		return "overdue"
	case VeryOverdue:
		return "veryOverdue"
	}
	return "none"
}

// StatType identifies a report summary card.
type StatType string

const (
	StatTotal     StatType = "total"
	StatOpen      StatType = "open"
	StatPending   StatType = "pending"
	StatCompleted StatType = "completed"
)

type ReportStat struct {
	Type  StatType `json:"type"`
	Label string   `json:"label"`
	Value int      `json:"value"`
}

// TableColumn describes one column of a report table.
type TableColumn struct {
	Key      Column `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
}

// Report is a filtered, sorted slice of one collection plus its summary.
type Report struct {
	Kind        RecordKind
	Records     []Record
	Stats       []ReportStat
	Sort        SortSpec
	Columns     []TableColumn
	Criteria    FilterCriteria
	Skipped     int
	GeneratedAt time.Time

	// Announcement is set when the request changed the sort order.
	Announcement *Announcement
}

// DashboardSummary is the landing page payload.
type DashboardSummary struct {
	TotalAssets   int64
	ActiveTickets int64
	ActiveUsers   int64
	RecentTickets []*Ticket
	RecentAssets  []*Asset
	Chart         []DayBucket
	GeneratedAt   time.Time
}
