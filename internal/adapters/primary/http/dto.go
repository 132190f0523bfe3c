package http

import (
	"time"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

type AssetDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	SerialNumber    string     `json:"serialNumber,omitempty"`
	Patrimony       string     `json:"patrimony,omitempty"`
	Type            string     `json:"type,omitempty"`
	Category        string     `json:"category,omitempty"`
	Status          string     `json:"status"`
	Location        string     `json:"location,omitempty"`
	Responsible     string     `json:"responsible,omitempty"`
	Department      string     `json:"department,omitempty"`
	Description     string     `json:"description,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	LastMaintenance *time.Time `json:"lastMaintenance,omitempty"`
}

func toAssetDTO(a *domain.Asset) AssetDTO {
	return AssetDTO{
		ID:              a.ID,
		Name:            a.Name,
		SerialNumber:    a.SerialNumber,
		Patrimony:       a.Patrimony,
		Type:            a.Type,
		Category:        a.Category,
		Status:          string(a.Status),
		Location:        a.Location,
		Responsible:     a.Responsible,
		Department:      a.Department,
		Description:     a.Description,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
		LastMaintenance: a.LastMaintenance,
	}
}

type TicketDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssetID     string     `json:"assetId,omitempty"`
	AssetName   string     `json:"assetName,omitempty"`
	AuthorID    string     `json:"authorId"`
	AuthorName  string     `json:"authorName,omitempty"`
	Responsible string     `json:"responsible,omitempty"`
	Department  string     `json:"department,omitempty"`
	Category    string     `json:"category,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

func toTicketDTO(t *domain.Ticket) TicketDTO {
	return TicketDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssetID:     t.AssetID,
		AssetName:   t.AssetName,
		AuthorID:    t.AuthorID,
		AuthorName:  t.AuthorName,
		Responsible: t.Responsible,
		Department:  t.Department,
		Category:    t.Category,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		DueAt:       t.DueAt,
		ResolvedAt:  t.ResolvedAt,
	}
}

func toAssetDTOs(assets []*domain.Asset) []AssetDTO {
	out := make([]AssetDTO, 0, len(assets))
	for _, a := range assets {
		out = append(out, toAssetDTO(a))
	}
	return out
}

func toTicketDTOs(tickets []*domain.Ticket) []TicketDTO {
	out := make([]TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketDTO(t))
	}
	return out
}

// toRecordDTO renders a record as the DTO of its kind.
func toRecordDTO(r domain.Record) any {
	if a, ok := r.Asset(); ok {
		return toAssetDTO(a)
	}
	if t, ok := r.Ticket(); ok {
		return toTicketDTO(t)
	}
	return nil
}

type UserDTO struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type CriteriaDTO struct {
	Search     string     `json:"search,omitempty"`
	Category   string     `json:"category,omitempty"`
	Status     string     `json:"status,omitempty"`
	Department string     `json:"department,omitempty"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
}

// ReportResponse is the JSON body of a report table.
type ReportResponse struct {
	Kind         string               `json:"kind"`
	Records      []any                `json:"records"`
	Count        int                  `json:"count"`
	Stats        []domain.ReportStat  `json:"stats"`
	Sort         domain.SortSpec      `json:"sort"`
	Columns      []domain.TableColumn `json:"columns"`
	Criteria     CriteriaDTO          `json:"criteria"`
	Skipped      int                  `json:"skipped"`
	GeneratedAt  time.Time            `json:"generatedAt"`
	Announcement *domain.Announcement `json:"announcement,omitempty"`
}

func toReportResponse(report *domain.Report) ReportResponse {
	records := make([]any, 0, len(report.Records))
	for _, r := range report.Records {
		records = append(records, toRecordDTO(r))
	}
	c := report.Criteria
	return ReportResponse{
		Kind:    string(report.Kind),
		Records: records,
		Count:   len(records),
		Stats:   report.Stats,
		Sort:    report.Sort,
		Columns: report.Columns,
		Criteria: CriteriaDTO{
			Search:     c.SearchTerm,
			Category:   c.Category,
			Status:     c.Status,
			Department: c.Department,
			From:       c.DateRangeStart,
			To:         c.DateRangeEnd,
		},
		Skipped:      report.Skipped,
		GeneratedAt:  report.GeneratedAt,
		Announcement: report.Announcement,
	}
}

type DashboardSummaryResponse struct {
	TotalAssets   int64              `json:"totalAssets"`
	ActiveTickets int64              `json:"activeTickets"`
	ActiveUsers   int64              `json:"activeUsers"`
	RecentTickets []TicketDTO        `json:"recentTickets"`
	RecentAssets  []AssetDTO         `json:"recentAssets"`
	Chart         []domain.DayBucket `json:"chart"`
	GeneratedAt   time.Time          `json:"generatedAt"`
}

func toDashboardSummaryResponse(s *domain.DashboardSummary) DashboardSummaryResponse {
	chart := s.Chart
	if chart == nil {
		chart = []domain.DayBucket{}
	}
	return DashboardSummaryResponse{
		TotalAssets:   s.TotalAssets,
		ActiveTickets: s.ActiveTickets,
		ActiveUsers:   s.ActiveUsers,
		RecentTickets: toTicketDTOs(s.RecentTickets),
		RecentAssets:  toAssetDTOs(s.RecentAssets),
		Chart:         chart,
		GeneratedAt:   s.GeneratedAt,
	}
}
