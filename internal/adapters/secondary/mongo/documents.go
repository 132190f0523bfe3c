package mongo

import (
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

type assetDoc struct {
	ID              docID    `bson:"_id,omitempty"`
	Name            string   `bson:"name"`
	SerialNumber    string   `bson:"serialNumber"`
	Patrimony       string   `bson:"patrimony"`
	Type            string   `bson:"type"`
	Category        string   `bson:"category"`
	Status          string   `bson:"status"`
	Location        string   `bson:"location"`
	Responsible     string   `bson:"responsible"`
	Department      string   `bson:"department,omitempty"`
	Description     string   `bson:"description"`
	CreatedAt       instant  `bson:"createdAt"`
	UpdatedAt       *instant `bson:"updatedAt,omitempty"`
	LastMaintenance *instant `bson:"lastMaintenance,omitempty"`
}

func newAssetDoc(a *domain.Asset) assetDoc {
	return assetDoc{
		ID:              docID(a.ID),
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
		CreatedAt:       instant{Time: a.CreatedAt},
		UpdatedAt:       newInstant(a.UpdatedAt),
		LastMaintenance: newInstant(a.LastMaintenance),
	}
}

func (d assetDoc) toDomain() *domain.Asset {
	return &domain.Asset{
		ID:              string(d.ID),
		Name:            d.Name,
		SerialNumber:    d.SerialNumber,
		Patrimony:       d.Patrimony,
		Type:            d.Type,
		Category:        d.Category,
		Status:          domain.AssetStatus(d.Status),
		Location:        d.Location,
		Responsible:     d.Responsible,
		Department:      d.Department,
		Description:     d.Description,
		CreatedAt:       d.CreatedAt.Time,
		UpdatedAt:       d.UpdatedAt.ptr(),
		LastMaintenance: d.LastMaintenance.ptr(),
	}
}

// ticketDoc keeps the chamados field names, including dueDate.
type ticketDoc struct {
	ID          docID    `bson:"_id,omitempty"`
	Title       string   `bson:"title"`
	Description string   `bson:"description"`
	AssetID     string   `bson:"assetId"`
	AssetName   string   `bson:"assetName"`
	AuthorID    string   `bson:"authorId"`
	AuthorName  string   `bson:"authorName"`
	Responsible string   `bson:"responsible,omitempty"`
	Department  string   `bson:"department,omitempty"`
	Category    string   `bson:"category,omitempty"`
	Priority    string   `bson:"priority"`
	Status      string   `bson:"status"`
	CreatedAt   instant  `bson:"createdAt"`
	DueAt       *instant `bson:"dueDate,omitempty"`
	ResolvedAt  *instant `bson:"resolvedAt,omitempty"`
}

func newTicketDoc(t *domain.Ticket) ticketDoc {
	return ticketDoc{
		ID:          docID(t.ID),
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
		CreatedAt:   instant{Time: t.CreatedAt},
		DueAt:       newInstant(t.DueAt),
		ResolvedAt:  newInstant(t.ResolvedAt),
	}
}

func (d ticketDoc) toDomain() *domain.Ticket {
	return &domain.Ticket{
		ID:          string(d.ID),
		Title:       d.Title,
		Description: d.Description,
		AssetID:     d.AssetID,
		AssetName:   d.AssetName,
		AuthorID:    d.AuthorID,
		AuthorName:  d.AuthorName,
		Responsible: d.Responsible,
		Department:  d.Department,
		Category:    d.Category,
		Priority:    domain.TicketPriority(d.Priority),
		Status:      domain.TicketStatus(d.Status),
		CreatedAt:   d.CreatedAt.Time,
		DueAt:       d.DueAt.ptr(),
		ResolvedAt:  d.ResolvedAt.ptr(),
	}
}
