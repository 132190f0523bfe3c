package reporting

import (
	"fmt"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

// SortAnnouncement describes a sort change for screen readers.
func SortAnnouncement(kind domain.RecordKind, spec domain.SortSpec) domain.Announcement {
	label := ColumnLabel(kind, spec.Column)

	var msg string
	switch spec.Direction {
	case domain.SortAscending:
		msg = fmt.Sprintf("Ordenado por %s, crescente", label)
	case domain.SortDescending:
		msg = fmt.Sprintf("Ordenado por %s, decrescente", label)
	default:
		msg = fmt.Sprintf("Ordenação por %s removida", label)
	}
	return domain.Announcement{Message: msg, Politeness: "polite"}
}

// ResultAnnouncement summarises a filtered report.
func ResultAnnouncement(count int) domain.Announcement {
	switch count {
	case 0:
		return domain.Announcement{Message: "Nenhum registro encontrado", Politeness: "polite"}
	case 1:
		return domain.Announcement{Message: "1 registro encontrado", Politeness: "polite"}
	}
	return domain.Announcement{Message: fmt.Sprintf("%d registros encontrados", count), Politeness: "polite"}
}
