package reporting

import (
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

// CalculateStats returns the summary cards shown above a report table.
// Completed counts both the legacy Concluído status and Resolvido.
func CalculateStats(records []domain.Record) []domain.ReportStat {
	var open, pending, completed int
	for _, r := range records {
		switch domain.TicketStatus(r.Status()) {
		case domain.StatusOpen:
			open++
		case domain.StatusPending:
			pending++
		case domain.StatusCompleted, domain.StatusResolved:
			completed++
		}
	}

	return []domain.ReportStat{
		{Type: domain.StatTotal, Label: "Total", Value: len(records)},
		{Type: domain.StatOpen, Label: "Abertos", Value: open},
		{Type: domain.StatPending, Label: "Pendentes", Value: pending},
		{Type: domain.StatCompleted, Label: "Concluídos", Value: completed},
	}
}

var ticketColumns = []domain.TableColumn{
	{Key: domain.ColumnID, Label: "ID", Sortable: true},
	{Key: domain.ColumnTitle, Label: "Título", Sortable: true},
	{Key: domain.ColumnStatus, Label: "Status", Sortable: true},
	{Key: domain.ColumnPriority, Label: "Prioridade", Sortable: true},
	{Key: domain.ColumnDepartment, Label: "Departamento", Sortable: true},
	{Key: domain.ColumnResponsible, Label: "Responsável", Sortable: true},
	{Key: domain.ColumnDate, Label: "Data", Sortable: true},
	{Key: domain.ColumnDueAt, Label: "Prazo", Sortable: true},
}

var assetColumns = []domain.TableColumn{
	{Key: domain.ColumnName, Label: "Nome", Sortable: true},
	{Key: domain.ColumnSerialNumber, Label: "Nº de série", Sortable: true},
	{Key: domain.ColumnPatrimony, Label: "Patrimônio", Sortable: true},
	{Key: domain.ColumnType, Label: "Tipo", Sortable: true},
	{Key: domain.ColumnStatus, Label: "Status", Sortable: true},
	{Key: domain.ColumnLocation, Label: "Localização", Sortable: true},
	{Key: domain.ColumnResponsible, Label: "Responsável", Sortable: true},
	{Key: domain.ColumnDate, Label: "Data", Sortable: true},
}

var defaultColumns = []domain.TableColumn{
	{Key: domain.ColumnID, Label: "ID", Sortable: true},
	{Key: domain.ColumnTitle, Label: "Nome", Sortable: true},
	{Key: domain.ColumnStatus, Label: "Status", Sortable: true},
	{Key: domain.ColumnDate, Label: "Data", Sortable: true},
}

// TableColumns returns the report table layout for a collection.
func TableColumns(kind domain.RecordKind) []domain.TableColumn {
	var cols []domain.TableColumn
	switch kind {
	case domain.KindTicket:
		cols = ticketColumns
	case domain.KindAsset:
		cols = assetColumns
	default:
		cols = defaultColumns
	}
	return append([]domain.TableColumn(nil), cols...)
}

// ColumnLabel returns the header label for c within kind, or c itself.
func ColumnLabel(kind domain.RecordKind, c domain.Column) string {
	for _, col := range TableColumns(kind) {
		if col.Key == c {
			return col.Label
		}
	}
	return string(c)
}
