package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
)

// RecordKind names the collection a record belongs to.
type RecordKind string

const (
	KindAsset  RecordKind = "assets"
	KindTicket RecordKind = "tickets"
)

// ParseRecordKind accepts the API names and their Portuguese collection aliases.
func ParseRecordKind(s string) (RecordKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assets", "ativos":
		return KindAsset, nil
	case "tickets", "chamados":
		return KindTicket, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownCollection, s)
}

// Column is a sortable, extractable record field.
type Column string

const (
	ColumnID              Column = "id"
	ColumnTitle           Column = "title"
	ColumnName            Column = "name"
	ColumnStatus          Column = "status"
	ColumnDate            Column = "date"
	ColumnCreatedAt       Column = "createdAt"
	ColumnDepartment      Column = "department"
	ColumnCategory        Column = "category"
	ColumnResponsible     Column = "responsible"
	ColumnPriority        Column = "priority"
	ColumnDueAt           Column = "dueAt"
	ColumnResolvedAt      Column = "resolvedAt"
	ColumnAssetName       Column = "assetName"
	ColumnAuthorName      Column = "authorName"
	ColumnSerialNumber    Column = "serialNumber"
	ColumnPatrimony       Column = "patrimony"
	ColumnType            Column = "type"
	ColumnLocation        Column = "location"
	ColumnUpdatedAt       Column = "updatedAt"
	ColumnLastMaintenance Column = "lastMaintenance"
)

var knownColumns = map[Column]struct{}{
	ColumnID: {}, ColumnTitle: {}, ColumnName: {}, ColumnStatus: {}, ColumnDate: {},
	ColumnCreatedAt: {}, ColumnDepartment: {}, ColumnCategory: {}, ColumnResponsible: {},
	ColumnPriority: {}, ColumnDueAt: {}, ColumnResolvedAt: {}, ColumnAssetName: {},
	ColumnAuthorName: {}, ColumnSerialNumber: {}, ColumnPatrimony: {}, ColumnType: {},
	ColumnLocation: {}, ColumnUpdatedAt: {}, ColumnLastMaintenance: {},
}

// IsKnown reports whether c names a field of any record kind.
func (c Column) IsKnown() bool {
	_, ok := knownColumns[c]
	return ok
}

// ValueKind tags the contents of a Value.
type ValueKind int

const (
	ValueMissing ValueKind = iota
	ValueString
	ValueTime
)

// Value is a field extracted from a record. Timestamps are always carried
// as time.Time regardless of how the store encoded them.
type Value struct {
	Kind ValueKind
	Str  string
	Time time.Time
}

func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

func TimeValue(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{Kind: ValueTime, Time: t}
}

func timePtrValue(t *time.Time) Value {
	if t == nil {
		return Value{}
	}
	return TimeValue(*t)
}

// String renders the value for text output (CSV export, search).
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueTime:
		return v.Time.Format(time.RFC3339)
	}
	return ""
}

// Record is either an asset or a ticket. Exactly one payload is set.
type Record struct {
	kind   RecordKind
	asset  *Asset
	ticket *Ticket
}

func AssetRecord(a *Asset) Record {
	return Record{kind: KindAsset, asset: a}
}

func TicketRecord(t *Ticket) Record {
	return Record{kind: KindTicket, ticket: t}
}

func (r Record) Kind() RecordKind { return r.kind }

func (r Record) Asset() (*Asset, bool) { return r.asset, r.asset != nil }

func (r Record) Ticket() (*Ticket, bool) { return r.ticket, r.ticket != nil }

// Validate returns ErrMalformedRecord when the record lacks an id, a
// payload or a creation timestamp.
func (r Record) Validate() error {
	switch {
	case r.kind == KindAsset && r.asset == nil, r.kind == KindTicket && r.ticket == nil:
		return fmt.Errorf("%w: missing payload", apperrors.ErrMalformedRecord)
	case r.kind != KindAsset && r.kind != KindTicket:
		return fmt.Errorf("%w: unknown kind %q", apperrors.ErrMalformedRecord, r.kind)
	case r.ID() == "":
		return fmt.Errorf("%w: missing id", apperrors.ErrMalformedRecord)
	case r.CreatedAt().IsZero():
		return fmt.Errorf("%w: missing createdAt", apperrors.ErrMalformedRecord)
	}
	return nil
}

func (r Record) ID() string {
	switch {
	case r.asset != nil:
		return r.asset.ID
	case r.ticket != nil:
		return r.ticket.ID
	}
	return ""
}

// Title is the asset name or the ticket title.
func (r Record) Title() string {
	switch {
	case r.asset != nil:
		return r.asset.Name
	case r.ticket != nil:
		return r.ticket.Title
	}
	return ""
}

func (r Record) Status() string {
	switch {
	case r.asset != nil:
		return string(r.asset.Status)
	case r.ticket != nil:
		return string(r.ticket.Status)
	}
	return ""
}

func (r Record) CreatedAt() time.Time {
	switch {
	case r.asset != nil:
		return r.asset.CreatedAt
	case r.ticket != nil:
		return r.ticket.CreatedAt
	}
	return time.Time{}
}

// DueAt is only defined for tickets.
func (r Record) DueAt() *time.Time {
	if r.ticket != nil {
		return r.ticket.DueAt
	}
	return nil
}

func (r Record) ResolvedAt() *time.Time {
	if r.ticket != nil {
		return r.ticket.ResolvedAt
	}
	return nil
}

// IsResolved is true only for tickets in status Resolvido.
func (r Record) IsResolved() bool {
	return r.ticket != nil && r.ticket.IsResolved()
}

func (r Record) Department() string {
	switch {
	case r.asset != nil:
		return r.asset.Department
	case r.ticket != nil:
		return r.ticket.Department
	}
	return ""
}

// Category falls back to the asset type for assets without a category.
func (r Record) Category() string {
	switch {
	case r.asset != nil:
		if r.asset.Category != "" {
			return r.asset.Category
		}
		return r.asset.Type
	case r.ticket != nil:
		return r.ticket.Category
	}
	return ""
}

func (r Record) Priority() string {
	if r.ticket != nil {
		return string(r.ticket.Priority)
	}
	return ""
}

func (r Record) Responsible() string {
	switch {
	case r.asset != nil:
		return r.asset.Responsible
	case r.ticket != nil:
		return r.ticket.Responsible
	}
	return ""
}

// Field extracts the value of column c. The boolean is false when c does
// not apply to the record's kind.
func (r Record) Field(c Column) (Value, bool) {
	switch c {
	case ColumnID:
		return StringValue(r.ID()), true
	case ColumnTitle, ColumnName:
		return StringValue(r.Title()), true
	case ColumnStatus:
		return StringValue(r.Status()), true
	case ColumnDate, ColumnCreatedAt:
		return TimeValue(r.CreatedAt()), true
	case ColumnDepartment:
		return StringValue(r.Department()), true
	case ColumnCategory:
		return StringValue(r.Category()), true
	case ColumnResponsible:
		return StringValue(r.Responsible()), true
	}

	switch {
	case r.ticket != nil:
		return r.ticketField(c)
	case r.asset != nil:
		return r.assetField(c)
	}
	return Value{}, false
}

func (r Record) ticketField(c Column) (Value, bool) {
	t := r.ticket
	switch c {
	case ColumnPriority:
		return StringValue(string(t.Priority)), true
	case ColumnDueAt:
		return timePtrValue(t.DueAt), true
	case ColumnResolvedAt:
		return timePtrValue(t.ResolvedAt), true
	case ColumnAssetName:
		return StringValue(t.AssetName), true
	case ColumnAuthorName:
		return StringValue(t.AuthorName), true
	}
	return Value{}, false
}

func (r Record) assetField(c Column) (Value, bool) {
	a := r.asset
	switch c {
	case ColumnSerialNumber:
		return StringValue(a.SerialNumber), true
	case ColumnPatrimony:
		return StringValue(a.Patrimony), true
	case ColumnType:
		return StringValue(a.Type), true
	case ColumnLocation:
		return StringValue(a.Location), true
	case ColumnUpdatedAt:
		return timePtrValue(a.UpdatedAt), true
	case ColumnLastMaintenance:
		return timePtrValue(a.LastMaintenance), true
	}
	return Value{}, false
}
