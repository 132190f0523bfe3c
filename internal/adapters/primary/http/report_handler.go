package http

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/asset-desk-backend/internal/adapters/primary/validation"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/lorrc/asset-desk-backend/internal/core/reporting"
)

// Export formats. pdf and excel are recognised but rendered client-side.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatPDF   = "pdf"
	FormatExcel = "excel"
)

// ReportHandler serves report tables and their exports.
type ReportHandler struct {
	reportService ports.ReportService
	errorHandler  *ErrorHandler
	location      *time.Location
	clock         func() time.Time
	logger        *slog.Logger
}

func NewReportHandler(
	reportService ports.ReportService,
	errorHandler *ErrorHandler,
	location *time.Location,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		errorHandler:  errorHandler,
		location:      location,
		clock:         time.Now,
		logger:        logger.With("handler", "report"),
	}
}

// RegisterRoutes mounts the report table. The export route is mounted
// separately so it can carry its own rate limit.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{type}", h.HandleReport)
}

// HandleReport handles GET /reports/{type}
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := h.parseReportRequest(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	report, err := h.reportService.Report(r.Context(), actor, req)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, toReportResponse(report))
}

// HandleExport handles GET /reports/{type}/export?format=csv|json
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatJSON {
		h.errorHandler.Handle(w, r, apperrors.NewUnsupportedFormatError(format))
		return
	}

	req, err := h.parseReportRequest(r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	report, err := h.reportService.Report(r.Context(), actor, req)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	filename := fmt.Sprintf("relatorio-%s-%s.%s", report.Kind, h.clock().In(h.location).Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if format == FormatJSON {
		WriteJSON(w, http.StatusOK, toReportResponse(report))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := writeReportCSV(w, report, h.location); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write csv export",
			"kind", report.Kind,
			"error", err,
		)
	}
}

// writeReportCSV writes one header row of column labels followed by one
// row per record. Timestamps are rendered in loc.
func writeReportCSV(w http.ResponseWriter, report *domain.Report, loc *time.Location) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(report.Columns))
	for i, col := range report.Columns {
		header[i] = col.Label
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(report.Columns))
	for _, record := range report.Records {
		for i, col := range report.Columns {
			v, _ := record.Field(col.Key)
			if v.Kind == domain.ValueTime {
				row[i] = v.Time.In(loc).Format("02/01/2006 15:04")
			} else {
				row[i] = escapeFormula(v.String())
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// escapeFormula prefixes cells that spreadsheets would evaluate as a
// formula with a single quote.
func escapeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

func (h *ReportHandler) parseReportRequest(r *http.Request) (ports.ReportRequest, error) {
	kind, err := domain.ParseRecordKind(chi.URLParam(r, "type"))
	if err != nil {
		return ports.ReportRequest{}, err
	}

	q := r.URL.Query()

	from, err := validation.ParseTimeQueryParam(r, "from", h.location, false)
	if err != nil {
		return ports.ReportRequest{}, err
	}
	to, err := validation.ParseTimeQueryParam(r, "to", h.location, true)
	if err != nil {
		return ports.ReportRequest{}, err
	}

	req := ports.ReportRequest{
		Kind: kind,
		Criteria: reporting.CriteriaInput{
			Search:      q.Get("search"),
			Category:    q.Get("category"),
			Status:      q.Get("status"),
			Department:  q.Get("department"),
			Location:    q.Get("location"),
			Responsible: q.Get("responsible"),
			Range:       q.Get("range"),
			From:        from,
			To:          to,
		},
		Toggle: domain.Column(strings.TrimSpace(q.Get("toggle"))),
	}

	if column := strings.TrimSpace(q.Get("sort")); column != "" {
		direction, err := reporting.ParseSortDirection(q.Get("dir"))
		if err != nil {
			return ports.ReportRequest{}, err
		}
		if direction == domain.SortNone && q.Get("dir") == "" {
			direction = domain.SortAscending
		}
		req.Sort = domain.SortSpec{Column: domain.Column(column), Direction: direction}
	}

	return req, nil
}
