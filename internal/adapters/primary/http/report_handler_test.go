package http

import (
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/mocks"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

func newReportRouter(svc ports.ReportService, identity domain.Identity) stdhttp.Handler {
	h := NewReportHandler(svc, NewErrorHandler(testLogger()), brt, testLogger())
	h.clock = func() time.Time { return fixedAt }
	return newRouter(identity, "/reports", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.Get("/{type}/export", h.HandleExport)
	})
}

func sampleReport() *domain.Report {
	return &domain.Report{
		Kind: domain.KindTicket,
		Records: []domain.Record{
			domain.TicketRecord(&domain.Ticket{
				ID:        "t1",
				Title:     "Impressora, sem toner",
				Status:    domain.StatusOpen,
				Priority:  domain.PriorityHigh,
				CreatedAt: fixedAt,
			}),
		},
		Stats: []domain.ReportStat{{Type: domain.StatTotal, Label: "Total", Value: 1}},
		Sort:  domain.SortSpec{Column: domain.ColumnTitle, Direction: domain.SortAscending},
		Columns: []domain.TableColumn{
			{Key: domain.ColumnID, Label: "ID", Sortable: true},
			{Key: domain.ColumnTitle, Label: "Título", Sortable: true},
			{Key: domain.ColumnDate, Label: "Data", Sortable: true},
		},
		GeneratedAt: fixedAt,
	}
}

func TestReportHandler_ParsesQuery(t *testing.T) {
	svc := mocks.NewMockReportService()
	router := newReportRouter(svc, techUser)

	from := time.Date(2024, 7, 1, 0, 0, 0, 0, brt)
	to := time.Date(2024, 7, 31, 23, 59, 59, int(999*time.Millisecond), brt)

	svc.On("Report", mock.Anything, techUser, mock.MatchedBy(func(req ports.ReportRequest) bool {
		return req.Kind == domain.KindTicket &&
			req.Criteria.Status == "pending" &&
			req.Criteria.Department == "TI" &&
			req.Criteria.Range == "custom" &&
			req.Criteria.From != nil && req.Criteria.From.Equal(from) &&
			req.Criteria.To != nil && req.Criteria.To.Equal(to) &&
			req.Sort == domain.SortSpec{Column: domain.ColumnTitle, Direction: domain.SortAscending} &&
			req.Toggle == domain.ColumnPriority
	})).Return(sampleReport(), nil)

	rec := do(t, router, stdhttp.MethodGet,
		"/reports/chamados?status=pending&department=TI&range=custom&from=2024-07-01&to=2024-07-31&sort=title&toggle=priority", nil)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "tickets", body["kind"])
	assert.EqualValues(t, 1, body["count"])
	records := body["records"].([]any)
	assert.Equal(t, "t1", records[0].(map[string]any)["id"])
	svc.AssertExpectations(t)
}

func TestReportHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"unknown collection", "/reports/users", nil, stdhttp.StatusNotFound, "UNKNOWN_COLLECTION"},
		{"bad direction", "/reports/tickets?sort=title&dir=sideways", nil, stdhttp.StatusBadRequest, "INVALID_CRITERIA"},
		{"bad date", "/reports/tickets?from=yesterday", nil, stdhttp.StatusBadRequest, "BAD_REQUEST"},
		{"unknown column", "/reports/tickets?sort=color", apperrors.ErrUnknownColumn, stdhttp.StatusBadRequest, "UNKNOWN_COLUMN"},
		{"inverted range", "/reports/tickets", apperrors.ErrInvalidDateRange, stdhttp.StatusBadRequest, "INVALID_DATE_RANGE"},
		{"forbidden", "/reports/assets", apperrors.ErrForbidden, stdhttp.StatusForbidden, "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockReportService()
			if tt.serviceErr != nil {
				svc.On("Report", mock.Anything, techUser, mock.Anything).Return(nil, tt.serviceErr)
			}

			rec := do(t, newReportRouter(svc, techUser), stdhttp.MethodGet, tt.target, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestReportHandler_RequiresIdentity(t *testing.T) {
	svc := mocks.NewMockReportService()

	rec := do(t, newReportRouter(svc, domain.Identity{}), stdhttp.MethodGet, "/reports/tickets", nil)

	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Report", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportHandler_ExportCSV(t *testing.T) {
	svc := mocks.NewMockReportService()
	svc.On("Report", mock.Anything, techUser, mock.Anything).Return(sampleReport(), nil)

	rec := do(t, newReportRouter(svc, techUser), stdhttp.MethodGet, "/reports/tickets/export?format=csv", nil)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="relatorio-tickets-2024-07-25.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID,Título,Data\nt1,\"Impressora, sem toner\",25/07/2024 09:00\n", rec.Body.String())
}

func TestReportHandler_ExportCSVEscapesFormulas(t *testing.T) {
	report := sampleReport()
	report.Records = []domain.Record{
		domain.TicketRecord(&domain.Ticket{ID: "t1", Title: "=HYPERLINK(\"http://x\")", Status: domain.StatusOpen, CreatedAt: fixedAt}),
		domain.TicketRecord(&domain.Ticket{ID: "t2", Title: "@SUM(A1)", Status: domain.StatusOpen, CreatedAt: fixedAt}),
		domain.TicketRecord(&domain.Ticket{ID: "t3", Title: "Rede -lenta", Status: domain.StatusOpen, CreatedAt: fixedAt}),
	}
	svc := mocks.NewMockReportService()
	svc.On("Report", mock.Anything, techUser, mock.Anything).Return(report, nil)

	rec := do(t, newReportRouter(svc, techUser), stdhttp.MethodGet, "/reports/tickets/export", nil)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "ID,Título,Data\n"+
		"t1,\"'=HYPERLINK(\"\"http://x\"\")\",25/07/2024 09:00\n"+
		"t2,'@SUM(A1),25/07/2024 09:00\n"+
		"t3,Rede -lenta,25/07/2024 09:00\n", rec.Body.String())
}

func TestEscapeFormula(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"Notebook": "Notebook",
		"=1+1":     "'=1+1",
		"+55 11":   "'+55 11",
		"-3":       "'-3",
		"@cmd":     "'@cmd",
		"\t=tab":   "'\t=tab",
		"a=b":      "a=b",
	}
	for in, want := range tests {
		assert.Equal(t, want, escapeFormula(in), in)
	}
}

func TestReportHandler_ParsesAssetFilters(t *testing.T) {
	svc := mocks.NewMockReportService()
	svc.On("Report", mock.Anything, techUser, mock.MatchedBy(func(req ports.ReportRequest) bool {
		return req.Kind == domain.KindAsset &&
			req.Criteria.Location == "Sala 3" &&
			req.Criteria.Responsible == "maria-souza"
	})).Return(sampleReport(), nil)

	rec := do(t, newReportRouter(svc, techUser), stdhttp.MethodGet,
		"/reports/assets?location=Sala+3&responsible=maria-souza", nil)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestReportHandler_ExportJSON(t *testing.T) {
	svc := mocks.NewMockReportService()
	svc.On("Report", mock.Anything, techUser, mock.Anything).Return(sampleReport(), nil)

	rec := do(t, newReportRouter(svc, techUser), stdhttp.MethodGet, "/reports/tickets/export?format=JSON", nil)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".json")
	assert.Equal(t, "tickets", decode[ReportResponse](t, rec).Kind)
}

func TestReportHandler_ExportUnsupportedFormat(t *testing.T) {
	for _, format := range []string{"pdf", "excel", "docx"} {
		t.Run(format, func(t *testing.T) {
			svc := mocks.NewMockReportService()

			rec := do(t, newReportRouter(svc, techUser), stdhttp.MethodGet, "/reports/tickets/export?format="+format, nil)

			assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
			assert.Equal(t, "UNSUPPORTED_FORMAT", decode[ErrorResponse](t, rec).Code)
			svc.AssertNotCalled(t, "Report", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
