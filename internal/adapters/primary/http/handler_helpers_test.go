package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	mw "github.com/lorrc/asset-desk-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/asset-desk-backend/internal/auth"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

var (
	brt     = time.FixedZone("BRT", -3*60*60)
	fixedAt = time.Date(2024, 7, 25, 12, 0, 0, 0, time.UTC)

	adminUser = domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin}
	techUser  = domain.Identity{UserID: "tech-1", Role: domain.RoleTechnician}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asUser injects identity the way JWTMiddleware would.
func asUser(identity domain.Identity, email string) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			claims := &auth.Claims{Role: string(identity.Role), Email: email}
			claims.Subject = identity.UserID
			next.ServeHTTP(w, r.WithContext(mw.WithClaims(r.Context(), claims)))
		})
	}
}

// newRouter mounts routes under prefix, authenticated as identity unless it
// is the zero value.
func newRouter(identity domain.Identity, prefix string, register func(chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Route(prefix, func(r chi.Router) {
		if identity.UserID != "" {
			r.Use(asUser(identity, "admin@example.com"))
		}
		register(r)
	})
	return r
}

func do(t *testing.T, h stdhttp.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
