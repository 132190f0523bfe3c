package http

import (
	"net/http"

	mw "github.com/lorrc/asset-desk-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

// currentUser extracts the caller's identity from the request context and
// writes a 401 when it is absent.
func currentUser(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, ok := mw.IdentityFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return domain.Identity{}, false
	}
	return identity, true
}
