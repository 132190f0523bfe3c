package http

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	mw "github.com/lorrc/asset-desk-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

// MeResponse is the caller's profile together with its permissions.
type MeResponse struct {
	UserDTO
	Permissions []string `json:"permissions"`
}

// MeHandler handles HTTP requests for the authenticated user.
type MeHandler struct {
	profileService ports.ProfileService
	authzService   ports.AuthorizationService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

func NewMeHandler(
	profileService ports.ProfileService,
	authzService ports.AuthorizationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MeHandler {
	return &MeHandler{
		profileService: profileService,
		authzService:   authzService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "me"),
	}
}

func (h *MeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleMe)
}

// HandleMe handles GET /me. The profile is provisioned on first call from
// the token's email and name claims.
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	var params ports.ProfileParams
	if claims, ok := mw.GetClaims(r.Context()); ok {
		params = ports.ProfileParams{Email: claims.Email, FullName: claims.Name}
	}

	user, err := h.profileService.GetOrCreateProfile(r.Context(), actor, params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	permissions, err := h.authzService.GetPermissions(r.Context(), actor)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if permissions == nil {
		permissions = []string{}
	}
	sort.Strings(permissions)

	WriteJSON(w, http.StatusOK, MeResponse{
		UserDTO:     toUserDTO(user),
		Permissions: permissions,
	})
}
