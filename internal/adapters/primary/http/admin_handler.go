package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/asset-desk-backend/internal/adapters/primary/validation"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

type AdminHandler struct {
	adminService ports.AdminService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewAdminHandler(adminService ports.AdminService, errorHandler *ErrorHandler, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "admin"),
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.HandleListUsers)
		r.Patch("/{userID}/role", h.HandleUpdateUserRole)
	})
}

type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

func (r *UpdateUserRoleRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("role", r.Role).
		OneOf("role", strings.ToLower(r.Role), []string{
			string(domain.RoleAdmin), string(domain.RoleTechnician), string(domain.RoleUser),
		})

	return v.Err()
}

// HandleListUsers handles GET /admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), actor)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	response := make([]UserDTO, 0, len(users))
	for _, user := range users {
		response = append(response, toUserDTO(user))
	}

	WriteList(w, response)
}

// HandleUpdateUserRole handles PATCH /admin/users/{userID}/role
func (h *AdminHandler) HandleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[UpdateUserRoleRequest](w, r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	userID := chi.URLParam(r, "userID")
	if HandleError(w, r, h.adminService.UpdateUserRole(r.Context(), actor, userID, role), h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "user role updated",
		"target_user_id", userID,
		"role", role,
	)

	WriteNoContent(w)
}
