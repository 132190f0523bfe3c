package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/asset-desk-backend/internal/adapters/primary/validation"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

var assetStatuses = []string{
	string(domain.AssetActive), string(domain.AssetInactive),
	string(domain.AssetMaintenance), string(domain.AssetRetired),
}

type AssetHandler struct {
	assetService ports.AssetService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewAssetHandler(assetService ports.AssetService, errorHandler *ErrorHandler, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "asset"),
	}
}

func (h *AssetHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListRecentAssets)
	r.Post("/", h.HandleCreateAsset)

	r.Route("/{assetID}", func(r chi.Router) {
		r.Get("/", h.HandleGetAsset)
		r.Put("/", h.HandleUpdateAsset)
		r.Delete("/", h.HandleDeleteAsset)
	})
}

// AssetRequest is the body of both create and update; update replaces
// every editable field.
type AssetRequest struct {
	Name            string     `json:"name"`
	SerialNumber    string     `json:"serialNumber"`
	Patrimony       string     `json:"patrimony"`
	Type            string     `json:"type"`
	Category        string     `json:"category"`
	Status          string     `json:"status"`
	Location        string     `json:"location"`
	Responsible     string     `json:"responsible"`
	Department      string     `json:"department"`
	Description     string     `json:"description"`
	LastMaintenance *time.Time `json:"lastMaintenance"`
}

func (r *AssetRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MaxLength("name", r.Name, domain.MaxNameLength)

	v.OneOf("status", r.Status, assetStatuses)

	v.MaxLength("description", r.Description, domain.MaxDescriptionLength)

	return v.Err()
}

func (r *AssetRequest) params() domain.AssetParams {
	return domain.AssetParams{
		Name:            r.Name,
		SerialNumber:    r.SerialNumber,
		Patrimony:       r.Patrimony,
		Type:            r.Type,
		Category:        r.Category,
		Status:          domain.AssetStatus(r.Status),
		Location:        r.Location,
		Responsible:     r.Responsible,
		Department:      r.Department,
		Description:     r.Description,
		LastMaintenance: r.LastMaintenance,
	}
}

// HandleListRecentAssets handles GET /assets?limit=
func (h *AssetHandler) HandleListRecentAssets(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := validation.ParseLimit(r, defaultRecentLimit, maxRecentLimit)

	assets, err := h.assetService.ListRecentAssets(r.Context(), actor, limit)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteList(w, toAssetDTOs(assets))
}

// HandleCreateAsset handles POST /assets
func (h *AssetHandler) HandleCreateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[AssetRequest](w, r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	asset, err := h.assetService.CreateAsset(r.Context(), actor, req.params())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "asset created", "asset_id", asset.ID)

	WriteCreated(w, toAssetDTO(asset))
}

// HandleGetAsset handles GET /assets/{assetID}
func (h *AssetHandler) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	asset, err := h.assetService.GetAsset(r.Context(), actor, chi.URLParam(r, "assetID"))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, toAssetDTO(asset))
}

// HandleUpdateAsset handles PUT /assets/{assetID}
func (h *AssetHandler) HandleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[AssetRequest](w, r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	asset, err := h.assetService.UpdateAsset(r.Context(), actor, chi.URLParam(r, "assetID"), req.params())
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, toAssetDTO(asset))
}

// HandleDeleteAsset handles DELETE /assets/{assetID}
func (h *AssetHandler) HandleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	assetID := chi.URLParam(r, "assetID")
	if HandleError(w, r, h.assetService.DeleteAsset(r.Context(), actor, assetID), h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "asset deleted", "asset_id", assetID)

	WriteNoContent(w)
}
