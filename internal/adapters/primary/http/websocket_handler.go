package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	mw "github.com/lorrc/asset-desk-backend/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/asset-desk-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/asset-desk-backend/internal/config"
)

// WebSocketHandler upgrades authenticated connections and registers them
// with the hub.
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	tv       mw.TokenValidator
	upgrader websocket.Upgrader
	timing   wsAdapter.Timing
	logger   *slog.Logger
}

func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	tv mw.TokenValidator,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	h := &WebSocketHandler{
		hub: hub,
		tv:  tv,
		timing: wsAdapter.Timing{
			PingInterval: cfg.WebSocket.PingInterval,
			PongWait:     cfg.WebSocket.PongWait,
		},
		logger: logger.With("handler", "websocket"),
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     h.makeOriginChecker(cfg.WebSocket.AllowedOrigins, cfg.IsDevelopment()),
	}

	return h
}

// makeOriginChecker accepts listed hosts and "*.example.com" wildcards.
// Development mode accepts any origin.
func (h *WebSocketHandler) makeOriginChecker(allowedOrigins []string, development bool) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if development || origin == "" {
			return true
		}

		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin", "origin", origin, "error", err)
			return false
		}
		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			if u, err := url.Parse(allowed); err == nil && u.Host != "" {
				allowed = u.Host
			}
			if suffix, ok := strings.CutPrefix(allowed, "*."); ok {
				if originHost == suffix || strings.HasSuffix(originHost, "."+suffix) {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
		)
		return false
	}
}

// ServeHTTP authenticates via the token query parameter, since browsers
// cannot set headers on websocket requests.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.logger.WarnContext(r.Context(), "websocket connection rejected: missing token", "remote_addr", r.RemoteAddr)
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Missing authentication token", Code: "UNAUTHORIZED"})
		return
	}

	claims, err := h.tv.ValidateToken(tokenString)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket connection rejected: invalid token",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired token", Code: "UNAUTHORIZED"})
		return
	}

	identity := claims.Identity()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to upgrade websocket connection",
			"user_id", identity.UserID,
			"error", err,
		)
		return
	}

	h.logger.InfoContext(r.Context(), "websocket connection established",
		"user_id", identity.UserID,
		"remote_addr", r.RemoteAddr,
	)

	client := wsAdapter.NewClient(h.hub, conn, identity.UserID, h.timing, h.logger)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
