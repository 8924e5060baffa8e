package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bengamraiheb/backloft/internal/api/middleware"
	"github.com/bengamraiheb/backloft/internal/api/shared"
	"github.com/bengamraiheb/backloft/internal/platform/logger"
	"github.com/bengamraiheb/backloft/internal/realtime"
	"github.com/bengamraiheb/backloft/internal/service/auth"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades live-event connections. Authentication happens
// before the upgrade: browsers cannot set an Authorization header on a
// WebSocket handshake, so the token may also arrive as a query parameter.
type WSHandler struct {
	jwtService auth.JWTService
	registry   realtime.Registry
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewWSHandler creates a new WSHandler. allowedOrigin is the client URL
// permitted to open connections; empty allows any origin (development).
func NewWSHandler(
	jwtService auth.JWTService,
	registry realtime.Registry,
	allowedOrigin string,
	logger *slog.Logger,
) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &WSHandler{
		jwtService: jwtService,
		registry:   registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigin),
		},
		logger: logger.With(slog.String("component", "ws_handler")),
	}
}

// Connect handles GET /ws. The connection is served until the client
// disconnects; events queued for the user are delivered as JSON text
// frames.
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	token, ok := middleware.BearerToken(r)
	if !ok {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	claims, err := h.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	userID := claims.UserID.String()
	sink := realtime.NewWSConn(conn, h.logger)
	remove := h.registry.Add(userID, sink)

	log.Debug("websocket connected", slog.String("user_id", userID))
	sink.Run(remove)
	log.Debug("websocket disconnected", slog.String("user_id", userID))
}

// originChecker accepts the configured client origin plus same-host
// requests. An empty configuration accepts everything.
func originChecker(allowedOrigin string) func(r *http.Request) bool {
	allowed := strings.TrimRight(allowedOrigin, "/")
	return func(r *http.Request) bool {
		if allowed == "" {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if strings.TrimRight(origin, "/") == allowed {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
