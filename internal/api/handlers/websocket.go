package handlers

import (
	"net/http"

	"github.com/dom/tickify/internal/events"
	"github.com/dom/tickify/internal/service"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub            *events.Hub
	accountService *service.AccountService
	upgrader       ws.Upgrader
	logger         *zap.Logger
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" allows any.
func NewWebSocketHandler(hub *events.Hub, accountService *service.AccountService, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		accountService: accountService,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Handle upgrades the request into a live feed of the token's account.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Token required")
		return
	}

	caller, err := h.accountService.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := events.NewClient(h.hub, conn, caller.AccountID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
