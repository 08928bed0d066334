package handler

import (
	"net/http"

	"bizdesk/internal/service"
	"bizdesk/internal/websocket"
)

type HealthHandler struct {
	views *service.ViewService
	hub   *websocket.Hub
}

func NewHealthHandler(views *service.ViewService, hub *websocket.Hub) *HealthHandler {
	return &HealthHandler{views: views, hub: hub}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"views":   h.views.Count(),
		"sockets": h.hub.Clients(),
	}, nil)
}
