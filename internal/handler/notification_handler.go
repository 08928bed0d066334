package handler

import (
	"log/slog"
	"net/http"

	"bizdesk/internal/websocket"
)

type NotificationHandler struct {
	hub *websocket.Hub
}

func NewNotificationHandler(hub *websocket.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

// Stream upgrades to a websocket carrying the caller's toasts and view
// lifecycle events.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.hub.Serve(r.Context(), w, r, sess.Owner()); err != nil {
		slog.Debug("notification stream ended", "error", err)
	}
}
