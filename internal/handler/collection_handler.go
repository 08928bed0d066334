package handler

import (
	"net/http"

	"bizdesk/internal/service"
)

type CollectionHandler struct {
	views *service.ViewService
}

func NewCollectionHandler(views *service.ViewService) *CollectionHandler {
	return &CollectionHandler{views: views}
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, h.views.Collections(sess), nil)
}
