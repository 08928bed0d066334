package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bizdesk/internal/collection"
	"bizdesk/internal/model"
	"bizdesk/internal/service"
	"bizdesk/pkg/apierror"
)

type ViewHandler struct {
	views *service.ViewService
}

func NewViewHandler(views *service.ViewService) *ViewHandler {
	return &ViewHandler{views: views}
}

type viewResponse struct {
	ViewID string                 `json:"view_id"`
	Fields []collection.FieldInfo `json:"fields,omitempty"`
	collection.Snapshot
}

type editingRequest struct {
	ID string `json:"id"`
}

func (h *ViewHandler) Open(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.OpenViewRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if err := model.Validate(payload); err != nil {
		writeError(w, err)
		return
	}

	id, view, err := h.views.Open(r.Context(), sess, payload.Collection)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeView(w, http.StatusCreated, id, view, true)
}

func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.view(w, r)
	if !ok {
		return
	}

	h.writeView(w, http.StatusOK, id, view, r.URL.Query().Get("fields") == "true")
}

func (h *ViewHandler) Load(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.view(w, r)
	if !ok {
		return
	}

	if err := view.Load(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	h.writeView(w, http.StatusOK, id, view, false)
}

func (h *ViewHandler) Search(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.view(w, r)
	if !ok {
		return
	}

	var payload model.SearchRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	view.Search(payload.Term)
	h.writeView(w, http.StatusOK, id, view, false)
}

func (h *ViewHandler) Sort(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.view(w, r)
	if !ok {
		return
	}

	var payload model.SortRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	payload.Field = strings.TrimSpace(payload.Field)
	if err := model.Validate(payload); err != nil {
		writeError(w, err)
		return
	}

	if err := view.Sort(payload.Field); err != nil {
		writeError(w, err)
		return
	}

	h.writeView(w, http.StatusOK, id, view, false)
}

func (h *ViewHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.view(w, r)
	if !ok {
		return
	}

	record, found := view.Get(chi.URLParam(r, "id"))
	if !found {
		writeError(w, model.ErrRecordNotFound)
		return
	}

	writeSuccess(w, http.StatusOK, record, nil)
}

func (h *ViewHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.view(w, r)
	if !ok {
		return
	}

	raw, err := readRawJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := view.Create(r.Context(), raw)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, created, nil)
}

func (h *ViewHandler) Edit(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.view(w, r)
	if !ok {
		return
	}

	raw, err := readRawJSON(r)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := view.Edit(r.Context(), chi.URLParam(r, "id"), raw)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, nil)
}

func (h *ViewHandler) Remove(w http.ResponseWriter, r *http.Request) {
	_, view, ok := h.view(w, r)
	if !ok {
		return
	}

	recordID := chi.URLParam(r, "id")
	if err := view.Remove(r.Context(), recordID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"removed": recordID}, nil)
}

// BeginEdit opens the edit dialog on a record; the dialog is part of the
// snapshot so a reconnecting browser can restore it.
func (h *ViewHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.view(w, r)
	if !ok {
		return
	}

	var payload editingRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(payload.ID) == "" {
		writeError(w, apierror.BadRequest("id is required", "id"))
		return
	}

	if err := view.BeginEdit(payload.ID); err != nil {
		writeError(w, err)
		return
	}

	h.writeView(w, http.StatusOK, id, view, false)
}

func (h *ViewHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	id, view, ok := h.view(w, r)
	if !ok {
		return
	}

	view.CancelEdit()
	h.writeView(w, http.StatusOK, id, view, false)
}

func (h *ViewHandler) Close(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id := chi.URLParam(r, "view_id")
	if err := h.views.CloseView(sess, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"closed": id}, nil)
}

func (h *ViewHandler) view(w http.ResponseWriter, r *http.Request) (string, collection.View, bool) {
	sess, err := sessionFrom(r)
	if err != nil {
		writeError(w, err)
		return "", nil, false
	}

	id := chi.URLParam(r, "view_id")
	view, err := h.views.Get(sess, id)
	if err != nil {
		writeError(w, err)
		return "", nil, false
	}

	return id, view, true
}

func (h *ViewHandler) writeView(w http.ResponseWriter, status int, id string, view collection.View, withFields bool) {
	snap := view.Snapshot()

	resp := viewResponse{ViewID: id, Snapshot: snap}
	if withFields {
		resp.Fields = view.Fields()
	}

	writeSuccess(w, status, resp, metaOf(snap))
}

func metaOf(snap collection.Snapshot) *model.Meta {
	meta := &model.Meta{
		Total:     snap.Total,
		Displayed: len(snap.Records),
		Term:      snap.Term,
	}
	if snap.Sort != nil {
		meta.SortField = snap.Sort.Field
		meta.SortOrder = string(snap.Sort.Direction)
	}

	return meta
}
