package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"bizdesk/internal/model"
	"bizdesk/internal/restclient"
	"bizdesk/internal/session"
	"bizdesk/internal/table"
	"bizdesk/pkg/apierror"
)

const maxBodyBytes = 1 << 20

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrInvalidInput) || errors.Is(err, table.ErrInvalidRecord) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	} else if errors.Is(err, table.ErrUnknownField) {
		status = http.StatusBadRequest
		body.Code = "UNKNOWN_FIELD"
		body.Message = "Unknown field"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrViewNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "View not found"
	} else if errors.Is(err, model.ErrCollectionNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Collection not found"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrRecordNotFound) || errors.Is(err, table.ErrRecordNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Record not found"
	} else if errors.Is(err, table.ErrClosed) {
		status = http.StatusGone
		body.Code = "GONE"
		body.Message = "View closed"
	} else if restclient.IsStatus(err, http.StatusUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Backend rejected the session token"
	} else if restclient.IsStatus(err, http.StatusForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Backend denied the operation"
	} else if errors.Is(err, table.ErrOperationFailed) || errors.Is(err, model.ErrUpstreamFailed) {
		status = http.StatusBadGateway
		body.Code = "UPSTREAM_FAILED"
		body.Message = "Backend operation failed"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(out); err != nil {
		return apierror.BadRequest("invalid JSON body", "")
	}

	return nil
}

// readRawJSON returns the request body as-is after checking it is a JSON
// object.
func readRawJSON(r *http.Request) (json.RawMessage, error) {
	defer r.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, apierror.BadRequest("unable to read body", "")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, apierror.BadRequest("body must be a JSON object", "")
	}

	return raw, nil
}

func sessionFrom(r *http.Request) (session.Session, error) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return session.Session{}, apierror.Unauthorized("authentication required")
	}

	return sess, nil
}
