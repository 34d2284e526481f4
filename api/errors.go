package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/windbackhq/windback-bff/upstream"
)

const (
	// maxBodySize caps inbound JSON bodies before they are forwarded.
	maxBodySize = 1 << 20

	msgNotAuthenticated = "Not authenticated"
	msgUpstreamFailed   = "Upstream request failed"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
}

// decodeJSON decodes a size-capped JSON body into T, writing a 400 on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, limit int64) (T, bool) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return v, false
	}
	return v, true
}

// readBody buffers a size-capped body for forwarding. An oversized body
// yields 413.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return b, true
}

// mapError turns a failed upstream exchange into a response. A cancelled
// inbound request writes nothing: the client is gone.
func (a *API) mapError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, upstream.ErrNoCredential):
		a.audit.logFailure(AuditProxyUnauthenticated, r, "no session cookie")
		writeUnauthenticated(w)
	case errors.Is(r.Context().Err(), context.Canceled):
		a.log.Debugw("client went away before upstream answered", "path", r.URL.Path, "error", err)
	default:
		a.log.Errorw("upstream request failed", "path", r.URL.Path, "request_id", requestID(r.Context()), "error", err)
		a.audit.logFailure(AuditUpstreamFailure, r, "transport")
		writeError(w, http.StatusBadGateway, msgUpstreamFailed)
	}
}
