package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mesh-intelligence/backstage/internal/tabs"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

// Content types the API can answer with.
const (
	contentJSON    = "application/json"
	contentMsgpack = "application/msgpack"
)

var errBadRequest = errors.New("bad request")

// wantsMsgpack reports whether the client asked for msgpack, through the
// rt query parameter or the Accept header.
func wantsMsgpack(r *http.Request) bool {
	if rt := r.URL.Query().Get("rt"); rt != "" {
		return rt == contentMsgpack
	}
	return strings.Contains(r.Header.Get("Accept"), contentMsgpack)
}

// respond writes v with status in the negotiated encoding. Msgpack output
// uses the same field names as JSON.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	var (
		body        []byte
		err         error
		contentType = contentJSON
	)
	if wantsMsgpack(r) {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		err = enc.Encode(v)
		body, contentType = buf.Bytes(), contentMsgpack
	} else {
		body, err = json.Marshal(v)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("encoding response")
		http.Error(w, `{"error":"encoding response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrTableNotFound),
		errors.Is(err, tabs.ErrNotOpen):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidStatus),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, tabs.ErrInvalidPage),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrConsoleDetached):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": "..."}. Server errors are logged and their
// detail withheld.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = http.StatusText(status)
	}
	h.respond(w, r, status, map[string]string{"error": msg})
}
