package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/backstage/pkg/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// reservedParams are query parameters that are not filters.
var reservedParams = map[string]bool{"page": true, "per_page": true, "where": true, "rt": true}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, map[string]any{"status": "ok", "tab_sessions": h.tabs.Len()})
}

func (h *Handler) handleListTables(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.console.TableNames())
}

func (h *Handler) table(r *http.Request) (types.Table, error) {
	return h.console.GetTable(chi.URLParam(r, "table"))
}

func (h *Handler) handleFilters(w http.ResponseWriter, r *http.Request) {
	t, err := h.table(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, t.Filters())
}

// parseQuery reads the page window, the where expression, and every other
// query parameter as a filter.
func parseQuery(r *http.Request) (types.Query, error) {
	values := r.URL.Query()
	q := types.Query{Filters: map[string]string{}, Where: values.Get("where")}
	for key, param := range map[string]*int{"page": &q.Page, "per_page": &q.PerPage} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
		}
		*param = n
	}
	for key := range values {
		if !reservedParams[key] {
			q.Filters[key] = values.Get(key)
		}
	}
	return q, nil
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request, recycled bool) {
	t, err := h.table(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	fetch := t.Fetch
	if recycled {
		fetch = t.FetchRecycled
	}
	page, err := fetch(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, page)
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	h.fetch(w, r, false)
}

func (h *Handler) handleFetchRecycled(w http.ResponseWriter, r *http.Request) {
	h.fetch(w, r, true)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.table(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := t.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, row)
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: body must be a JSON object: %v", errBadRequest, err)
	}
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	t, err := h.table(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var payload map[string]any
	if err := decodeBody(w, r, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := t.Create(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, row)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	t, err := h.table(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var patch map[string]any
	if err := decodeBody(w, r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := t.Update(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	t, err := h.table(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := t.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// handleBatch serves the operations that take a list of IDs.
func (h *Handler) handleBatch(op func(types.Table, context.Context, []string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := h.table(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		var req idsRequest
		if err := decodeBody(w, r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := op(t, r.Context(), req.IDs); err != nil {
			h.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
