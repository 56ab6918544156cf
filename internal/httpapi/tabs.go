package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/backstage/internal/tabs"
)

type pageRequest struct {
	Page string `json:"page"`
}

func (h *Handler) handleTabs(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.tabs.List(chi.URLParam(r, "session")))
}

func (h *Handler) handleTabsForget(w http.ResponseWriter, r *http.Request) {
	h.tabs.Forget(chi.URLParam(r, "session"))
	w.WriteHeader(http.StatusNoContent)
}

// tabAction decodes {"page": ...} and applies op to the session.
func (h *Handler) tabAction(op func(session, page string) (tabs.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pageRequest
		if err := decodeBody(w, r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
		st, err := op(chi.URLParam(r, "session"), req.Page)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.respond(w, r, http.StatusOK, st)
	}
}

func (h *Handler) handleTabOpen(w http.ResponseWriter, r *http.Request) {
	h.tabAction(h.tabs.Open)(w, r)
}

func (h *Handler) handleTabClose(w http.ResponseWriter, r *http.Request) {
	h.tabAction(func(session, page string) (tabs.State, error) {
		return h.tabs.Close(session, page), nil
	})(w, r)
}

func (h *Handler) handleTabActivate(w http.ResponseWriter, r *http.Request) {
	h.tabAction(h.tabs.Activate)(w, r)
}

func (h *Handler) handleTabCloseOthers(w http.ResponseWriter, r *http.Request) {
	h.tabAction(h.tabs.CloseOthers)(w, r)
}
