// Package httpapi exposes the console tables and the tab registry over a
// REST API routed with chi.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/backstage/internal/metrics"
	"github.com/mesh-intelligence/backstage/internal/tabs"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

// Options configures the router. Console is required; the rest default to
// no-ops or fresh instances.
type Options struct {
	Console     types.Console
	Tabs        *tabs.Registry
	Logger      zerolog.Logger
	Metrics     *metrics.Collector
	CORSOrigins []string
}

// Handler serves the REST API.
type Handler struct {
	console types.Console
	tabs    *tabs.Registry
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// NewRouter builds the route tree.
func NewRouter(opts Options) http.Handler {
	h := &Handler{
		console: opts.Console,
		tabs:    opts.Tabs,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if h.tabs == nil {
		h.tabs = tabs.New()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)
	r.Use(cors(opts.CORSOrigins))

	r.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/tables", h.handleListTables)

		api.Route("/tabs/{session}", func(tr chi.Router) {
			tr.Get("/", h.handleTabs)
			tr.Delete("/", h.handleTabsForget)
			tr.Post("/open", h.handleTabOpen)
			tr.Post("/close", h.handleTabClose)
			tr.Post("/activate", h.handleTabActivate)
			tr.Post("/close-others", h.handleTabCloseOthers)
		})

		api.Route("/{table}", func(tr chi.Router) {
			tr.Get("/", h.handleFetch)
			tr.Post("/", h.handleCreate)
			tr.Get("/recycled", h.handleFetchRecycled)
			tr.Get("/filters", h.handleFilters)
			tr.Post("/batch-delete", h.handleBatch(types.Table.BatchDelete))
			tr.Post("/recycle", h.handleBatch(types.Table.Recycle))
			tr.Post("/restore", h.handleBatch(types.Table.Restore))
			tr.Post("/purge", h.handleBatch(types.Table.Purge))
			tr.Get("/{id}", h.handleGet)
			tr.Patch("/{id}", h.handleUpdate)
			tr.Delete("/{id}", h.handleDelete)
		})
	})

	return r
}
