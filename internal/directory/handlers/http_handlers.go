package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gartstein/companydir/internal/directory/controller"
	e "github.com/gartstein/companydir/internal/directory/errors"
	"github.com/gartstein/companydir/internal/directory/filter"
	"github.com/gartstein/companydir/internal/directory/models"
	"github.com/gartstein/companydir/internal/directory/pagination"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Directory is the part of controller.Directory the HTTP layer needs.
type Directory interface {
	Load(ctx context.Context) error
	Status() (controller.Status, error)
	Query(q controller.Query) (controller.View, error)
	Options() (filter.Options, error)
	Find(id uuid.UUID) (models.Company, error)
}

// HTTPConfig tunes the HTTP handler.
type HTTPConfig struct {
	// PageSize is the page size used when a request names none.
	PageSize int
	// ReloadPerMinute limits reload requests per client address.
	ReloadPerMinute int
	// Production enables HTTPS redirects in the security middleware.
	Production bool
}

// DirectoryHandler serves the directory page and its JSON API.
type DirectoryHandler struct {
	dir       Directory
	cfg       HTTPConfig
	templates *template.Template
	logger    *zap.Logger
	// loadCtx outlives requests; a reload must not end with the request
	// that triggered it.
	loadCtx context.Context
}

// NewDirectoryHandler parses the embedded templates and builds the handler.
func NewDirectoryHandler(loadCtx context.Context, dir Directory, cfg HTTPConfig, logger *zap.Logger) (*DirectoryHandler, error) {
	if !pagination.ValidSize(cfg.PageSize) {
		cfg.PageSize = pagination.DefaultSize
	}
	if cfg.ReloadPerMinute <= 0 {
		cfg.ReloadPerMinute = 30
	}
	tpl, err := template.New("root").ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &DirectoryHandler{
		dir:       dir,
		cfg:       cfg,
		templates: tpl,
		logger:    logger.Named("http_handler"),
		loadCtx:   loadCtx,
	}, nil
}

// Routes builds the chi router.
func (h *DirectoryHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(h.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           h.cfg.Production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !h.cfg.Production,
	}).Handler)

	static, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/healthz", h.Health)
	r.Get("/", h.Page)

	limit := httprate.LimitByIP(h.cfg.ReloadPerMinute, time.Minute)
	r.With(limit).Post("/reload", h.ReloadPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", h.ListCompanies)
		r.Get("/companies/{id}", h.GetCompany)
		r.Get("/filters", h.Filters)
		r.With(limit).Post("/reload", h.Reload)
	})
	return r
}

func (h *DirectoryHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

// Health reports the directory status as JSON. It is 200 only when ready.
func (h *DirectoryHandler) Health(w http.ResponseWriter, _ *http.Request) {
	status, _ := h.dir.Status()
	code := http.StatusOK
	if status != controller.StatusReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status.String()})
}

// pageData feeds templates/directory.html.
type pageData struct {
	Title      string
	Message    string
	View       controller.View
	Search     string
	Locations  []option
	Industries []option
	Sorts      []option
	Sizes      []option
	FirstHref  string
	PrevHref   string
	NextHref   string
	LastHref   string
}

// Page renders the directory, or the loading/error placeholder.
func (h *DirectoryHandler) Page(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query(), h.cfg.PageSize)
	if err != nil {
		h.render(w, http.StatusBadRequest, "error", pageData{Title: "Error", Message: err.Error()})
		return
	}

	view, err := h.dir.Query(q)
	switch {
	case errors.Is(err, e.ErrNotReady):
		w.Header().Set("Retry-After", "1")
		h.render(w, http.StatusServiceUnavailable, "loading", pageData{Title: "Loading companies..."})
		return
	case err != nil:
		h.logger.Error("directory unavailable", zap.Error(err))
		h.render(w, http.StatusBadGateway, "error", pageData{Title: "Error", Message: e.Message(err)})
		return
	}

	eff := view.Query
	h.render(w, http.StatusOK, "directory", pageData{
		Title:      "Companies Directory",
		View:       view,
		Search:     eff.Filter.Query,
		Locations:  selectionOptions(view.Options.Locations, eff.Filter.Location),
		Industries: selectionOptions(view.Options.Industries, eff.Filter.Industry),
		Sorts:      sortOptions(eff.Sort),
		Sizes:      sizeOptions(eff.Page.Size),
		FirstHref:  pageHref(eff, 1),
		PrevHref:   pageHref(eff, eff.Page.Prev().Page),
		NextHref:   pageHref(eff, eff.Page.Next(view.Page.TotalPages).Page),
		LastHref:   pageHref(eff, view.Page.TotalPages),
	})
}

func (h *DirectoryHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
	}
}

// ReloadPage re-runs the fetch and sends the browser back to the directory.
func (h *DirectoryHandler) ReloadPage(w http.ResponseWriter, r *http.Request) {
	if err := h.dir.Load(h.loadCtx); err != nil {
		h.logger.Error("reload failed", zap.Error(err))
		h.render(w, http.StatusServiceUnavailable, "error", pageData{Title: "Error", Message: e.Message(err)})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Reload re-runs the fetch; the result is observable via /healthz.
func (h *DirectoryHandler) Reload(w http.ResponseWriter, _ *http.Request) {
	if err := h.dir.Load(h.loadCtx); err != nil {
		h.logger.Error("reload failed", zap.Error(err))
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": controller.StatusLoading.String()})
}

// ListCompanies returns one page of the filtered, sorted collection.
func (h *DirectoryHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query(), h.cfg.PageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := h.dir.Query(q)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(view))
}

// GetCompany returns a single company of the loaded collection.
func (h *DirectoryHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		problem(w, http.StatusBadRequest, "Invalid Input", "invalid company ID")
		return
	}
	company, err := h.dir.Find(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// Filters lists the selectable locations and industries.
func (h *DirectoryHandler) Filters(w http.ResponseWriter, _ *http.Request) {
	opts, err := h.dir.Options()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// ProblemDetail is an RFC 7807 error body.
type ProblemDetail struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func problem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{Title: title, Status: status, Detail: detail})
}

// respondError maps directory errors to problem responses.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		problem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, e.ErrNotFound):
		problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, e.ErrNotReady):
		w.Header().Set("Retry-After", "1")
		problem(w, http.StatusServiceUnavailable, "Loading", err.Error())
	case errors.Is(err, e.ErrDisposed):
		problem(w, http.StatusServiceUnavailable, "Unavailable", err.Error())
	case errors.Is(err, e.ErrFetchFailed):
		problem(w, http.StatusBadGateway, "Fetch Failed", e.Message(err))
	default:
		problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
