// Package server provides the HTTP server and handlers.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/bryan-buckman/condominio/internal/logger"
	"github.com/bryan-buckman/condominio/internal/session"
	"github.com/bryan-buckman/condominio/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options configures a Server.
type Options struct {
	Addr           string         // listen address, e.g. ":8080"
	DatabaseURL    string         // reloaded by POST /db/recargar
	MaxUploadBytes int64          // limit of POST /db
	Location       *time.Location // defines the current month
}

// Server is the main HTTP server.
type Server struct {
	session   *session.Session
	opts      Options
	log       logrus.FieldLogger
	router    chi.Router
	templates *template.Template
	now       func() time.Time
	loads     atomic.Int64
	httpSrv   *http.Server
}

// New creates a new server.
func New(sess *session.Session, opts Options, log logrus.FieldLogger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"date":  view.FormatDate,
		"month": view.MonthName,
		"bytes": func(n int) string { return humanize.Bytes(uint64(n)) },
		"since": humanize.Time,
		"comma": humanize.Comma,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	s := &Server{
		session:   sess,
		opts:      opts,
		log:       log,
		templates: tmpl,
		now:       time.Now,
	}
	if _, ok := sess.Current(); ok {
		s.loads.Store(1)
	}
	sess.Subscribe(func(session.LoadEvent) { s.loads.Add(1) })
	s.setupRoutes()
	s.httpSrv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Serve static files.
	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/noticias", http.StatusFound)
	})
	r.Get("/healthz", s.handleHealth)

	r.Get("/noticias", s.handleNews)
	r.Get("/noticias.xml", s.handleNewsFeed)

	r.Get("/calendario", s.handleCalendar)
	r.Get("/calendario.ics", s.handleCalendarICS)

	r.Route("/inquilinos", func(r chi.Router) {
		r.Get("/", s.handleTenants)
		r.Post("/consulta", s.handleTenantLookup)
		r.Post("/historial", s.handlePaymentHistory)
	})

	r.Route("/db", func(r chi.Router) {
		r.Get("/", s.handleStatus)
		r.Post("/", s.handleUpload)
		r.Post("/recargar", s.handleReload)
	})

	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until Shutdown is called. It returns nil at once if
// Shutdown already ran.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpSrv.Addr).Info("Server starting")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session.Current(); !ok {
		http.Error(w, "database not loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// --- Helpers ---

// today is the current time in the configured time zone.
func (s *Server) today() time.Time {
	return s.now().In(s.opts.Location)
}

// page wraps handler data with what the layout needs.
func (s *Server) page(active string, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	data["Active"] = active
	if ev, ok := s.session.Current(); ok {
		data["Source"] = ev
	}
	return data
}

// render executes name into a buffer so a template failure can still
// produce a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.WithError(err).WithField("template", name).Error("Template error")
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// fail renders an error page for err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, active string, err error) {
	status := http.StatusInternalServerError
	msg := "Ocurrió un error al consultar la base de datos."
	if errors.Is(err, session.ErrNotLoaded) {
		status = http.StatusServiceUnavailable
		msg = "La base de datos no está disponible. Cárguela desde la sección Base de datos."
	}
	s.log.WithError(err).WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
	}).Error("Request failed")
	s.render(w, status, "error.html", s.page(active, map[string]any{"Message": msg}))
}
