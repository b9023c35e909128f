package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/bryan-buckman/condominio/internal/database"
	"github.com/bryan-buckman/condominio/internal/session"
)

// statusData collects what the database page shows.
func (s *Server) statusData(r *http.Request, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	data["Loads"] = s.loads.Load()
	data["DatabaseURL"] = s.opts.DatabaseURL
	data["MaxUpload"] = int(s.opts.MaxUploadBytes)

	err := s.session.View(func(db database.Store) error {
		stats, err := db.Stats(r.Context())
		if err != nil {
			return err
		}
		data["Stats"] = stats
		return nil
	})
	if err != nil && !errors.Is(err, session.ErrNotLoaded) {
		s.log.WithError(err).Warn("Failed to count rows")
	}
	return s.page("db", data)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "status.html", s.statusData(r, nil))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.render(w, http.StatusRequestEntityTooLarge, "status.html", s.statusData(r, map[string]any{
				"Error": "El archivo excede el tamaño máximo permitido.",
			}))
			return
		}
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("archivo")
	if err != nil {
		s.render(w, http.StatusBadRequest, "status.html", s.statusData(r, map[string]any{
			"Error": "Seleccione un archivo de base de datos.",
		}))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "No se pudo leer el archivo", http.StatusBadRequest)
		return
	}

	ev, err := s.session.LoadBytes(r.Context(), header.Filename, image)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "No se pudo cargar la base de datos."
		if errors.Is(err, database.ErrCorruptDatabase) {
			status = http.StatusUnprocessableEntity
			msg = "El archivo no es una base de datos válida. Se conserva la base de datos anterior."
		}
		s.log.WithError(err).WithField("file", header.Filename).Warn("Upload rejected")
		s.render(w, status, "status.html", s.statusData(r, map[string]any{"Error": msg}))
		return
	}

	s.render(w, http.StatusOK, "status.html", s.statusData(r, map[string]any{
		"Notice": "Base de datos cargada: " + ev.Source,
	}))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ev, err := s.session.Load(r.Context(), s.opts.DatabaseURL)
	if err != nil {
		s.log.WithError(err).Error("Reload failed")
		s.render(w, http.StatusBadGateway, "status.html", s.statusData(r, map[string]any{
			"Error": "No se pudo recargar la base de datos. Se conserva la base de datos anterior.",
		}))
		return
	}

	notice := "Base de datos recargada desde " + ev.Source
	if ev.Fallback {
		notice = "La fuente principal falló; se cargó la base de datos de ejemplo."
	}
	s.render(w, http.StatusOK, "status.html", s.statusData(r, map[string]any{"Notice": notice}))
}
