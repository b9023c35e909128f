package server

import (
	"fmt"
	"net/http"

	"github.com/bryan-buckman/condominio/internal/calendar"
	"github.com/bryan-buckman/condominio/internal/database"
	"github.com/bryan-buckman/condominio/internal/feed"
	"github.com/bryan-buckman/condominio/internal/model"
	"github.com/bryan-buckman/condominio/internal/validate"
	"github.com/bryan-buckman/condominio/internal/view"
)

// --- News ---

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	var page view.NewsPage
	err := s.session.View(func(db database.Store) error {
		var err error
		page, err = view.News(r.Context(), db)
		return err
	})
	if err != nil {
		s.fail(w, r, "noticias", err)
		return
	}
	s.render(w, http.StatusOK, "news.html", s.page("noticias", map[string]any{"News": page}))
}

func (s *Server) handleNewsFeed(w http.ResponseWriter, r *http.Request) {
	var items []model.NewsItem
	err := s.session.View(func(db database.Store) error {
		var err error
		items, err = db.LatestNews(r.Context(), database.DefaultNewsLimit)
		return err
	})
	if err != nil {
		s.fail(w, r, "noticias", err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	err = feed.Write(w, feed.Info{
		Title:       "Noticias del condominio",
		Link:        absoluteURL(r, "/noticias"),
		Description: "Avisos recientes para los vecinos",
	}, items, s.today())
	if err != nil {
		s.log.WithError(err).Error("Failed to write news feed")
	}
}

// --- Calendar ---

// month reads ?mes=YYYY-MM, defaulting to the current month.
func (s *Server) month(r *http.Request) (model.YearMonth, error) {
	v := r.URL.Query().Get("mes")
	if v == "" {
		return model.Of(s.today()), nil
	}
	return calendar.ParseYearMonth(v)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ym, err := s.month(r)
	if err != nil {
		http.Error(w, "Mes inválido, use AAAA-MM", http.StatusBadRequest)
		return
	}

	var page view.CalendarPage
	err = s.session.View(func(db database.Store) error {
		var err error
		page, err = view.Calendar(r.Context(), db, ym, r.URL.Query().Get("evento"))
		return err
	})
	if err != nil {
		s.fail(w, r, "calendario", err)
		return
	}
	s.render(w, http.StatusOK, "calendar.html", s.page("calendario", map[string]any{"Calendar": page}))
}

func (s *Server) handleCalendarICS(w http.ResponseWriter, r *http.Request) {
	ym, err := s.month(r)
	if err != nil {
		http.Error(w, "Mes inválido, use AAAA-MM", http.StatusBadRequest)
		return
	}

	var events []model.CalendarEvent
	err = s.session.View(func(db database.Store) error {
		var err error
		events, err = db.ListEventsForMonth(r.Context(), ym)
		return err
	})
	if err != nil {
		s.fail(w, r, "calendario", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=calendario-%s.ics", ym))
	if err := calendar.WriteICS(w, "Calendario "+view.MonthName(ym), events, s.now()); err != nil {
		s.log.WithError(err).Error("Failed to write calendar export")
	}
}

// --- Tenants ---

func (s *Server) handleTenants(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "tenants.html", s.page("inquilinos", s.tenantDefaults(nil)))
}

// tenantDefaults pre-fills the history range with the current year.
func (s *Server) tenantDefaults(data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	now := model.Of(s.today())
	data["DefaultStart"] = model.YearMonth{Year: now.Year, Month: 1}
	data["DefaultEnd"] = now
	return data
}

func (s *Server) handleTenantLookup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}
	form := validate.TenantFormFrom(r.PostForm)

	var res view.TenantResult
	err := s.session.View(func(db database.Store) error {
		var err error
		res, err = view.TenantLookup(r.Context(), db, form, s.today())
		return err
	})
	if err != nil {
		s.fail(w, r, "inquilinos", err)
		return
	}

	status := http.StatusOK
	if res.Invalid != nil {
		status = http.StatusUnprocessableEntity
	}
	s.render(w, status, "tenants.html", s.page("inquilinos", s.tenantDefaults(map[string]any{"Lookup": res})))
}

func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulario inválido", http.StatusBadRequest)
		return
	}
	form := validate.HistoryFormFrom(r.PostForm)

	var res view.HistoryResult
	err := s.session.View(func(db database.Store) error {
		var err error
		res, err = view.PaymentHistory(r.Context(), db, form)
		return err
	})
	if err != nil {
		s.fail(w, r, "inquilinos", err)
		return
	}

	status := http.StatusOK
	if res.Invalid != nil {
		status = http.StatusUnprocessableEntity
	}
	s.render(w, status, "tenants.html", s.page("inquilinos", s.tenantDefaults(map[string]any{"History": res})))
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, path)
}
