package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"wisatakota/internal/places"
)

// ErrValidation is returned when a search is submitted without a city.
var ErrValidation = errors.New("city is required")

// User-facing messages.
const (
	msgCityRequired = "Masukkan nama kota terlebih dahulu."
	msgNotFound     = "Data tidak ditemukan."
)

func msgProviderFailed(err error) string {
	return fmt.Sprintf("Gagal mengambil data API: %v", err)
}

func msgNoResults(city string) string {
	return fmt.Sprintf("Tidak ditemukan hasil untuk kota '%s'.", city)
}

// validateCity trims raw and rejects an empty result.
func validateCity(raw string) (string, error) {
	city := strings.TrimSpace(raw)
	if city == "" {
		return "", ErrValidation
	}
	return city, nil
}

func (s *Server) render(w http.ResponseWriter, page string, data pageData) {
	if err := s.views.Render(w, http.StatusOK, page, data); err != nil {
		s.log.Error("Failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) renderResults(w http.ResponseWriter, city string, results []places.Place) {
	s.render(w, pageSearch, pageData{
		ActivePage: pageSearch,
		City:       city,
		Places:     results,
		Chart:      TopRated(results, TopN),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/home", http.StatusFound)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, pageHome, pageData{ActivePage: pageHome})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, pageAbout, pageData{ActivePage: pageAbout})
}

// currentEntry resolves the result set a GET request refers to: a cached
// search for the kota query parameter if there is one, else the entry
// bound to the session.
func (s *Server) currentEntry(r *http.Request) (CacheEntry, string, bool) {
	cacheID := s.sessions.Load(r).CacheID
	if kota := strings.TrimSpace(r.URL.Query().Get("kota")); kota != "" {
		if id, ok := s.cache.FindByCity(kota); ok {
			cacheID = id
		}
	}
	entry, ok := s.cache.Lookup(cacheID)
	return entry, cacheID, ok
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := s.currentEntry(r)
	if !ok {
		s.render(w, pageSearch, pageData{ActivePage: pageSearch})
		return
	}
	s.renderResults(w, entry.City, entry.Results)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	city, err := validateCity(r.PostFormValue("kota"))
	if err != nil {
		s.render(w, pageSearch, pageData{ActivePage: pageSearch, Message: msgCityRequired})
		return
	}

	results, err := s.search.SearchCity(r.Context(), city)
	if err != nil {
		providerRequestsTotal.WithLabelValues("error").Inc()
		s.log.Warn("Search failed", zap.String("kota", city), zap.Error(err))
		s.render(w, pageSearch, pageData{ActivePage: pageSearch, City: city, Message: msgProviderFailed(err)})
		return
	}
	if len(results) == 0 {
		providerRequestsTotal.WithLabelValues("empty").Inc()
		s.render(w, pageSearch, pageData{ActivePage: pageSearch, City: city, Message: msgNoResults(city)})
		return
	}
	providerRequestsTotal.WithLabelValues("ok").Inc()

	cacheID := s.cache.Insert(city, results)
	if err := s.sessions.Save(w, SessionState{CacheID: cacheID, LastCity: city}); err != nil {
		s.log.Error("Failed to save session", zap.Error(err))
	}
	s.log.Info("Search cached",
		zap.String("kota", city),
		zap.String("cache_id", cacheID),
		zap.Int("results", len(results)))

	s.renderResults(w, city, results)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	notFound := pageData{ActivePage: pageSearch, Message: msgNotFound}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.render(w, pageDetail, notFound)
		return
	}

	sess := s.sessions.Load(r)
	entry, ok := s.cache.Lookup(sess.CacheID)
	if !ok || id < 0 || id >= len(entry.Results) {
		s.render(w, pageDetail, notFound)
		return
	}

	// the entry's own city labels the page; a kota query naming another
	// city must not relabel this entry's places
	place := entry.Results[id]
	s.render(w, pageDetail, pageData{ActivePage: pageSearch, City: entry.City, Place: &place})
}
