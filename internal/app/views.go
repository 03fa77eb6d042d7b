package app

import (
	"bytes"
	"cmp"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"slices"

	"wisatakota/internal/places"
)

//go:embed templates/*.html
var templateFS embed.FS

// TopN is the number of places shown in the rating chart.
const TopN = 10

// Page names.
const (
	pageHome   = "home"
	pageAbout  = "about"
	pageSearch = "search"
	pageDetail = "detail"
)

// RatingChart is the top-rated slice of a result set, plus the parallel
// label/value series the chart script consumes.
type RatingChart struct {
	Entries []places.Place
	Labels  []string
	Values  []float64
}

// TopRated ranks results by rating, highest first, keeping provider
// order among ties, and returns at most n of them. results is not
// modified.
func TopRated(results []places.Place, n int) RatingChart {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b places.Place) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	chart := RatingChart{
		Entries: ranked,
		Labels:  make([]string, 0, len(ranked)),
		Values:  make([]float64, 0, len(ranked)),
	}
	for _, p := range ranked {
		chart.Labels = append(chart.Labels, p.Name)
		chart.Values = append(chart.Values, p.Rating)
	}
	return chart
}

// pageData is the single view model shared by all templates.
type pageData struct {
	ActivePage string
	Message    string
	City       string
	Places     []places.Place
	Chart      RatingChart
	Place      *places.Place
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageHome, pageAbout, pageSearch, pageDetail} {
		t, err := template.New("layout").ParseFS(templateFS, "templates/layout.html")
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into a buffer and writes it with status.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data pageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
