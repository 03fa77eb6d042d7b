package places

import (
	"net/url"
	"strconv"
	"strings"
)

// Placeholders used when the provider leaves a field out.
const (
	DefaultName        = "Nama tidak tersedia"
	DefaultAddress     = "Alamat tidak tersedia"
	DefaultDescription = "Deskripsi tidak tersedia"
	DefaultThumbnail   = "https://via.placeholder.com/400x300?text=No+Image"

	mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="
)

// Place is one normalized search result. ID is the position of the item
// in the provider response and is only meaningful within one result set.
type Place struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Rating      float64 `json:"rating"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
	MapsLink    string  `json:"maps_link"`
}

// rawPlace mirrors one entry of the provider's local_results array.
type rawPlace struct {
	Title     string `json:"title"`
	Address   string `json:"address"`
	Rating    any    `json:"rating"`
	Thumbnail string `json:"thumbnail"`
	Snippet   string `json:"snippet"`
	Type      string `json:"type"`
	Link      string `json:"link"`
}

type searchResponse struct {
	LocalResults []rawPlace `json:"local_results"`
	Error        string     `json:"error"`
}

// normalize converts raw provider items into Places, assigning IDs by
// position and filling defaults for missing fields.
func normalize(items []rawPlace) []Place {
	out := make([]Place, 0, len(items))
	for i, item := range items {
		out = append(out, normalizeOne(i, item))
	}
	return out
}

func normalizeOne(id int, item rawPlace) Place {
	name := firstNonEmpty(item.Title, DefaultName)
	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = mapsSearchURL + url.QueryEscape(name)
	}
	return Place{
		ID:          id,
		Name:        name,
		Address:     firstNonEmpty(item.Address, DefaultAddress),
		Rating:      parseRating(item.Rating),
		Thumbnail:   firstNonEmpty(item.Thumbnail, DefaultThumbnail),
		Description: firstNonEmpty(item.Snippet, item.Type, DefaultDescription),
		MapsLink:    link,
	}
}

// parseRating accepts a JSON number or a numeric string; anything else is 0.
func parseRating(v any) float64 {
	switch r := v.(type) {
	case float64:
		return r
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
