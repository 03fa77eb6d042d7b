// internal/app/feed_handler.go
package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"wisatakota/internal/places"
)

// FeedHandler exports a cached result set as RSS 2.0, resolving the set
// the same way GET /search does.
type FeedHandler struct {
	resolve func(r *http.Request) (CacheEntry, string, bool)
	log     *zap.Logger
}

func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entry, cacheID, ok := h.resolve(r)
	if !ok {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}

	rss, err := BuildFeed(entry, cacheID).ToRss()
	if err != nil {
		h.log.Error("Failed to generate RSS", zap.String("kota", entry.City), zap.Error(err))
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}

// BuildFeed turns a cache entry into a feed, one item per place in
// rating order.
func BuildFeed(entry CacheEntry, cacheID string) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Tempat wisata di %s", entry.City),
		Link:        &feeds.Link{Href: "/search?kota=" + url.QueryEscape(entry.City)},
		Description: places.Query(entry.City),
		Author:      &feeds.Author{Name: "Wisata Kota"},
		Created:     entry.CreatedAt,
	}

	for _, p := range TopRated(entry.Results, len(entry.Results)).Entries {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          itemGUID(cacheID, p.ID),
			Title:       p.Name,
			Link:        &feeds.Link{Href: p.MapsLink},
			Description: summarize(p),
			Created:     entry.CreatedAt,
		})
	}
	return feed
}

// itemGUID derives a stable item id from the entry id and position.
func itemGUID(cacheID string, id int) string {
	hash := sha256.Sum256([]byte(cacheID + "#" + strconv.Itoa(id)))
	return hex.EncodeToString(hash[:])
}

func summarize(p places.Place) string {
	return fmt.Sprintf("%s | Rating %.1f | %s", p.Address, p.Rating, p.Description)
}
