package monitor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// HubStats is the hub part of the stats response
type HubStats struct {
	Clients int    `json:"clients"`
	Dropped uint64 `json:"dropped"`
}

type statsResponse struct {
	Stream Stats    `json:"stream"`
	Hub    HubStats `json:"hub"`
}

// NewRouter serves the record stream at /ws/records and the counters at
// /api/stats
func NewRouter(m *Monitor, hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, statsResponse{
				Stream: m.Stats(),
				Hub:    HubStats{Clients: hub.Clients(), Dropped: hub.Dropped()},
			})
		})
	})

	r.Route("/ws", func(r chi.Router) {
		r.Get("/records", hub.ServeHTTP)
	})

	return r
}
