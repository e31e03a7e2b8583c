package gateway

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

//go:embed home.html
var homeHTML string

var homeTmpl = template.Must(template.New("home").Parse(homeHTML))

func (g *Gateway) routes() http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowOriginRequestFunc: func(r *http.Request, origin string) bool { return true },
		AllowedMethods:         []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:         []string{"*"},
		AllowCredentials:       false,
	})
	r.Use(c.Handler)

	r.Get("/", g.handleHome)
	r.Get("/health", handleHealth)
	r.Get("/sse", g.handleSSE)
	r.Post("/messages", g.handleMessage)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (g *Gateway) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = homeTmpl.Execute(w, map[string]any{
		"PublicURL": g.opts.PublicURL,
		"Streams":   g.StreamCount(),
		"Sessions":  g.sessions.Len(),
	})
}
