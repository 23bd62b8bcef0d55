package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/runmon/runmon/internal/tui"
)

// Router exposes a read-only HTTP view of the dashboard state. It never
// influences supervision; it only snapshots the same state the renderer reads.
// Endpoints:
//
//	GET /healthz  liveness probe
//	GET /status   JSON snapshot of all tabs
//	GET /metrics  Prometheus metrics
type Router struct {
	state *tui.State
}

func NewRouter(state *tui.State) *Router {
	return &Router{state: state}
}

// Handler returns an http.Handler powered by gin that can be mounted in any mux.
func (r *Router) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	g.GET("/healthz", r.handleHealthz)
	g.GET("/status", r.handleStatus)
	g.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr serving this router.
func NewServer(addr string, state *tui.State) *http.Server {
	r := NewRouter(state)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

type messageResp struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

type tabResp struct {
	Title    string        `json:"title"`
	Messages []messageResp `json:"messages"`
}

type statusResp struct {
	Selected int       `json:"selected"`
	Tabs     []tabResp `json:"tabs"`
}

func (r *Router) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) handleStatus(c *gin.Context) {
	snap := r.state.Snapshot()
	resp := statusResp{Selected: snap.Index, Tabs: make([]tabResp, 0, len(snap.Tabs))}
	for _, tab := range snap.Tabs {
		tr := tabResp{Title: tab.Title, Messages: make([]messageResp, 0, len(tab.Content))}
		for _, m := range tab.Content {
			tr.Messages = append(tr.Messages, messageResp{Severity: m.Severity.String(), Text: m.Text})
		}
		resp.Tabs = append(resp.Tabs, tr)
	}
	c.JSON(http.StatusOK, resp)
}
