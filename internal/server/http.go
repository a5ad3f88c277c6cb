package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsonwriter "github.com/scrapter/scrapter-front/internal/json"
	"github.com/scrapter/scrapter-front/internal/log"
)

// HTTPServer owns the listener lifecycle for the dashboard front. Routing
// and middleware are assembled elsewhere; this type only starts, serves,
// and drains.
type HTTPServer struct {
	addr   string
	server *http.Server
}

// NewHTTPServer wraps a fully built handler for serving on addr
func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves requests until Stop is called or the listener fails. A
// shutdown-initiated close is not an error.
func (s *HTTPServer) Start() error {
	log.LogInfoWithFields("http", "Listening", map[string]any{
		"addr": s.addr,
	})

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop drains in-flight requests, giving up when ctx expires
func (s *HTTPServer) Stop(ctx context.Context) error {
	log.LogInfoWithFields("http", "Draining connections", map[string]any{
		"addr": s.addr,
	})
	return s.server.Shutdown(ctx)
}

// NewHealthHandler answers liveness checks from load balancers and uptime
// monitors. It reports process liveness only; storage and backend health are
// deliberately not consulted here.
func NewHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = jsonwriter.Write(w, map[string]string{"status": "ok"})
	})
}
