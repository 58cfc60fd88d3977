// Package httpapi exposes the custody ledger to collaborators: the four
// state-changing entry points plus the read-only queries the relay and
// operators poll.
package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/openbridge-io/bridge-core/internal/bridge"
)

type Server struct {
	ledger *bridge.Ledger
	mux    *http.ServeMux
	log    *zap.SugaredLogger
}

func NewServer(ledger *bridge.Ledger, log *zap.SugaredLogger) http.Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		ledger: ledger,
		mux:    http.NewServeMux(),
		log:    log,
	}

	s.mux.HandleFunc("/healthz", requireMethod(http.MethodGet, s.handleHealth))

	s.mux.HandleFunc("/bridge/lock", requireMethod(http.MethodPost, s.handleLock))
	s.mux.HandleFunc("/bridge/release", requireMethod(http.MethodPost, s.handleRelease))
	s.mux.HandleFunc("/bridge/mint", requireMethod(http.MethodPost, s.handleMint))
	s.mux.HandleFunc("/bridge/burn", requireMethod(http.MethodPost, s.handleBurn))

	s.mux.HandleFunc("/bridge/locked", requireMethod(http.MethodGet, s.handleLocked))
	s.mux.HandleFunc("/bridge/tokens", requireMethod(http.MethodGet, s.handleTokens))
	s.mux.HandleFunc("/bridge/fees", requireMethod(http.MethodGet, s.handleFees))

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
