package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/hikari-games/foxden-server/internal/gateway"
	"github.com/hikari-games/foxden-server/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Dispatcher *gateway.Dispatcher

	// StartedAt stamps the /version response; clients compare it to
	// detect a server restart
	StartedAt time.Time

	// StaticDir serves the game client when non-empty
	StaticDir string
}

// NewRouter creates a new router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler)

	r.Use(recoveryMiddleware)

	// The websocket endpoint skips request logging; a line per upgrade
	// is enough and the connection outlives the request
	r.HandleFunc("/ws", gateway.Handler(cfg.Dispatcher, cfg.Logger))

	plain := r.NewRoute().Subrouter()
	plain.Use(loggingMiddleware)

	plain.HandleFunc("/version", versionHandler(cfg.StartedAt)).Methods(http.MethodGet)
	plain.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.StaticDir != "" {
		plain.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

func versionHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		// The client compares this as an opaque string, so it is sent
		// as one rather than a JSON number
		_ = json.NewEncoder(w).Encode(map[string]string{
			"version": strconv.FormatInt(startedAt.UnixMilli(), 10),
		})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
