package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/envwatch/envwatch/internal/domain/check"
	"github.com/envwatch/envwatch/internal/store"
)

// statusResponse keeps the historical field names: the *_us suffixes
// predate this service and existing dashboards key on them, even though
// the values are milliseconds.
type statusResponse struct {
	Success     bool   `json:"success"`
	Environment string `json:"environment"`
	DurationUS  int64  `json:"duration_us"`
	TimeUS      int64  `json:"time_us"`
}

type StatusHandler struct {
	Index check.Index
	Log   *zap.Logger
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	latest, err := h.Index.Latest()
	if err != nil {
		if errors.Is(err, store.ErrEmpty) {
			http.Error(w, "no checks recorded yet", http.StatusNotFound)
			return
		}
		h.Log.Error("read latest result", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statusResponse{
		Success:     latest.Success,
		Environment: latest.Environment,
		DurationUS:  latest.Duration,
		TimeUS:      latest.Timestamp,
	}); err != nil {
		h.Log.Warn("write status response", zap.Error(err))
	}
}

// BootstrapStatusServer starts the status listener in the background and
// returns the server for graceful shutdown.
func BootstrapStatusServer(addr string, index check.Index, l *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/status", &StatusHandler{Index: index, Log: l})

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		l.Info("status listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("status server error", zap.Error(err))
		}
	}()

	return srv
}
