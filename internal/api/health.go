package api

import (
	"log/slog"
	"net/http"

	"github.com/campuscare/campuscare/internal/knowledge"
)

// health is a liveness probe. Returns 200 OK if the process is alive.
func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness returns a readiness probe handler. When a knowledge store is
// configured it verifies the backing file loads; the instruction-only
// variant is ready as soon as the process is up.
func readiness(store *knowledge.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if _, err := store.Entries(r.Context()); err != nil {
				logger.Error("readiness check failed", "error", err)
				http.Error(w, "knowledge base not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
}
