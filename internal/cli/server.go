package cli

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Autofarm/internal/orchestrator"
	"github.com/shaiso/Autofarm/internal/worker"
)

// StatusSource — источник снимков состояния (реализуется *orchestrator.Orchestrator).
// Сводка считается по тому же снимку, что и список воркеров.
type StatusSource interface {
	Snapshot() []worker.Status
}

// NewMux собирает HTTP mux фермы: /healthz, /metrics и /status.
func NewMux(src StatusSource) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/status", statusHandler(src))
	return mux
}

func statusHandler(src StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			var er errorResponse
			er.Error.Code = "METHOD_NOT_ALLOWED"
			er.Error.Message = "only GET is supported"
			writeJSON(w, http.StatusMethodNotAllowed, er)
			return
		}

		workers := src.Snapshot()
		writeJSON(w, http.StatusOK, StatusResponse{
			Summary: orchestrator.Summarize(workers),
			Workers: workers,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
