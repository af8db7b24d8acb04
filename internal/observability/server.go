package observability

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// NewMetricsServer returns a server exposing GET /metrics on addr. The caller starts it
// with ListenAndServe and stops it through FlushTelemetry.
func NewMetricsServer(addr string) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", MetricsHandler()).Methods("GET")

	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
