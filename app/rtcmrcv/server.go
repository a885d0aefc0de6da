/*------------------------------------------------------------------------------
* server.go : status server
*
* notes  : GET /metrics  prometheus metrics
*          GET /stats    receiver status (json)
*          GET /healthz  ok while the receiver runs
*-----------------------------------------------------------------------------*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rtcmgo"
)

/* trace writer for the access log */
type traceWriter struct {
	level int
}

func (w traceWriter) Write(p []byte) (int, error) {
	rtcmgo.Tracet(w.level, "%s", p)
	return len(p), nil
}

/* trace logger for recovered panics */
type traceLogger struct{}

func (traceLogger) Println(v ...interface{}) {
	rtcmgo.Tracet(1, "%s", fmt.Sprintln(v...))
}

func newRouter(rcv *Receiver, g prometheus.Gatherer) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/stats", handleStats(rcv)).Methods("GET")
	r.HandleFunc("/healthz", handleHealth()).Methods("GET")

	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(traceLogger{}))
	return recovery(handlers.LoggingHandler(traceWriter{level: 4}, r))
}

func handleStats(rcv *Receiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rcv.Status()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	}
}

/* serve status until ctx is done */
func serveStatus(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()
	rtcmgo.Tracet(3, "status server: addr=%s\n", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
