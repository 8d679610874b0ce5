package stats

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Serve exposes the recorder metrics at /metrics on endpoint until ctx is
// done. It returns nil after a clean shutdown.
func (r *Recorder) Serve(ctx context.Context, endpoint string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", loggerMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.WritePrometheus(w)
	}))

	server := &http.Server{
		Addr:              endpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		Logger.Infof("serving metrics on http://%s/metrics", endpoint)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware logs every scrape at debug level
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
