package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// maxEventBytes bounds the body of a resolve request.
const maxEventBytes = 1 << 20

// Handler returns the HTTP surface of the app: a health check and a resolve
// endpoint accepting an Event as a JSON body.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("POST /resolve", a.resolveHandler)
	return mux
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) resolveHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBytes)
	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("event exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("invalid event: %v", err), http.StatusBadRequest)
		return
	}
	for i, tr := range ev.Triggers {
		if tr.ID == "" {
			http.Error(w, fmt.Sprintf("invalid event: trigger #%d: id is required", i), http.StatusBadRequest)
			return
		}
	}

	results := a.Resolve(r.Context(), &ev)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(results); err != nil {
		a.logger.Error("Failed to encode resolve response.", "error", err)
	}
}

// Serve runs the HTTP server on the configured port until ctx is cancelled,
// then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	if a.config.Port <= 0 {
		return errors.New("serve requires a positive port")
	}
	addr := fmt.Sprintf(":%d", a.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return a.withLogger(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🩺 Server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info("🩺 Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-errCh
	a.logger.Debug("Server shut down gracefully.")
	return nil
}
