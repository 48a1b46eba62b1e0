package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Domenick1991/parkinglot/api"
	"github.com/Domenick1991/parkinglot/config"
	"github.com/gorilla/handlers"
	httpSwagger "github.com/swaggo/http-swagger"
)

const swaggerSpec = "/swagger/parking.swagger.json"

// Run serves the REST API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, services api.Services) error {
	srv := NewServer(cfg, services)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http: listening on %s", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewServer(cfg *config.Config, services api.Services) *http.Server {
	return &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      NewHandler(cfg.HTTP, services),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
}

// NewHandler mounts the gin router with swagger docs, CORS and the optional
// combined access log around it.
func NewHandler(cfg config.HTTPConfig, services api.Services) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(services))

	if cfg.SwaggerDir != "" {
		fs := http.FileServer(http.Dir(cfg.SwaggerDir))
		mux.Handle("/swagger/", http.StripPrefix("/swagger/", fs))
		mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL(swaggerSpec)))
	}

	var handler http.Handler = mux
	if len(cfg.AllowedOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
			handlers.AllowCredentials(),
		)(handler)
	}
	if cfg.AccessLog {
		handler = handlers.CombinedLoggingHandler(os.Stdout, handler)
	}
	return handler
}
