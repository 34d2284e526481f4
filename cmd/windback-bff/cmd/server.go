package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/windbackhq/windback-bff/api"
	"github.com/windbackhq/windback-bff/guard"
	"github.com/windbackhq/windback-bff/internal/config"
	"github.com/windbackhq/windback-bff/internal/logger"
	"github.com/windbackhq/windback-bff/internal/tracing"
	"github.com/windbackhq/windback-bff/session"
	"github.com/windbackhq/windback-bff/upstream"
	"github.com/windbackhq/windback-bff/web"
)

var (
	addr       string
	backendURL string
	envName    string
	tlsCert    string
	tlsKey     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the BFF server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log := logger.New(cfg.Env)
		defer log.Sync()

		tp, err := tracing.Setup(cmd.Context(), cfg.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		handler, err := newHandler(cfg, log, reg, tp)
		if err != nil {
			return err
		}

		// No WriteTimeout: proxied calls are bounded only by the client
		// connection.
		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		if tlsCert != "" && tlsKey != "" {
			cert, err := tls.LoadX509KeyPair(tlsCert, tlsKey)
			if err != nil {
				return fmt.Errorf("failed to load TLS key pair: %w", err)
			}
			server.TLSConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
		}

		done := make(chan error, 1)
		go func() {
			var err error
			if server.TLSConfig != nil {
				err = server.ListenAndServeTLS("", "")
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner(cmd.OutOrStdout())
		log.Infow("starting server",
			"addr", cfg.HTTPAddr,
			"backend", cfg.BackendURL,
			"env", cfg.Env,
			"tls", server.TLSConfig != nil,
			"tracing", tp.Enabled(),
		)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			log.Infow("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			if err := tp.Shutdown(ctx); err != nil {
				log.Warnw("flushing traces", "error", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// loadConfig reads the environment and applies explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	// Validation runs below, once flags have been applied.
	cfg, _ := config.Load()
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.HTTPAddr = addr
	}
	if flags.Changed("backend-url") {
		cfg.BackendURL = backendURL
	}
	if flags.Changed("env") {
		cfg.Env = envName
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newHandler assembles the full HTTP surface: operational endpoints, the
// /api boundary and the guarded web app shell.
func newHandler(cfg config.Config, log logger.Sugared, reg *prometheus.Registry, tp *tracing.Provider) (http.Handler, error) {
	sessions := session.NewStore(session.Config{
		CookieName: cfg.CookieName,
		MaxAge:     cfg.SessionMaxAge,
		Secure:     cfg.IsProduction(),
	})

	up, err := upstream.New(upstream.Config{
		BaseURL:   cfg.BackendURL,
		Transport: tp.Transport(http.DefaultTransport),
		Metrics:   upstream.NewMetrics(reg),
	})
	if err != nil {
		return nil, err
	}

	a := api.New(sessions, up,
		api.WithLogger(log),
		api.WithMetrics(api.NewMetrics(reg)),
	)

	webHandler, err := web.Handler()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(api.RequestID)
	r.Use(api.AccessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(api.SecurityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Mount("/api", a.Router())

	r.With(guard.Middleware(guard.DefaultRules(), sessions)).Handle("/*", webHandler)

	return tp.Middleware(r), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":3000", "Address to listen on (overrides WINDBACK_HTTP_ADDR)")
	serveCmd.Flags().StringVar(&backendURL, "backend-url", "", "Upstream API origin (overrides BACKEND_URL)")
	serveCmd.Flags().StringVar(&envName, "env", "", "Environment: development or production (overrides WINDBACK_ENV)")
	serveCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serveCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
}
