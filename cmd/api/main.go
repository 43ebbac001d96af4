package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/spleiner/slussen/internal/app"
	"github.com/spleiner/slussen/internal/appconf"
	"github.com/spleiner/slussen/internal/board"
	"github.com/spleiner/slussen/internal/logging"
	"github.com/spleiner/slussen/internal/restapi"
	"github.com/spleiner/slussen/internal/sl"
	"github.com/spleiner/slussen/internal/webui"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.NewLogger(os.Stdout, cfg.Env)
	slog.SetDefault(logger)

	client := sl.NewClient(cfg.Upstream, logger)
	application := &app.Application{
		Config: cfg,
		Logger: logger,
		Board:  board.NewManager(cfg, client, logger),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      buildHandler(application),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout(cfg.Upstream),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, srv, logger, cfg); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

// parseConfig applies the optional YAML file first and lets explicit flags win.
func parseConfig(args []string) (appconf.Config, error) {
	fs := flag.NewFlagSet("slussen", flag.ContinueOnError)
	port := fs.Int("port", 0, "API server port (default 4000)")
	env := fs.String("env", "development", "Environment (development|test|production)")
	configPath := fs.String("config", "", "Path to a YAML file overriding the built-in configuration")
	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	cfg := appconf.Default()
	if *configPath != "" {
		var err error
		cfg, err = appconf.LoadFile(*configPath, cfg)
		if err != nil {
			return appconf.Config{}, err
		}
	}
	if *port != 0 {
		cfg.Port = *port
	}
	cfg.Env = appconf.EnvFlagToEnvironment(*env)

	if err := appconf.Validate(cfg); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

func buildHandler(application *app.Application) http.Handler {
	router := httprouter.New()

	api := restapi.NewRestAPI(application)
	api.SetRoutes(router)

	if application.Config.Env != appconf.Production {
		ui := &webui.WebUI{Application: application}
		ui.SetWebUIRoutes(router)
	}

	return api.Handler(router)
}

// writeTimeout leaves room for a full retry cycle against a slow upstream.
func writeTimeout(upstream appconf.Upstream) time.Duration {
	attempts := time.Duration(upstream.RetryAttempts)
	return attempts*upstream.RequestTimeout + (attempts-1)*upstream.RetryDelay + 5*time.Second
}

func run(ctx context.Context, srv *http.Server, logger *slog.Logger, cfg appconf.Config) error {
	errs := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", srv.Addr,
			"env", cfg.Env.String(),
			"sites", cfg.Upstream.Sites)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
