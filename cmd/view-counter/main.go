package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tckz/view-counter/internal/config"
	"github.com/tckz/view-counter/internal/counter"
	"github.com/tckz/view-counter/internal/handler"
	"github.com/tckz/view-counter/internal/log"
	"github.com/tckz/view-counter/internal/metrics"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
	cfg     config.Config
)

var (
	optShutdownTimeout = flag.Duration("shutdown-timeout", 10*time.Second, "Time to wait for in-flight requests on shutdown")
)

func init() {
	godotenv.Load()

	cfg = config.FromEnv()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(cfg.LogLevel), log.WithEncoding(cfg.LogEncoding))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("*** Validate: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		logger.Fatalf("*** run: %v", err)
	}
}

func run(ctx context.Context) error {
	cnt, err := counter.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("counter.New: %w", err)
	}
	defer cnt.Close()

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("metrics.New: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, handler.WithAccessLog(logger, handler.New(cnt, logger, m)))
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.With(zap.String("backend", cfg.Backend), zap.String("table", cfg.TableName)).
			Infof("listen=%s, path=%s", cfg.Listen, cfg.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Infof("Shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), *optShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("srv.Shutdown: %w", err)
		}
		return nil
	})

	return eg.Wait()
}
