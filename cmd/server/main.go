// Command taskhive-server serves the taskhive HTTP API and a gRPC health listener.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/taskhive/internal/concept"
	"github.com/and161185/taskhive/internal/config"
	"github.com/and161185/taskhive/internal/crypto"
	grpcserver "github.com/and161185/taskhive/internal/server/grpc"
	httpserver "github.com/and161185/taskhive/internal/server/http"
	"github.com/and161185/taskhive/internal/service"
	"github.com/and161185/taskhive/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run loads configuration, opens and migrates the store, and serves until
// SIGINT or SIGTERM. It returns the process exit code so deferred cleanup
// always runs.
func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return 2
	}
	fs := flag.NewFlagSet("taskhive-server", flag.ContinueOnError)
	cfg.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return 2
	}

	logger, err := newLogger(cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("healthAddr", cfg.GRPCHealthAddr),
		zap.String("driver", cfg.DBDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg.DBDriver, cfg.DSN, storage.Options{
		Policy: cfg.LoginPolicy(),
		Logger: logger,
	})
	if err != nil {
		logger.Error("open storage", zap.Error(err))
		return 1
	}
	defer backend.Close()

	c := concept.New(backend.Repos, concept.Options{
		Hasher:     crypto.NewHasher(crypto.DefaultParams),
		RewardSeed: cfg.RewardSeed,
	})
	svc := service.New(c, backend.Repos.Integrity, backend.Limiter, service.Options{
		SignKey:   []byte(cfg.JWTKey),
		AccessTTL: cfg.AccessTTL,
		Logger:    logger,
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpserver.New(svc, logger).Handler(),
	}
	ops := grpcserver.New(logger, grpcserver.Options{
		Ping:       backend.Ping,
		Reflection: cfg.IsDevelopment(),
	})

	lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		logger.Error("listen health", zap.Error(err))
		return 1
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("listening (http)", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("listening (grpc health)", zap.String("addr", cfg.GRPCHealthAddr))
		errCh <- ops.Serve(lis)
	}()
	probeCtx, stopProbe := context.WithCancel(ctx)
	go ops.Run(probeCtx)

	code := 0
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		code = 1
	}

	stopProbe()
	ops.Shutdown(cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return code
}
