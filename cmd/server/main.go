// Command barkcard-server hosts the BarkCard backend: accounts, email
// verification and the live document store, served over gRPC.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/barkcard/internal/api"
	"github.com/and161185/barkcard/internal/changefeed"
	"github.com/and161185/barkcard/internal/config"
	"github.com/and161185/barkcard/internal/limiter"
	"github.com/and161185/barkcard/internal/migrate"
	"github.com/and161185/barkcard/internal/repository"
	"github.com/and161185/barkcard/internal/repository/memory"
	"github.com/and161185/barkcard/internal/repository/postgres"
	grpcserver "github.com/and161185/barkcard/internal/server/grpc"
	"github.com/and161185/barkcard/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// backend is the storage wiring chosen by -store.
type backend struct {
	accounts repository.AccountRepository
	docs     repository.DocumentRepository
	lim      limiter.Limiter
	close    func()
}

// main loads configuration, prepares storage and serves gRPC until SIGINT/SIGTERM.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal("dotenv", zap.Error(err))
	}
	cfg, err := config.LoadServer(os.Args[1:])
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := changefeed.New()
	defer hub.Close()

	be, err := openBackend(ctx, cfg, hub, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	defer be.close()

	// Services
	key := []byte(cfg.JWTKey)
	authSvc := service.NewAuthService(be.accounts, be.docs, service.NewLogMailer(logger),
		key, cfg.AccessTTL, be.lim, logger)
	docSvc := service.NewDocuments(be.docs, hub, logger)

	// gRPC server with interceptors
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(key),
		),
		grpc.ChainStreamInterceptor(
			grpcserver.RecoverStream(logger),
			grpcserver.LoggingStream(logger),
			grpcserver.AuthStream(key),
		),
	}
	if !cfg.Plaintext {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	}
	s := grpc.NewServer(opts...)
	api.RegisterBackendServer(s, grpcserver.New(authSvc, docSvc))

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	if cfg.Reflection {
		reflection.Register(s)
	}

	// Listen
	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", !cfg.Plaintext))
		errCh <- s.Serve(lis)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		hs.Shutdown()
		// Open watch streams end when the hub closes.
		hub.Close()
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// openBackend wires repositories for cfg.Store. In postgres mode document
// changes reach the hub through LISTEN; in memory mode the repository
// publishes them directly.
func openBackend(ctx context.Context, cfg config.Server, hub *changefeed.Hub, log *zap.Logger) (*backend, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory storage, data is lost on exit")
		return &backend{
			accounts: memory.NewAccountRepo(),
			docs:     memory.NewDocumentRepo(hub.Publish),
			lim:      limiter.Nop{},
			close:    func() {},
		}, nil
	}

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}
	if v, err := migrate.Version(ctx, cfg.DSN); err == nil {
		log.Info("schema ready", zap.Int64("version", v))
	}

	db, pool, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}

	listener := postgres.NewListener(pool, log)
	go func() {
		err := listener.Run(ctx, func(c postgres.Change) { hub.Publish(c.Collection, c.ID) })
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("change listener stopped", zap.Error(err))
		}
	}()

	return &backend{
		accounts: postgres.NewAccountRepo(db),
		docs:     postgres.NewDocumentRepo(db),
		lim:      limiter.NewPG(pool, cfg.LimiterWindow, cfg.LimiterMaxFails, cfg.LimiterBlockFor),
		close:    db.Close,
	}, nil
}
