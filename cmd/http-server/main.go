package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simple-shop/internal/auth"
	"simple-shop/internal/config"
	"simple-shop/internal/database"
	grpcHandler "simple-shop/internal/handler/grpc"
	handler "simple-shop/internal/handler/http"
	"simple-shop/internal/events"
	"simple-shop/internal/logger"
	middleware_grpc "simple-shop/internal/middleware/grpc"
	"simple-shop/internal/model"
	"simple-shop/internal/repository"
	"simple-shop/internal/router"
	"simple-shop/internal/service"
	"simple-shop/internal/storage"
	"simple-shop/internal/tracer"
	"simple-shop/internal/version"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

func main() {
	globalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := logger.Instance()
	cfg := config.Instance()

	log.Info(cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	// Initialize telemetry (OpenTelemetry + Pyroscope)
	shutdown, err := tracer.Instance(globalCtx, cfg)
	if err != nil {
		log.Warn("Telemetry disabled", slog.String("error", err.Error()))
	}
	defer shutdown()

	db, err := database.Instance(globalCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Error("Failed to connect to MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(ctx)
	}()

	if err := repository.EnsureIndexes(globalCtx, db.Database); err != nil {
		log.Error("Failed to create indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	images, err := newImageStore(globalCtx, cfg)
	if err != nil {
		log.Error("Failed to initialise image storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	publisher := newPublisher(cfg)
	defer publisher.Close()

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Error("Failed to create token issuer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	hasher := auth.NewHasher(auth.DefaultCost)

	// Wiring
	accountRepo := repository.NewAccountRepository(db.Database)
	categoryRepo := repository.NewCategoryRepository(db.Database)
	productRepo := repository.NewProductRepository(db.Database)

	customerService := service.NewAccountService(model.RoleCustomer, accountRepo, hasher, tokens, publisher)
	sellerService := service.NewAccountService(model.RoleSeller, accountRepo, hasher, tokens, publisher)
	categoryService := service.NewCategoryService(categoryRepo, publisher)
	productService := service.NewProductService(productRepo, categoryRepo, images, publisher, cfg.MaxUploadBytes)
	healthService := service.NewHealthService(db.Client)

	h := router.New(router.Handlers{
		Auth:     handler.NewAuthHandler(customerService, sellerService),
		Category: handler.NewCategoryHandler(categoryService),
		Product:  handler.NewProductHandler(productService, cfg.PublicBaseURL, cfg.TrustProxyHeaders),
		Image:    handler.NewImageHandler(images),
		Health:   handler.NewHealthHandler(healthService),
	}, router.Options{
		Tokens:         tokens,
		AuthRequired:   cfg.AuthRequired,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return globalCtx },
	}

	var grpcServer *grpc.Server
	if cfg.GrpcPort != "" {
		grpcServer = startGRPC(globalCtx, cfg, healthService)
	}

	go func() {
		log.Info("HTTP server running", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-globalCtx.Done()
	logger.Info(context.Background(), "Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", slog.String("error", err.Error()))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	log.Info("Server exited cleanly")
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.ImageStorage == config.StorageS3 {
		return storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
	}
	return storage.NewLocalStore(cfg.UploadDir)
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Instance().Warn("Missing KAFKA_BROKERS will skip publishing events")
		return events.NopPublisher{}
	}
	logger.Instance().Info("Publishing events to Kafka",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.KafkaTopic),
	)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

// startGRPC serves grpc.health.v1 on GRPC_PORT. A listen failure is logged and
// leaves the HTTP server running.
func startGRPC(ctx context.Context, cfg *config.Config, health *service.HealthService) *grpc.Server {
	lis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
	if err != nil {
		logger.Error(ctx, "failed to listen", slog.String("error", err.Error()))
		return nil
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(middleware_grpc.UnaryTracingInterceptor()),
	)
	reporter := grpcHandler.NewHealthReporter(health, cfg.AppName)
	reporter.Register(grpcServer)
	reflection.Register(grpcServer)

	go reporter.Run(ctx, 15*time.Second)
	go func() {
		logger.Info(ctx, "gRPC server running", slog.String("port", cfg.GrpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error(ctx, "failed to serve", slog.String("error", err.Error()))
		}
	}()
	return grpcServer
}
