package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/sathiya272004/my-ecommerce-app/internal/cache"
	"github.com/sathiya272004/my-ecommerce-app/internal/gateway"
	h "github.com/sathiya272004/my-ecommerce-app/internal/http"
	"github.com/sathiya272004/my-ecommerce-app/internal/poller"
	"github.com/sathiya272004/my-ecommerce-app/internal/publisher"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
	"github.com/sathiya272004/my-ecommerce-app/internal/service"
	"github.com/sathiya272004/my-ecommerce-app/pkg/config"
	"github.com/sathiya272004/my-ecommerce-app/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		zl.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			zl.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()
	if err := repository.CreateIndexes(ctx, mongoDB); err != nil {
		zl.Fatal("failed to create indexes", zap.Error(err))
	}
	zl.Info("connected to mongodb", zap.String("database", cfg.Mongo.DBName))

	cartRepo := repository.NewCartRepository(mongoDB)
	productRepo := repository.NewProductRepository(mongoDB)
	addressRepo := repository.NewAddressRepository(mongoDB)
	orderRepo := repository.NewOrderRepository(mongoDB)
	outboxRepo := repository.NewOutboxRepository(mongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zl.Fatal("redis connection failed", zap.Error(err))
	}
	totalsCache := cache.NewRedisCache(redisClient, cfg.Checkout.TotalsHintTTL)

	razorpay := gateway.NewRazorpayClient(gateway.Config{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		BaseURL:   cfg.Razorpay.BaseURL,
		Timeout:   cfg.Razorpay.Timeout,
	}, &http.Client{
		Timeout:   cfg.Razorpay.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, zl.Named("razorpay"))

	// Create handler wrappers
	productHandler := service.NewProductHandler(productRepo, cfg.RequestTimeout)
	paymentHandler := service.NewPaymentHandler(razorpay, cfg.Razorpay.Currency, cfg.Razorpay.Timeout)

	cartService := service.NewCartService(cartRepo, productHandler, totalsCache, zl.Named("cart"), cfg.RequestTimeout)
	checkoutService := service.NewCheckoutService(cartService, addressRepo, totalsCache, zl.Named("checkout"), cfg.RequestTimeout)
	orderService := service.NewOrderService(orderRepo, cartRepo, outboxRepo, paymentHandler, totalsCache, zl.Named("orders"), cfg.RequestTimeout)
	addressService := service.NewAddressService(addressRepo, zl.Named("addresses"), cfg.RequestTimeout)

	// Background workers
	outboxPoller := publisher.NewOutboxPoller(outboxRepo, orderRepo, cfg.Checkout.StalePendingAfter, cfg.Kafka.Topic, zl.Named("outbox"), cfg.Kafka.Brokers...)
	hintPoller := poller.NewPoller(totalsCache, cfg.Kafka.Topic, cfg.Kafka.GroupID, zl.Named("poller"), cfg.Kafka.Brokers...)

	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		outboxPoller.Run(ctx)
	}()
	go func() {
		defer workers.Done()
		hintPoller.Run(ctx)
	}()

	// HTTP API
	router := h.NewRouter(h.Handlers{
		Cart:      h.NewCartHandler(cartService, cfg.RequestTimeout),
		Addresses: h.NewAddressHandler(addressService, cfg.RequestTimeout),
		Checkout:  h.NewCheckoutHandler(checkoutService, orderService, cfg.RequestTimeout+cfg.Razorpay.Timeout),
		Orders:    h.NewOrdersHandler(orderService, cfg.RequestTimeout),
	}, []byte(cfg.Auth.JWTSecret), cfg.RequestTimeout+cfg.Razorpay.Timeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + cfg.Razorpay.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("http server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server error", zap.Error(err))
		}
	}()

	// gRPC ops port: health and reflection
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		zl.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	go func() {
		zl.Info("grpc server starting", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			zl.Fatal("grpc server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	zl.Info("shutting down storefront")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	workers.Wait()
	outboxPoller.Close()
	hintPoller.Close()

	zl.Info("storefront stopped")
}
