// Package app собирает трекер заказов из конфигурации и запускает его серверы.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	healthcheck "github.com/vladislavdragonenkov/ordertracker/internal/health"
	"github.com/vladislavdragonenkov/ordertracker/internal/metrics"
	"github.com/vladislavdragonenkov/ordertracker/internal/tracker"
	grpcapi "github.com/vladislavdragonenkov/ordertracker/internal/transport/grpc"
	httpapi "github.com/vladislavdragonenkov/ordertracker/internal/transport/http"
	"github.com/vladislavdragonenkov/ordertracker/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает REST API, gRPC API и сервер метрик и блокируется до отмены ctx
// или падения одного из серверов. При отмене ctx возвращает ctx.Err().
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	if err := cfg.Validate(); err != nil {
		return err
	}

	backend, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.close(logger)

	publisher, producer := initKafkaPublisher(cfg, logger)
	defer closeKafkaProducer(producer, logger)

	opts := []tracker.Option{
		tracker.WithLogger(logger.WithField("layer", "tracker")),
		tracker.WithMetrics(metrics.NewOrderMetrics()),
	}
	if publisher != nil {
		opts = append(opts, tracker.WithPublisher(publisher))
	}
	orderTracker, err := tracker.New(backend.storage, opts...)
	if err != nil {
		return err
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if backend.pinger != nil {
		healthHandler.RegisterChecker("storage", healthcheck.NewPingChecker("storage", backend.pinger))
	}

	apiLogger := logger.WithField("layer", "http")
	apiHandler := httpapi.NewRouter(httpapi.NewHandler(orderTracker, apiLogger), apiLogger)

	grpcLogger := logger.WithField("layer", "grpc")
	grpcServer := grpcapi.NewServer(
		grpcapi.NewOrderTrackerService(orderTracker, grpcLogger),
		prometheus.DefaultRegisterer,
		grpcLogger,
	)

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}
	apiLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	apiSrv := &http.Server{Handler: apiHandler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 2)

	go func() {
		logger.Infof("REST API слушает %s", apiLis.Addr())
		if err := apiSrv.Serve(apiLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http api: %w", err)
		}
	}()
	go func() {
		logger.Infof("gRPC сервер слушает %s", grpcLis.Addr())
		if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		stopGRPC(grpcServer, logger)
		shutdownHTTP(apiSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		stopGRPC(grpcServer, logger)
		shutdownHTTP(apiSrv, logger)
		return err
	}
}

// stopGRPC пробует GracefulStop и принудительно останавливает сервер по таймауту.
func stopGRPC(srv *grpcapi.Server, logger *log.Entry) {
	srv.MarkNotServing()

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		srv.Stop()
	}
}

// startMetricsServer запускает /metrics и health-пробы на отдельном адресе.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
