package grpcapi

import (
	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server: gRPC-сервер трекера вместе со стандартным health-сервисом.
type Server struct {
	*grpc.Server
	Health *health.Server
}

// NewServer собирает сервер: сервис трекера, health, reflection и prometheus-интерсептор.
// registerer может быть nil, тогда метрики регистрируются в prometheus.DefaultRegisterer.
func NewServer(service OrderTrackerServer, registerer prometheus.Registerer, logger *log.Entry) *Server {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = log.New().WithField("component", "grpc-server")
	}

	grpcMetrics := promgrpc.NewServerMetrics()
	if err := registerer.Register(grpcMetrics); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	RegisterOrderTrackerServer(srv, service)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthServer)

	reflection.Register(srv)
	grpcMetrics.InitializeMetrics(srv)

	return &Server{Server: srv, Health: healthServer}
}

// MarkNotServing переводит health-статус в NOT_SERVING перед остановкой.
func (s *Server) MarkNotServing() {
	s.Health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.Health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
}
