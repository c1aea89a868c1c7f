package rpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wfunc/partyserver/logger"
)

// ServiceName is the health service name reported next to the overall status.
const ServiceName = "partyserver"

// HealthServer serves the standard gRPC health checking protocol.
type HealthServer struct {
	listener net.Listener
	grpc     *grpc.Server
	health   *health.Server
}

func NewHealthServer(addr string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	h := &HealthServer{
		listener: listener,
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
	}
	healthpb.RegisterHealthServer(h.grpc, h.health)
	h.SetServing(false)
	return h, nil
}

func (h *HealthServer) Addr() net.Addr {
	return h.listener.Addr()
}

// SetServing flips both the overall and the named service status.
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Start serves until Stop is called.
func (h *HealthServer) Start() {
	logger.Log.Infof("Health server listening on %s", h.listener.Addr())
	if err := h.grpc.Serve(h.listener); err != nil {
		logger.Log.Errorf("Health server error: %v", err)
	}
}

func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
