package grpcinterface

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bushboy/bookingswap-sub023/internal/core/application/sweeper"
	interfaces "github.com/bushboy/bookingswap-sub023/internal/interfaces"
	"github.com/bushboy/bookingswap-sub023/internal/interfaces/grpc/interceptor"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	// SweeperServiceName is the name under which the health of the
	// expiration sweeper is reported.
	SweeperServiceName = "swapd.Sweeper"

	defaultCheckInterval = 10 * time.Second
)

// SweeperService reports the status of the expiration sweeper.
type SweeperService interface {
	Status() sweeper.Status
}

type ServiceOpts struct {
	Port          int
	SweeperSvc    SweeperService
	CheckInterval time.Duration
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if o.SweeperSvc == nil {
		return fmt.Errorf("missing sweeper service")
	}
	return nil
}

type service struct {
	opts         ServiceOpts
	grpcServer   *grpc.Server
	healthServer *health.Server

	quitCh chan struct{}
	wg     sync.WaitGroup
}

// NewService returns the gRPC health interface of the daemon. It reports
// SERVING unless the last sweep failed entirely.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %w", err)
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = defaultCheckInterval
	}

	grpcServer := grpc.NewServer(
		interceptor.UnaryInterceptor(),
		interceptor.StreamInterceptor(),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &service{
		opts:         opts,
		grpcServer:   grpcServer,
		healthServer: healthServer,
		quitCh:       make(chan struct{}),
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return err
	}

	s.updateStatus()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.grpcServer.Serve(lis); err != nil {
			log.WithError(err).Error("grpc health interface stopped")
		}
	}()
	go func() {
		defer s.wg.Done()
		s.watchSweeper()
	}()

	log.Infof("grpc health interface listening on %s", lis.Addr())
	return nil
}

func (s *service) Stop() {
	close(s.quitCh)
	s.healthServer.Shutdown()
	s.grpcServer.GracefulStop()
	s.wg.Wait()
	log.Debug("grpc health interface stopped")
}

func (s *service) watchSweeper() {
	ticker := time.NewTicker(s.opts.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quitCh:
			return
		case <-ticker.C:
			s.updateStatus()
		}
	}
}

func (s *service) updateStatus() {
	status := healthpb.HealthCheckResponse_SERVING
	if !s.opts.SweeperSvc.Status().Healthy() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.healthServer.SetServingStatus("", status)
	s.healthServer.SetServingStatus(SweeperServiceName, status)
}
