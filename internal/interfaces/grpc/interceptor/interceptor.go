package interceptor

import (
	"context"
	"time"

	middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryInterceptor logs every health check and turns panics into Internal
// errors.
func UnaryInterceptor() grpc.ServerOption {
	return grpc.UnaryInterceptor(
		middleware.ChainUnaryServer(
			unaryLogger,
			grpc_recovery.UnaryServerInterceptor(recoveryOpts()...),
		),
	)
}

// StreamInterceptor does the same for the Watch stream.
func StreamInterceptor() grpc.ServerOption {
	return grpc.StreamInterceptor(
		middleware.ChainStreamServer(
			streamLogger,
			grpc_recovery.StreamServerInterceptor(recoveryOpts()...),
		),
	)
}

func unaryLogger(
	ctx context.Context, req interface{}, info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logCall(info.FullMethod, start, err)
	return resp, err
}

func streamLogger(
	srv interface{}, stream grpc.ServerStream, info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	start := time.Now()
	err := handler(srv, stream)
	logCall(info.FullMethod, start, err)
	return err
}

func logCall(method string, start time.Time, err error) {
	entry := log.WithFields(log.Fields{
		"method":   method,
		"code":     status.Code(err).String(),
		"duration": time.Since(start),
	})
	if err != nil && status.Code(err) != codes.Canceled {
		entry.WithError(err).Debug("grpc call failed")
		return
	}
	entry.Trace("grpc call")
}

func recoveryOpts() []grpc_recovery.Option {
	return []grpc_recovery.Option{
		grpc_recovery.WithRecoveryHandler(func(p interface{}) error {
			log.Errorf("recovered from panic in grpc handler: %v", p)
			return status.Error(codes.Internal, "internal error")
		}),
	}
}
