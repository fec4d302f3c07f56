package grpc

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-zarinpal/app/mapper"
	"github.com/vibast-solutions/ms-go-zarinpal/app/service"
	"github.com/vibast-solutions/ms-go-zarinpal/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server answers with the gateway envelope as-is. A call Zarinpal rejected is
// still a successful RPC; callers inspect OK and Status.
type Server struct {
	paymentService *service.PaymentService
}

func NewServer(paymentService *service.PaymentService) *Server {
	return &Server{paymentService: paymentService}
}

func (s *Server) Health(_ context.Context, _ *types.HealthRequest) (*types.HealthResponse, error) {
	return &types.HealthResponse{Status: "ok"}, nil
}

func (s *Server) CreatePayment(ctx context.Context, req *types.CreatePaymentRequest) (*types.GatewayResponse, error) {
	l := loggerWithContext(ctx)
	req.Normalize()
	if err := req.Validate(); err != nil {
		l.WithError(err).Debug("Create payment validation failed")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	client, err := s.paymentService.CreatePayment(ctx, req)
	if err != nil {
		return nil, serviceError(ctx, err, "Create payment failed")
	}

	return mapper.CheckoutToType(client), nil
}

func (s *Server) VerifyPayment(ctx context.Context, req *types.VerifyPaymentRequest) (*types.GatewayResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.paymentService.VerifyPayment(ctx, req)
	if err != nil {
		return nil, serviceError(ctx, err, "Verify payment failed")
	}

	return mapper.ResponseToType(resp), nil
}

func (s *Server) RefreshAuthority(ctx context.Context, req *types.RefreshAuthorityRequest) (*types.GatewayResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.paymentService.RefreshAuthority(ctx, req)
	if err != nil {
		return nil, serviceError(ctx, err, "Refresh authority failed")
	}

	return mapper.ResponseToType(resp), nil
}

func (s *Server) ListUnverified(ctx context.Context, _ *types.ListUnverifiedRequest) (*types.GatewayResponse, error) {
	resp, err := s.paymentService.ListUnverified(ctx)
	if err != nil {
		return nil, serviceError(ctx, err, "List unverified failed")
	}

	return mapper.ResponseToType(resp), nil
}

func serviceError(ctx context.Context, err error, logMessage string) error {
	if errors.Is(err, service.ErrInvalidRequest) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	loggerWithContext(ctx).WithError(err).Error(logMessage)
	return status.Error(codes.Internal, "internal server error")
}
