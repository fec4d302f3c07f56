package grpc

import (
	"context"
	"encoding/json"

	"github.com/vibast-solutions/ms-go-zarinpal/app/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	ServiceName = "zarinpal.PaymentsService"

	// CodecName is the content subtype clients select with
	// grpc.CallContentSubtype to reach the service.
	CodecName = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

type PaymentsServiceServer interface {
	Health(context.Context, *types.HealthRequest) (*types.HealthResponse, error)
	CreatePayment(context.Context, *types.CreatePaymentRequest) (*types.GatewayResponse, error)
	VerifyPayment(context.Context, *types.VerifyPaymentRequest) (*types.GatewayResponse, error)
	RefreshAuthority(context.Context, *types.RefreshAuthorityRequest) (*types.GatewayResponse, error)
	ListUnverified(context.Context, *types.ListUnverifiedRequest) (*types.GatewayResponse, error)
}

func RegisterPaymentsServiceServer(s grpc.ServiceRegistrar, srv PaymentsServiceServer) {
	s.RegisterService(&PaymentsServiceDesc, srv)
}

var PaymentsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PaymentsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Health", Handler: unaryHandler("Health", PaymentsServiceServer.Health)},
		{MethodName: "CreatePayment", Handler: unaryHandler("CreatePayment", PaymentsServiceServer.CreatePayment)},
		{MethodName: "VerifyPayment", Handler: unaryHandler("VerifyPayment", PaymentsServiceServer.VerifyPayment)},
		{MethodName: "RefreshAuthority", Handler: unaryHandler("RefreshAuthority", PaymentsServiceServer.RefreshAuthority)},
		{MethodName: "ListUnverified", Handler: unaryHandler("ListUnverified", PaymentsServiceServer.ListUnverified)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "zarinpal/payments.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req any, Resp any](
	method string,
	call func(PaymentsServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PaymentsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PaymentsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PaymentsServiceClient calls the service over the JSON codec.
type PaymentsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPaymentsServiceClient(cc grpc.ClientConnInterface) *PaymentsServiceClient {
	return &PaymentsServiceClient{cc: cc}
}

func (c *PaymentsServiceClient) Health(ctx context.Context, in *types.HealthRequest, opts ...grpc.CallOption) (*types.HealthResponse, error) {
	out := new(types.HealthResponse)
	if err := c.invoke(ctx, "Health", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PaymentsServiceClient) CreatePayment(ctx context.Context, in *types.CreatePaymentRequest, opts ...grpc.CallOption) (*types.GatewayResponse, error) {
	out := new(types.GatewayResponse)
	if err := c.invoke(ctx, "CreatePayment", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PaymentsServiceClient) VerifyPayment(ctx context.Context, in *types.VerifyPaymentRequest, opts ...grpc.CallOption) (*types.GatewayResponse, error) {
	out := new(types.GatewayResponse)
	if err := c.invoke(ctx, "VerifyPayment", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PaymentsServiceClient) RefreshAuthority(ctx context.Context, in *types.RefreshAuthorityRequest, opts ...grpc.CallOption) (*types.GatewayResponse, error) {
	out := new(types.GatewayResponse)
	if err := c.invoke(ctx, "RefreshAuthority", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PaymentsServiceClient) ListUnverified(ctx context.Context, in *types.ListUnverifiedRequest, opts ...grpc.CallOption) (*types.GatewayResponse, error) {
	out := new(types.GatewayResponse)
	if err := c.invoke(ctx, "ListUnverified", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PaymentsServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}
