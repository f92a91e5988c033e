package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"

	"github.com/rl1809/graphql-bench/internal/adapter/graphql"
	"github.com/rl1809/graphql-bench/internal/logging"
)

const (
	// JSONCodecName is the content subtype clients must send
	// (application/grpc+json).
	JSONCodecName = "json"

	graphQLServiceName = "graphqlbench.v1.GraphQL"
	executeMethod      = "/" + graphQLServiceName + "/Execute"

	requestIDMetadataKey = "x-request-id"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries graphql.Request and graphql.Response as plain JSON.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (jsonCodec) Name() string {
	return JSONCodecName
}

// GraphQLServer is the server API of the GraphQL gRPC service.
type GraphQLServer interface {
	Execute(ctx context.Context, req *graphql.Request) (*graphql.Response, error)
}

var graphQLServiceDesc = grpc.ServiceDesc{
	ServiceName: graphQLServiceName,
	HandlerType: (*GraphQLServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterGraphQLServer(s grpc.ServiceRegistrar, srv GraphQLServer) {
	s.RegisterService(&graphQLServiceDesc, srv)
}

func executeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(graphql.Request)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GraphQLServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: executeMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GraphQLServer).Execute(ctx, req.(*graphql.Request))
	}
	return interceptor(ctx, in, info, handler)
}

// GraphQLClient calls the GraphQL gRPC service with the JSON codec.
type GraphQLClient struct {
	cc grpc.ClientConnInterface
}

func NewGraphQLClient(cc grpc.ClientConnInterface) *GraphQLClient {
	return &GraphQLClient{cc: cc}
}

func (c *GraphQLClient) Execute(ctx context.Context, req *graphql.Request, opts ...grpc.CallOption) (*graphql.Response, error) {
	out := new(graphql.Response)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, executeMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type GRPCHandler struct {
	executor Executor
}

func NewGRPCHandler(executor Executor) *GRPCHandler {
	return &GRPCHandler{executor: executor}
}

// Execute never fails at the RPC level; GraphQL errors travel in the response.
func (h *GRPCHandler) Execute(ctx context.Context, req *graphql.Request) (*graphql.Response, error) {
	return h.executor.Execute(ctx, req), nil
}

// UnaryLogging mirrors the HTTP request-id and access-log middleware.
func UnaryLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if vals := metadata.ValueFromIncomingContext(ctx, requestIDMetadataKey); len(vals) > 0 {
			id = vals[0]
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, id))

		reqLogger := logger.With("request_id", id)
		ctx = logging.WithContext(ctx, reqLogger)

		start := time.Now()
		resp, err := handler(ctx, req)
		reqLogger.DebugContext(ctx, "rpc",
			"method", info.FullMethod,
			"duration", time.Since(start),
			"error", err,
		)
		return resp, err
	}
}
