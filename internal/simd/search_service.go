package simd

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Search service method names.
const (
	SearchServiceName          = "keffsearch.v1.SearchService"
	SearchServiceCreateSearch  = "/keffsearch.v1.SearchService/CreateSearch"
	SearchServiceGetSearch     = "/keffsearch.v1.SearchService/GetSearch"
	SearchServiceStopSearch    = "/keffsearch.v1.SearchService/StopSearch"
	SearchServiceListSearches  = "/keffsearch.v1.SearchService/ListSearches"
	searchServiceProtoMetadata = "keffsearch/v1/search.proto"
)

// SearchServiceServer is the server API for the search service. Requests and
// responses are google.protobuf.Struct documents with the same fields as the
// HTTP API.
type SearchServiceServer interface {
	CreateSearch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSearch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopSearch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSearches(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedSearchServiceServer can be embedded for forward compatibility.
type UnimplementedSearchServiceServer struct{}

func (UnimplementedSearchServiceServer) CreateSearch(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSearch not implemented")
}

func (UnimplementedSearchServiceServer) GetSearch(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSearch not implemented")
}

func (UnimplementedSearchServiceServer) StopSearch(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method StopSearch not implemented")
}

func (UnimplementedSearchServiceServer) ListSearches(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSearches not implemented")
}

// RegisterSearchServiceServer registers srv on s.
func RegisterSearchServiceServer(s grpc.ServiceRegistrar, srv SearchServiceServer) {
	s.RegisterService(&SearchServiceDesc, srv)
}

func unaryHandler(method string, call func(SearchServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SearchServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SearchServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SearchServiceDesc describes the search service for grpc.Server.
var SearchServiceDesc = grpc.ServiceDesc{
	ServiceName: SearchServiceName,
	HandlerType: (*SearchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSearch", Handler: unaryHandler(SearchServiceCreateSearch, SearchServiceServer.CreateSearch)},
		{MethodName: "GetSearch", Handler: unaryHandler(SearchServiceGetSearch, SearchServiceServer.GetSearch)},
		{MethodName: "StopSearch", Handler: unaryHandler(SearchServiceStopSearch, SearchServiceServer.StopSearch)},
		{MethodName: "ListSearches", Handler: unaryHandler(SearchServiceListSearches, SearchServiceServer.ListSearches)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: searchServiceProtoMetadata,
}

// SearchServiceClient calls the search service.
type SearchServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSearchServiceClient(cc grpc.ClientConnInterface) *SearchServiceClient {
	return &SearchServiceClient{cc: cc}
}

func (c *SearchServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SearchServiceClient) CreateSearch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SearchServiceCreateSearch, in, opts...)
}

func (c *SearchServiceClient) GetSearch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SearchServiceGetSearch, in, opts...)
}

func (c *SearchServiceClient) StopSearch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SearchServiceStopSearch, in, opts...)
}

func (c *SearchServiceClient) ListSearches(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SearchServiceListSearches, in, opts...)
}
