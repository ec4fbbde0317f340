package simd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/keff-search/pkg/logger"
)

// SearchGRPCServer implements SearchServiceServer using a RunStore backend.
type SearchGRPCServer struct {
	UnimplementedSearchServiceServer
	store    *RunStore
	Executor *RunExecutor
}

// NewSearchGRPCServer creates a new SearchGRPCServer with the provided RunStore and RunExecutor.
func NewSearchGRPCServer(store *RunStore, executor *RunExecutor) *SearchGRPCServer {
	return &SearchGRPCServer{
		store:    store,
		Executor: executor,
	}
}

type runIDRequest struct {
	RunID string `json:"run_id"`
}

type listSearchesRequest struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Status string `json:"status"`
}

func (s *SearchGRPCServer) CreateSearch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in createSearchRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.Input == nil {
		in.Input = &SearchRequest{}
	}

	rec, err := s.Executor.Submit(in.RunID, in.Input)
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("search submitted (gRPC)", "run_id", rec.Run.ID)
	return toStruct(map[string]any{"run": rec.Run})
}

func (s *SearchGRPCServer) GetSearch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in runIDRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.RunID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	rec, ok := s.store.Get(in.RunID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return toStruct(recordToJSON(rec))
}

func (s *SearchGRPCServer) StopSearch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in runIDRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	updated, err := s.Executor.Stop(in.RunID)
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("search cancelled (gRPC)", "run_id", in.RunID)
	return toStruct(map[string]any{"run": updated.Run})
}

func (s *SearchGRPCServer) ListSearches(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in listSearchesRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	recs := s.store.List(in.Limit, in.Offset, parseRunStatus(in.Status))
	runs := make([]Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	return toStruct(map[string]any{"runs": runs})
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrRunIDMissing), errors.Is(err, ErrInvalidRunID), errors.Is(err, ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// toStruct converts v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// fromStruct decodes a Struct into v through its JSON form. A nil Struct
// leaves v untouched.
func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
