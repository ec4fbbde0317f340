package simd

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestGRPCClient(t *testing.T) (*SearchServiceClient, *RunExecutor) {
	t.Helper()
	store, executor, _ := newTestExecutor(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterSearchServiceServer(srv, NewSearchGRPCServer(store, executor))
	go func() {
		_ = srv.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
	})
	return NewSearchServiceClient(conn), executor
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

func runField(t *testing.T, resp *structpb.Struct) map[string]any {
	t.Helper()
	run, ok := resp.AsMap()["run"].(map[string]any)
	if !ok {
		t.Fatalf("response has no run: %v", resp.AsMap())
	}
	return run
}

func TestGRPCSearchLifecycle(t *testing.T) {
	client, executor := newTestGRPCClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := client.CreateSearch(ctx, mustStruct(t, map[string]any{
		"run_id": "grpc-1",
		"input": map[string]any{
			"bracket":   []any{1000.0, 2500.0},
			"method":    "secant",
			"tolerance": 1e-4,
		},
	}))
	if err != nil {
		t.Fatalf("CreateSearch: %v", err)
	}
	if runField(t, created)["id"] != "grpc-1" {
		t.Fatalf("unexpected created run %v", created.AsMap())
	}
	waitTerminal(t, executor, "grpc-1")

	got, err := client.GetSearch(ctx, mustStruct(t, map[string]any{"run_id": "grpc-1"}))
	if err != nil {
		t.Fatalf("GetSearch: %v", err)
	}
	run := runField(t, got)
	if run["status"] != string(RunStatusCompleted) || run["method"] != "secant" {
		t.Fatalf("unexpected run %v", run)
	}
	result, ok := run["result"].(map[string]any)
	if !ok || result["root_ppm"].(float64) < 1800 || result["root_ppm"].(float64) > 1880 {
		t.Fatalf("unexpected result %v", run["result"])
	}
	history, ok := got.AsMap()["history"].([]any)
	if !ok || len(history) < 3 {
		t.Fatalf("expected history in response, got %v", got.AsMap()["history"])
	}

	list, err := client.ListSearches(ctx, mustStruct(t, map[string]any{"status": "COMPLETED"}))
	if err != nil {
		t.Fatalf("ListSearches: %v", err)
	}
	runs, _ := list.AsMap()["runs"].([]any)
	if len(runs) != 1 {
		t.Fatalf("expected 1 completed run, got %v", list.AsMap())
	}

	_, err = client.StopSearch(ctx, mustStruct(t, map[string]any{"run_id": "grpc-1"}))
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition stopping a finished run, got %v", err)
	}
}

func TestGRPCErrors(t *testing.T) {
	client, _ := newTestGRPCClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.CreateSearch(ctx, mustStruct(t, map[string]any{"input": map[string]any{"criterion": "nope"}}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	_, err = client.GetSearch(ctx, mustStruct(t, map[string]any{}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for missing run_id, got %v", err)
	}
	_, err = client.GetSearch(ctx, mustStruct(t, map[string]any{"run_id": "missing"}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
	_, err = client.StopSearch(ctx, mustStruct(t, map[string]any{"run_id": "missing"}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	if _, err := client.CreateSearch(ctx, mustStruct(t, map[string]any{"run_id": "dup"})); err != nil {
		t.Fatalf("CreateSearch: %v", err)
	}
	_, err = client.CreateSearch(ctx, mustStruct(t, map[string]any{"run_id": "dup"}))
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
}

func TestGRPCCreateRejectsCommandEngine(t *testing.T) {
	client, executor := newTestGRPCClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.CreateSearch(ctx, mustStruct(t, map[string]any{
		"run_id": "exec",
		"input": map[string]any{
			"engine": map[string]any{
				"kind":    "command",
				"command": map[string]any{"executable": "/bin/true"},
			},
		},
	}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if _, ok := executor.store.Get("exec"); ok {
		t.Fatalf("rejected request should not create a run")
	}
}

func TestGRPCStop(t *testing.T) {
	client, executor := newTestGRPCClient(t)
	started := make(chan struct{}, 1)
	executor.SetEvaluatorFactory(blockingFactory(started))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.CreateSearch(ctx, mustStruct(t, map[string]any{"run_id": "slow"})); err != nil {
		t.Fatalf("CreateSearch: %v", err)
	}
	<-started

	stopped, err := client.StopSearch(ctx, mustStruct(t, map[string]any{"run_id": "slow"}))
	if err != nil {
		t.Fatalf("StopSearch: %v", err)
	}
	if runField(t, stopped)["status"] != string(RunStatusCancelled) {
		t.Fatalf("expected cancelled, got %v", stopped.AsMap())
	}
	waitTerminal(t, executor, "slow")
}

func TestUnimplementedSearchService(t *testing.T) {
	var srv UnimplementedSearchServiceServer
	if _, err := srv.GetSearch(context.Background(), nil); status.Code(err) != codes.Unimplemented {
		t.Fatalf("expected Unimplemented, got %v", err)
	}
}
