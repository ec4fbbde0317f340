package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "keffsearch dev\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSearchCommandDefaults(t *testing.T) {
	out, _, err := execute(t, "search")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Iteration: 1; Guess of 1.00e+03 produced a keff of 1.09333 +/- 0.00000") {
		t.Fatalf("missing first iteration line:\n%s", out)
	}
	if !strings.Contains(out, "Iteration: 3; Guess of 1.75e+03") {
		t.Fatalf("missing midpoint iteration line:\n%s", out)
	}
	if !strings.HasSuffix(out, "Critical Boron Concentration: 1750 ppm\n") {
		t.Fatalf("unexpected result line:\n%s", out)
	}
}

func TestSearchCommandFlags(t *testing.T) {
	for _, method := range []string{"bisect", "secant", "brentq"} {
		t.Run(method, func(t *testing.T) {
			out, _, err := execute(t, "search", "--quiet", "--tol", "1e-5", "--method", method, "--log-level", "error")
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if strings.Contains(out, "Iteration:") {
				t.Fatalf("quiet search printed iterations:\n%s", out)
			}
			if out != "Critical Boron Concentration: 1840 ppm\n" {
				t.Fatalf("unexpected output %q", out)
			}
		})
	}
}

func TestSearchCommandBracketFailure(t *testing.T) {
	out, _, err := execute(t, "search", "--lo", "0", "--hi", "100")
	var exitErr *exitError
	if !errors.As(err, &exitErr) || exitErr.code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(out, "Search failed [bracket]") {
		t.Fatalf("missing failure class:\n%s", out)
	}
	if !strings.Contains(out, "Evaluations before the failure:") || !strings.Contains(out, "100.00 ppm") {
		t.Fatalf("missing partial history:\n%s", out)
	}
}

func TestSearchCommandRejectsInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "search", "--method", "newton")
	if err == nil || !strings.Contains(err.Error(), "invalid method") {
		t.Fatalf("expected invalid method error, got %v", err)
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		t.Fatalf("configuration errors should not carry a search exit code")
	}
}

func TestSearchCommandConfigFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.Bracket = []float64{1500, 2000}
	cfg.Search.Tolerance = 1e-5
	cfg.Search.PrintIterations = false
	data, err := cfg.ToYAML()
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	path := filepath.Join(t.TempDir(), "keff.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := execute(t, "search", "--config", path)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if out != "Critical Boron Concentration: 1840 ppm\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDeckCommand(t *testing.T) {
	dir := t.TempDir()
	out, _, err := execute(t, "deck", "--ppm", "1000", "--out", dir)
	if err != nil {
		t.Fatalf("deck: %v", err)
	}
	for _, name := range []string{"materials.xml", "geometry.xml", "settings.xml"} {
		if !strings.Contains(out, filepath.Join(dir, name)) {
			t.Fatalf("expected %s in output:\n%s", name, out)
		}
	}
	materials, err := os.ReadFile(filepath.Join(dir, "materials.xml"))
	if err != nil {
		t.Fatalf("read materials: %v", err)
	}
	if !strings.Contains(string(materials), `ao="0.001"`) {
		t.Fatalf("expected boron fraction in materials.xml:\n%s", materials)
	}
}

func TestDeckCommandGapExample(t *testing.T) {
	dir := t.TempDir()
	out, _, err := execute(t, "deck", "--example", "gap", "--out", dir)
	if err != nil {
		t.Fatalf("deck: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "tallies.xml")) {
		t.Fatalf("expected tallies.xml for the gap example:\n%s", out)
	}

	if _, _, err := execute(t, "deck", "--example", "assembly", "--out", dir); err == nil {
		t.Fatalf("expected error for unknown example")
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	lis.Close()
	return addr
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server = &config.Server{GRPCAddr: freeAddr(t), HTTPAddr: freeAddr(t)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := client.Get("http://" + cfg.Server.HTTPAddr + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("healthz status %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("serve did not return after cancel")
	}
}
