package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/keff-search/internal/deck"
	"github.com/GoSim-25-26J-441/keff-search/internal/reactor"
	"github.com/GoSim-25-26J-441/keff-search/internal/search"
	"github.com/GoSim-25-26J-441/keff-search/pkg/config"
	"github.com/GoSim-25-26J-441/keff-search/pkg/logger"
)

const stderrTailLines = 10

var keffPattern = regexp.MustCompile(`Combined k-effective\s*=\s*([-+0-9.eE]+)\s*\+/-\s*([-+0-9.eE]+)`)

// CommandEngine runs an external transport executable on an input deck
// written to a fresh working directory.
type CommandEngine struct {
	Executable   string
	Args         []string
	WorkRoot     string // parent of the per-run directories; empty means os.TempDir
	Threads      int
	KeepWorkDirs bool
}

// NewCommandEngine creates a command engine from configuration.
func NewCommandEngine(cfg config.CommandEngine) *CommandEngine {
	return &CommandEngine{
		Executable:   cfg.Executable,
		Args:         slices.Clone(cfg.Args),
		WorkRoot:     cfg.WorkDir,
		Threads:      cfg.Threads,
		KeepWorkDirs: cfg.KeepWorkDirs,
	}
}

// Name returns "command".
func (e *CommandEngine) Name() string {
	return KindCommand
}

// Run writes the deck, runs the executable in the deck directory and parses
// the combined k-effective from its standard output.
func (e *CommandEngine) Run(ctx context.Context, model *reactor.Model) (search.Result, error) {
	if e.Executable == "" {
		return search.Result{}, fmt.Errorf("command engine has no executable")
	}
	if e.WorkRoot != "" {
		if err := os.MkdirAll(e.WorkRoot, 0o755); err != nil {
			return search.Result{}, fmt.Errorf("create work root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(e.WorkRoot, "keff-")
	if err != nil {
		return search.Result{}, fmt.Errorf("create work dir: %w", err)
	}
	if !e.KeepWorkDirs {
		defer os.RemoveAll(dir)
	}

	if _, err := deck.Write(dir, model); err != nil {
		return search.Result{}, fmt.Errorf("write deck: %w", err)
	}

	args := slices.Clone(e.Args)
	if e.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(e.Threads))
	}
	cmd := exec.CommandContext(ctx, e.Executable, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running engine", "executable", e.Executable, "dir", dir, "ppm", model.Parameter())
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return search.Result{}, fmt.Errorf("%s interrupted: %w", e.Executable, ctxErr)
		}
		return search.Result{}, fmt.Errorf("%s failed: %w: %s", e.Executable, err, tail(stderr.String(), stderrTailLines))
	}
	return ParseKeff(stdout.Bytes())
}

// ParseKeff extracts the last "Combined k-effective = X +/- Y" line from
// engine output.
func ParseKeff(output []byte) (search.Result, error) {
	matches := keffPattern.FindAllSubmatch(output, -1)
	if len(matches) == 0 {
		return search.Result{}, ErrNoKeff
	}
	m := matches[len(matches)-1]
	value, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return search.Result{}, fmt.Errorf("parse k-effective %q: %w", m[1], err)
	}
	stddev, err := strconv.ParseFloat(string(m[2]), 64)
	if err != nil {
		return search.Result{}, fmt.Errorf("parse k-effective uncertainty %q: %w", m[2], err)
	}
	return search.Result{Value: value, StdDev: stddev}, nil
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
