// Package jco invokes the jco component transpiler.
package jco

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

// tailLines is how much transpiler output is attached to a failure.
const tailLines = 20

var _ ports.Transpiler = (*Transpiler)(nil)

// Transpiler runs "<command> transpile <asset> -o <outDir> [args...]".
type Transpiler struct {
	executor ports.Executor
	logger   ports.Logger
	config   domain.TranspilerConfig
}

// New creates a Transpiler. The command may carry leading arguments, for example "npx jco".
func New(executor ports.Executor, logger ports.Logger, config domain.TranspilerConfig) *Transpiler {
	if strings.TrimSpace(config.Command) == "" {
		config.Command = domain.DefaultTranspiler
	}
	return &Transpiler{
		executor: executor,
		logger:   logger,
		config:   config,
	}
}

// Command returns the process invocation for one asset.
func (t *Transpiler) Command(assetPath, outDir string) domain.Command {
	fields := strings.Fields(t.config.Command)

	args := make([]string, 0, len(fields)+4+len(t.config.Args))
	args = append(args, fields[1:]...)
	args = append(args, "transpile", assetPath, "-o", outDir)
	args = append(args, t.config.Args...)

	return domain.Command{
		Name: fields[0],
		Args: args,
	}
}

// Transpile blocks until the transpiler exits. Failures are never retried.
func (t *Transpiler) Transpile(ctx context.Context, assetPath, outDir string) error {
	if err := os.MkdirAll(outDir, domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrFilesystemWriteFailed, err), "path", outDir)
	}

	runCtx := ctx
	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	cmd := t.Command(assetPath, outDir)
	t.logger.Debug("transpile " + assetPath + " -> " + outDir)
	output := &tailBuffer{max: tailLines}

	err := t.executor.Execute(runCtx, cmd, output, output)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, exec.ErrNotFound):
		return zerr.With(errors.Join(domain.ErrTranspilerNotFound, err), "command", cmd.Name)
	case ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return zerr.With(zerr.With(errors.Join(domain.ErrTranspilerTimeout, err),
			"timeout", t.config.Timeout.String()), "asset", assetPath)
	case ctx.Err() != nil:
		return zerr.Wrap(ctx.Err(), "transpile cancelled")
	}

	failure := zerr.With(errors.Join(domain.ErrTranspilerFailed, err), "asset", assetPath)
	if tail := output.String(); tail != "" {
		failure = zerr.With(failure, "output", tail)
	}
	return failure
}

// tailBuffer keeps the last max lines written to it. It is safe for concurrent writers.
type tailBuffer struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.partial = append(b.partial, p...)
	for {
		i := bytes.IndexByte(b.partial, '\n')
		if i < 0 {
			break
		}
		b.push(strings.TrimSuffix(string(b.partial[:i]), "\r"))
		b.partial = b.partial[i+1:]
	}
	return len(p), nil
}

func (b *tailBuffer) push(line string) {
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := b.lines
	if len(b.partial) > 0 {
		lines = append(append([]string(nil), lines...), string(b.partial))
		if len(lines) > b.max {
			lines = lines[len(lines)-b.max:]
		}
	}
	return strings.Join(lines, "\n")
}
