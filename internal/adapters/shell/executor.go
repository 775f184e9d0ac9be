// Package shell provides an os/exec based executor for external tools.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/creack/pty"
	"go.trai.ch/witshim/internal/core/domain"
	"go.trai.ch/witshim/internal/core/ports"
	"go.trai.ch/zerr"
)

// waitDelay bounds how long output copying may continue after a cancelled process exits.
const waitDelay = 5 * time.Second

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec and, for TTY commands, a pty.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor. Process output is mirrored to logger at debug level.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs cmd and waits for it to complete.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error {
	if cmd.Name == "" {
		return nil
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	stdoutLog := &logWriter{logger: e.logger}
	stderrLog := &logWriter{logger: e.logger}
	defer func() {
		_ = stdoutLog.Close()
		_ = stderrLog.Close()
	}()

	execCmd, err := e.command(ctx, cmd)
	if err != nil {
		return err
	}

	e.logger.Debug("exec " + strings.Join(cmd.Argv(), " "))

	if cmd.TTY {
		err = runPTY(execCmd, io.MultiWriter(stdoutLog, stdout))
		if !errors.Is(err, errPTYUnavailable) {
			return exitError(err)
		}
		// The command was not started; retry it with plain pipes.
		execCmd, err = e.command(ctx, cmd)
		if err != nil {
			return err
		}
	}

	execCmd.Stdout = io.MultiWriter(stdoutLog, stdout)
	execCmd.Stderr = io.MultiWriter(stderrLog, stderr)

	return exitError(execCmd.Run())
}

func (e *Executor) command(ctx context.Context, cmd domain.Command) (*exec.Cmd, error) {
	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := cmd.Name
	if !filepath.IsAbs(executable) {
		lp, err := lookPath(executable, env)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "executable not found"), "command", cmd.Name)
		}
		executable = lp
	}

	execCmd := exec.CommandContext(ctx, executable, cmd.Args...) //nolint:gosec // configured command
	if len(execCmd.Args) > 0 {
		execCmd.Args[0] = cmd.Name
	}
	execCmd.Dir = cmd.Dir
	execCmd.Env = env
	execCmd.WaitDelay = waitDelay

	return execCmd, nil
}

var errPTYUnavailable = errors.New("pty unavailable")

// runPTY runs cmd on a pseudo-terminal, copying the merged output to w.
// It returns errPTYUnavailable when no pty could be allocated and cmd was not started.
func runPTY(cmd *exec.Cmd, w io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		if cmd.Process == nil {
			return errPTYUnavailable
		}
		return zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		_, _ = io.Copy(w, ptmx)
	}()

	waitErr := cmd.Wait()
	_ = ptmx.Close()
	<-ioDone

	return waitErr
}

func exitError(err error) error {
	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
}

// logWriter forwards complete lines to the logger.
type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs may introduce \r.
	w.logger.Debug(strings.TrimSuffix(string(line), "\r"))
}

// resolveEnvironment layers overrides on top of the process environment.
// A PATH override is prepended to the inherited PATH.
func resolveEnvironment(sysEnv, overrides []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	order := make([]string, 0, len(sysEnv)+len(overrides))

	set := func(k, v string) {
		if _, exists := envMap[k]; !exists {
			order = append(order, k)
		}
		envMap[k] = v
	}

	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			set(k, v)
		}
	}

	for _, entry := range overrides {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath := envMap["PATH"]; sysPath != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		set(k, v)
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	if strings.ContainsRune(file, filepath.Separator) {
		if err := findExecutable(file); err != nil {
			return "", exec.ErrNotFound
		}
		return file, nil
	}

	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
