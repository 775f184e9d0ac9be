package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/witshim/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name string
		log  func(*logger.Logger)
		want string
	}{
		{
			name: "info",
			log:  func(l *logger.Logger) { l.Info("transpiled calculator.wasm") },
			want: "transpiled calculator.wasm\n",
		},
		{
			name: "warn",
			log:  func(l *logger.Logger) { l.Warn("unrecognized binary") },
			want: "! unrecognized binary\n",
		},
		{
			name: "debug hidden by default",
			log:  func(l *logger.Logger) { l.Debug("cache hit") },
			want: "",
		},
		{
			name: "nil error ignored",
			log:  func(l *logger.Logger) { l.Error(nil) },
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLogger_Verbose(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetVerbose(true)

	lg.Debug("cache hit")
	assert.Equal(t, "● cache hit\n", buf.String())

	buf.Reset()
	lg.SetVerbose(false)
	lg.Debug("cache hit")
	assert.Empty(t, buf.String())
}

func TestLogger_ErrorChain(t *testing.T) {
	lg, buf := newTestLogger(t)

	cause := errors.New("exit status 1")
	err := zerr.Wrap(zerr.Wrap(cause, "transpiler invocation failed"), "load calculator.wasm")
	lg.Error(err)

	g := goldie.New(t)
	g.Assert(t, "error_chain", buf.Bytes())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(zerr.New("build failed"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "operation failed", rec["msg"])
	assert.Equal(t, "build failed", rec["error"])
}

func TestLogger_JSONSurvivesSetOutput(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetJSON(true)

	var buf bytes.Buffer
	lg.SetOutput(&buf)
	lg.Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
}

func TestLogger_ErrorChainWithSentinel(t *testing.T) {
	lg, buf := newTestLogger(t)

	sentinel := zerr.New("failed to write file")
	err := zerr.With(errors.Join(sentinel, errors.New("permission denied")), "path", "/x.d.ts")
	lg.Error(err)

	assert.Equal(t, "✗ Error: failed to write file\n\n  Caused by:\n    → permission denied\n", buf.String())
}

func TestLogger_ErrorChainJoinedInsideWrap(t *testing.T) {
	lg, buf := newTestLogger(t)

	sentinel := zerr.New("transpiler invocation failed")
	cause := zerr.Wrap(errors.New("exit status 1"), "command failed")
	lg.Error(zerr.Wrap(errors.Join(sentinel, cause), "load calc.wasm"))

	assert.Equal(t, "✗ Error: load calc.wasm\n\n  Caused by:\n"+
		"    → transpiler invocation failed\n"+
		"    → command failed\n"+
		"    → exit status 1\n", buf.String())
}
