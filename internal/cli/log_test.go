package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skilltree/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", LogInfo, func(l *log.Logger) { l.Info("placed") }, true},
		{"debug at info level", LogInfo, func(l *log.Logger) { l.Debug("pass") }, false},
		{"debug at debug level", LogDebug, func(l *log.Logger) { l.Debug("pass") }, true},
		{"warn at info level", LogInfo, func(l *log.Logger) { l.Warn("grid exhausted") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	prog.start = prog.start.Add(-1500 * time.Millisecond)

	prog.done("Built skill trees", "categories", 3)

	out := buf.String()
	for _, want := range []string{"Built skill trees (1.5", "categories=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress.done() output %q missing %q", out, want)
		}
	}
	if d := prog.elapsed(); d%time.Millisecond != 0 {
		t.Errorf("elapsed() = %v, want millisecond precision", d)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, LogInfo)
	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Errorf("loggerFromContext() = %p, want %p", got, custom)
	}
}

func TestSetLogLevelInstallsHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	observability.Reset()

	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.SetLogLevel(LogInfo)
	if _, ok := observability.Pipeline().(observability.LogHooks); ok {
		t.Fatal("SetLogLevel(info) installed log hooks")
	}

	c.SetLogLevel(LogDebug)
	observability.Cache().OnCacheHit(context.Background(), "result")
	if !strings.Contains(buf.String(), "cache hit") {
		t.Errorf("debug hooks did not log cache hit: %q", buf.String())
	}
}
