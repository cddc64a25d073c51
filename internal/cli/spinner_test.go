package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/skilltree/pkg/observability"
)

func quietSpinner(ctx context.Context, message string) (*Spinner, *bytes.Buffer) {
	s := newSpinnerWithContext(ctx, message)
	var buf bytes.Buffer
	s.out = &buf
	return s, &buf
}

func (s *Spinner) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func TestSpinnerDraws(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Placing 12 items...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	if s.Cancelled() {
		t.Error("Cancelled() = true before Stop, want false")
	}
	s.Stop()

	s.mu.Lock()
	out := buf.String()
	s.mu.Unlock()
	if !strings.Contains(out, "Placing 12 items...") {
		t.Errorf("spinner output %q missing message", out)
	}
}

func TestSpinnerCancelled(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()
			s, _ := quietSpinner(ctx, "placing")
			s.Start()
			time.Sleep(100 * time.Millisecond)
			if !s.Cancelled() {
				t.Error("Cancelled() = false after the parent context ended, want true")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "placing")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithError(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "placing")
	s.Start()
	s.StopWithError("Build failed")
}

func TestSpinnerSetMessage(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "first")
	s.SetMessage("a longer second message")
	if got := s.text(); got != "a longer second message" {
		t.Errorf("message = %q, want %q", got, "a longer second message")
	}
	if s.width != len("a longer second message") {
		t.Errorf("width = %d, want %d", s.width, len("a longer second message"))
	}
	s.SetMessage("short")
	if s.width != len("a longer second message") {
		t.Error("width shrank after a shorter message")
	}
}

func TestSpinnerTrack(t *testing.T) {
	defer observability.Reset()
	rec := &completions{}
	observability.SetPipelineHooks(rec)

	s, _ := quietSpinner(context.Background(), "placing")
	restore := s.track(3)
	hooks := observability.Pipeline()
	hooks.OnCategoryComplete(context.Background(), observability.CategoryEvent{Category: "fire"})
	hooks.OnCategoryComplete(context.Background(), observability.CategoryEvent{Category: "frost"})

	if got, want := s.text(), "Placed frost (2/3 categories)..."; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if rec.n != 2 {
		t.Errorf("forwarded %d events, want 2", rec.n)
	}
	restore()
	if observability.Pipeline() != observability.PipelineHooks(rec) {
		t.Error("track() restore did not reinstall the previous hooks")
	}
}

type completions struct {
	observability.NoopPipelineHooks
	n int
}

func (c *completions) OnCategoryComplete(context.Context, observability.CategoryEvent) { c.n++ }
