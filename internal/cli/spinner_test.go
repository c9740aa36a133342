package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("Searching...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// Stop cancels the spinner's own context.
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop")
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Resolving...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled with its parent context")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Idempotent...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerQuiet(t *testing.T) {
	s := newSpinner("Quiet...")
	s.quiet = true
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked on a quiet spinner")
	}
}

func TestSpinnerStopWithStatus(t *testing.T) {
	buf := captureOutput(t)

	s := newSpinner("Warming...")
	s.Start()
	s.StopWithSuccess("Warmed 2 packages")

	s = newSpinner("Warming...")
	s.Start()
	s.StopWithError("warm failed")

	if got := buf.String(); !strings.Contains(got, "Warmed 2 packages") || !strings.Contains(got, "warm failed") {
		t.Errorf("output = %q", got)
	}
}

func TestSpinnerDraw(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Warming packages...")
	s.w = &buf

	s.draw(spinnerFrames[0], time.Second)
	if got := buf.String(); !strings.Contains(got, "Warming packages...") || strings.Contains(got, "(1s)") {
		t.Errorf("first frame = %q", got)
	}

	buf.Reset()
	s.Update("Warming packages 2/5...")
	s.draw(spinnerFrames[1], 3*time.Second)
	if got := buf.String(); !strings.Contains(got, "2/5") || !strings.Contains(got, "(3s)") {
		t.Errorf("updated frame = %q", got)
	}

	buf.Reset()
	s.clearLine()
	if got := buf.String(); !strings.HasPrefix(got, "\r") || strings.TrimSpace(got) != "" {
		t.Errorf("clearLine wrote %q", got)
	}
}
