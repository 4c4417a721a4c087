// ABOUTME: Tests for Session: spawn, output reading, exit codes, resize, spawn failures
// ABOUTME: Runs real child processes under a pty; skipped on platforms without /bin/sh

package session

import (
	"errors"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("pty sessions require a Unix platform")
	}
}

// readAll drains the session until EOF, with a safety timeout.
func readAll(t *testing.T, s *Session) string {
	t.Helper()

	type result struct {
		out string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		var b strings.Builder
		buf := make([]byte, 4096)
		for {
			n, err := s.Read(buf)
			b.Write(buf[:n])
			if err != nil {
				ch <- result{out: b.String(), err: err}
				return
			}
		}
	}()

	select {
	case r := <-ch:
		if !errors.Is(r.err, io.EOF) {
			t.Fatalf("Read() terminated with %v, want io.EOF", r.err)
		}
		return r.out
	case <-time.After(10 * time.Second):
		t.Fatal("timed out draining session output")
		return ""
	}
}

func TestSpawn_EchoOutput(t *testing.T) {
	requireUnix(t)
	t.Parallel()

	s, err := Spawn("echo", []string{"hello"}, 24, 80)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	defer s.Close()

	out := readAll(t, s)
	if !strings.Contains(out, "hello") {
		t.Errorf("output = %q, want it to contain %q", out, "hello")
	}
	if code := s.ExitCode(); code != 0 {
		t.Errorf("ExitCode() = %d, want 0", code)
	}
}

func TestSpawn_ExitCodePropagates(t *testing.T) {
	requireUnix(t)
	t.Parallel()

	s, err := Spawn("sh", []string{"-c", "exit 3"}, 24, 80)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	defer s.Close()

	readAll(t, s)

	select {
	case <-s.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("Done() not closed")
	}
	if code := s.ExitCode(); code != 3 {
		t.Errorf("ExitCode() = %d, want 3", code)
	}
}

func TestSpawn_CommandNotFound(t *testing.T) {
	requireUnix(t)
	t.Parallel()

	_, err := Spawn("definitely-not-a-command-42", nil, 24, 80)
	if err == nil {
		t.Fatal("Spawn() succeeded, want error")
	}

	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("error type = %T, want *SpawnError", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("error = %v, want wrapped exec.ErrNotFound", err)
	}
}

func TestSession_WriteForwardsInput(t *testing.T) {
	requireUnix(t)
	t.Parallel()

	// cat echoes its pty input back.
	s, err := Spawn("cat", nil, 24, 80)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	defer s.Close()

	if _, err := s.Write([]byte("ping\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	buf := make([]byte, 256)
	deadline := time.Now().Add(10 * time.Second)
	var got strings.Builder
	for time.Now().Before(deadline) {
		n, err := s.Read(buf)
		got.Write(buf[:n])
		if strings.Contains(got.String(), "ping") {
			break
		}
		if err != nil {
			break
		}
	}
	if !strings.Contains(got.String(), "ping") {
		t.Errorf("echoed output = %q, want it to contain %q", got.String(), "ping")
	}
}

func TestSession_Resize(t *testing.T) {
	requireUnix(t)
	t.Parallel()

	s, err := Spawn("sleep", []string{"5"}, 24, 80)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}
	defer s.Close()

	if err := s.Resize(40, 120); err != nil {
		t.Errorf("Resize() error: %v", err)
	}
}

func TestSession_CloseKillsRunningChild(t *testing.T) {
	requireUnix(t)
	t.Parallel()

	s, err := Spawn("sleep", []string{"60"}, 24, 80)
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}

	start := time.Now()
	if err := s.Close(); err != nil {
		t.Logf("Close() returned %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Close() took %v, want prompt kill", elapsed)
	}
	if !s.Exited() {
		t.Error("child not reaped after Close()")
	}

	// Close is idempotent.
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}
