package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/tianer2820/namecleanup/internal/app"
	"github.com/tianer2820/namecleanup/internal/config"
	"github.com/tianer2820/namecleanup/internal/core"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer, *app.App) {
	t.Helper()
	a, err := app.Open(context.Background(), config.Default(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	var out bytes.Buffer
	return newShell(a, &out), &out, a
}

func TestShellScenario(t *testing.T) {
	ctx := context.Background()
	sh, out, a := newTestShell(t)

	lines := []string{
		`mesh Mesh.001`,
		`material Steel`,
		`material Paint`,
		`object "My Cube" Mesh.001 Steel Paint`,
		`lower_object_names`,
		`select "My Cube"`,
		`preview`,
		`run cleanup.do_all_formattings`,
	}
	for _, l := range lines {
		if !sh.exec(ctx, l) {
			t.Fatalf("shell exited on %q", l)
		}
	}

	got := out.String()
	if !strings.Contains(got, "select at least one object first") {
		t.Fatalf("expected unavailable message before selecting, got:\n%s", got)
	}
	if !strings.Contains(got, `"My Cube" -> "my cube"`) {
		t.Fatalf("expected preview line, got:\n%s", got)
	}
	if !strings.Contains(got, "renamed 2 materials") {
		t.Fatalf("expected material report, got:\n%s", got)
	}

	if _, err := a.Store.Lookup(ctx, core.KindMesh, "my cube"); err != nil {
		t.Fatalf("expected mesh renamed: %v", err)
	}
}

func TestShellErrorsAndQuit(t *testing.T) {
	ctx := context.Background()
	sh, out, _ := newTestShell(t)

	sh.exec(ctx, `object Lonely Missing`)
	sh.exec(ctx, `frobnicate`)
	if !strings.Contains(out.String(), "not found") {
		t.Fatalf("expected not found error, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "unknown command: frobnicate") {
		t.Fatalf("expected unknown command, got:\n%s", out.String())
	}
	if sh.exec(ctx, "quit") {
		t.Fatalf("expected quit to stop the shell")
	}
}
