package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("--version printed %q", out)
	}
}

func TestValueCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"color", "0.5"}, "#ffff00\n"},
		{[]string{"color", "1"}, "#00ff00\n"},
		{[]string{"commas", "1234567"}, "1,234,567\n"},
		{[]string{"abbrev", "1500", "--max-places", "1"}, "1.5K\n"},
		{[]string{"abbrev", "2500", "--annotate", "--letter", "K"}, "2.5K\n"},
		{[]string{"abbrev", "2500000", "--annotate", "--letter", "K"}, "2500K\n"},
		{[]string{"color", "0.5", "--stop", "1=#ffffff", "--stop", "0=#000000"}, "#7f7f7f\n"},
		{[]string{"color", "0.25", "--stop", "0=blue", "--stop", "0.5=red", "--stop", "1=lime"}, "#7f007f\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestGUIDCommand(t *testing.T) {
	out, _, err := execute(t, "guid")
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^[0-9a-f-]{36}\n$`).MatchString(out) {
		t.Errorf("guid printed %q", out)
	}
}

func TestInvalidArguments(t *testing.T) {
	for _, args := range [][]string{
		{"color", "red"},
		{"commas"},
		{"abbrev", "x"},
		{"abbrev", "2500", "--annotate"},
		{"color", "0.5", "--stop", "0.5"},
		{"color", "0.5", "--stop", "0=red", "--stop", "0=blue"},
		{"color", "0.5", "--stop", "0=notacolor"},
		{"merge"},
		{"guid", "extra"},
		{"merge", "job.yaml", "--log-level", "loud"},
	} {
		if _, _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	job := filepath.Join(dir, "job.yaml")
	body := `format: image/png
instructions:
  - src: |-
      <?xml version="1.0"?>
      <svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"><rect width="4" height="4" style="fill:#ff0000;"/></svg>
`
	if err := os.WriteFile(job, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "merge", job)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Errorf("merge printed %q", out)
	}

	if _, _, err := execute(t, "merge", filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing job")
	}
}

func TestLuaCommand(t *testing.T) {
	script := filepath.Join(t.TempDir(), "s.lua")
	if err := os.WriteFile(script, []byte(`print("hi") return helpers.filename_from_path("a/b/c.txt")`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "lua", script)
	if err != nil {
		t.Fatal(err)
	}
	if out != "hi\nc.txt\n" {
		t.Errorf("lua printed %q", out)
	}
}

func TestProfilingFlags(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")

	if _, _, err := execute(t, "commas", "1000", "--cpuprofile", cpu, "--memprofile", mem); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{cpu, mem} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("profile %s not written: %v", p, err)
		}
	}
}

func TestMergeCommandStrict(t *testing.T) {
	job := filepath.Join(t.TempDir(), "job.yaml")
	body := `format: image/gif
instructions:
  - src: |-
      <?xml version="1.0"?>
      <svg xmlns="http://www.w3.org/2000/svg" width="2" height="2"><rect width="2" height="2" style="fill:#00ff00;"/></svg>
`
	if err := os.WriteFile(job, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := execute(t, "merge", job)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/png;base64,") {
		t.Errorf("merge printed %q", out)
	}
	if !strings.Contains(errOut, "job warning") || !strings.Contains(errOut, "image/gif") {
		t.Errorf("warning not logged, stderr: %q", errOut)
	}

	if _, _, err := execute(t, "merge", "--strict", job); err == nil {
		t.Error("expected --strict to reject an unknown format")
	}
}
