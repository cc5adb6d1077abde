package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-title", "Mourir", "-workers", "2", "a.txt"}, 8)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.title != "Mourir" || opts.workers != 2 || len(opts.inputs) != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}

	if _, err := parseFlags(nil, 8); err == nil {
		t.Fatalf("expect error without input")
	}
	if _, err := parseFlags([]string{"-workers", "0", "a.txt"}, 8); err == nil {
		t.Fatalf("expect error for zero workers")
	}
	if _, err := parseFlags([]string{"-url", "https://amdm.ru/x"}, 8); err != nil {
		t.Fatalf("url alone is enough: %v", err)
	}
}

func TestRunSingleToStdout(t *testing.T) {
	var out bytes.Buffer
	opts := options{title: "Mourir", workers: 1, inputs: []string{"-"}}

	err := run(context.Background(), opts, strings.NewReader("Je l'aime à mourir*"), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	html := out.String()
	if !strings.Contains(html, "<title>Mourir</title>") || !strings.Contains(html, `data-gap="mot1"`) {
		t.Fatalf("unexpected document")
	}
}

func TestRunBatch(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "games")
	for name, text := range map[string]string{"boheme.txt": "je vous parle* d'un temps*", "quitte.txt": "oublier*"} {
		if err := os.WriteFile(filepath.Join(in, name), []byte(text), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	var stdout bytes.Buffer
	opts := options{
		title:   "ignored for batches",
		out:     out,
		workers: 2,
		inputs:  []string{filepath.Join(in, "boheme.txt"), filepath.Join(in, "quitte.txt")},
	}
	if err := run(context.Background(), opts, nil, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"boheme_game.html", "quitte_game.html"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if lines := strings.Count(stdout.String(), "\n"); lines != 2 {
		t.Fatalf("expect one line per game, got %q", stdout.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	opts := options{workers: 1, inputs: []string{filepath.Join(t.TempDir(), "absent.txt")}}
	if err := run(context.Background(), opts, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expect error for a missing file")
	}
}
