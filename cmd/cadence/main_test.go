// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/cadence/internal/dataset"
)

func TestRun_Dispatch(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no command", args: nil, wantCode: exitUsage, wantStderr: "Usage: cadence"},
		{name: "unknown command", args: []string{"train"}, wantCode: exitUsage, wantStderr: `unknown command "train"`},
		{name: "help", args: []string{"help"}, wantCode: exitOK, wantStdout: "Commands:"},
		{name: "dash help", args: []string{"--help"}, wantCode: exitOK, wantStdout: "Commands:"},
		{name: "load without inputs", args: []string{"load"}, wantCode: exitUsage, wantStderr: "nothing to load"},
		{name: "run with stray args", args: []string{"run", "extra"}, wantCode: exitUsage, wantStderr: "unexpected arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestReadDatasets_RejectsNonYAMLFixture(t *testing.T) {
	_, err := readDatasets(dataset.Paths{}, []string{"fixtures.json"})
	if !errors.Is(err, errUsage) {
		t.Fatalf("readDatasets() error = %v, want errUsage", err)
	}
}

func TestReadDatasets_MergesFixtures(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yml")

	writeFile(t, first, `songs:
  - song_id: s1
    song_name: First
    artist_name: Band
interactions:
  - user_id: alice
    song_id: s1
    count: 3
`)
	writeFile(t, second, `friends:
  - user_id: alice
    friend_id: bob
`)

	d, err := readDatasets(dataset.Paths{}, []string{first, second})
	if err != nil {
		t.Fatalf("readDatasets() error = %v", err)
	}
	if len(d.Songs) != 1 || len(d.Interactions) != 1 || len(d.FriendEdges) != 1 {
		t.Errorf("merged dataset = %d songs, %d interactions, %d friends; want 1 each",
			len(d.Songs), len(d.Interactions), len(d.FriendEdges))
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
