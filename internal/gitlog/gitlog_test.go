// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gitlog

import (
	"errors"
	"strings"
	"testing"
)

// mockExecutor returns a fixed output and records the invocation.
type mockExecutor struct {
	output  string
	err     error
	gotDir  string
	gotName string
	gotArgs []string
}

func (m *mockExecutor) Output(dir, name string, args ...string) ([]byte, error) {
	m.gotDir = dir
	m.gotName = name
	m.gotArgs = args
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.output), nil
}

func TestFirstCommitDate(t *testing.T) {
	exec := &mockExecutor{output: "2018-01-05T20:14:51+08:00\n"}
	l := &Log{exec: exec}

	got, err := l.FirstCommitDate("/repo/trees/decision_tree.ipynb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2018-01-05" {
		t.Errorf("got date %q, want %q", got, "2018-01-05")
	}

	if exec.gotDir != "/repo/trees" {
		t.Errorf("git should run in the file's directory, got %q", exec.gotDir)
	}
	if exec.gotName != "git" {
		t.Errorf("expected git binary, got %q", exec.gotName)
	}
	want := "log --diff-filter=A --follow --format=%cd --date=iso-strict -1 -- decision_tree.ipynb"
	if got := strings.Join(exec.gotArgs, " "); got != want {
		t.Errorf("got args %q, want %q", got, want)
	}
}

func TestLastCommitDate(t *testing.T) {
	exec := &mockExecutor{output: "2019-07-21T09:02:00-07:00\n"}
	l := &Log{exec: exec}

	got, err := l.LastCommitDate("/repo/trees/decision_tree.ipynb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2019-07-21" {
		t.Errorf("got date %q, want %q", got, "2019-07-21")
	}
	want := "log --format=%cd --date=iso-strict -1 -- decision_tree.ipynb"
	if got := strings.Join(exec.gotArgs, " "); got != want {
		t.Errorf("got args %q, want %q", got, want)
	}
}

func TestDateQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		exec   *mockExecutor
		errMsg string
	}{
		{
			name:   "empty output means no history",
			exec:   &mockExecutor{output: "\n"},
			errMsg: "no commit history",
		},
		{
			name:   "unparseable date",
			exec:   &mockExecutor{output: "not a date\n"},
			errMsg: "unparseable commit date",
		},
		{
			name:   "git failure propagates",
			exec:   &mockExecutor{err: errors.New("exit status 128")},
			errMsg: "running git log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Log{exec: tt.exec}
			_, err := l.FirstCommitDate("/repo/nb.ipynb")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q should contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestDateQueryFallbackLayout(t *testing.T) {
	// Older git ignores --date and prints the default layout.
	exec := &mockExecutor{output: "Fri Jan 5 20:14:51 2018 +0800\n"}
	l := &Log{exec: exec}

	got, err := l.LastCommitDate("/repo/nb.ipynb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2018-01-05" {
		t.Errorf("got date %q, want %q", got, "2018-01-05")
	}
}
