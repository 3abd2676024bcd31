// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gitlog derives file creation and update dates from git history.
//
// Dates come from the git CLI rather than a Go git library: shelling out is
// simpler and honors whatever repository configuration the user has.
package gitlog

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const binGit = "git"

// dateFormat is the fixed format written into notebook headers.
const dateFormat = "2006-01-02"

// dateLayouts are the accepted git %cd output layouts. iso-strict is
// requested explicitly; the default layout is kept as a fallback for git
// versions that ignore --date.
var dateLayouts = []string{
	time.RFC3339,
	"Mon Jan 2 15:04:05 2006 -0700",
}

// executor abstracts command execution for testing.
type executor interface {
	Output(dir, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) Output(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

var defaultExec executor = &osExecutor{}

// Log queries commit dates for individual files.
type Log struct {
	exec executor
}

// New returns a Log backed by the git binary on PATH.
func New() *Log {
	return &Log{exec: defaultExec}
}

// FirstCommitDate returns the date of the commit that introduced path,
// formatted YYYY-MM-DD. Renames are followed.
func (l *Log) FirstCommitDate(path string) (string, error) {
	return l.dateQuery(path,
		"log", "--diff-filter=A", "--follow", "--format=%cd", "--date=iso-strict", "-1", "--")
}

// LastCommitDate returns the date of the most recent commit touching path,
// formatted YYYY-MM-DD.
func (l *Log) LastCommitDate(path string) (string, error) {
	return l.dateQuery(path,
		"log", "--format=%cd", "--date=iso-strict", "-1", "--")
}

// dateQuery runs git in the file's directory so the enclosing repository is
// discovered, then parses the single date line git prints.
func (l *Log) dateQuery(path string, args ...string) (string, error) {
	dir := filepath.Dir(path)
	args = append(args, filepath.Base(path))

	out, err := l.exec.Output(dir, binGit, args...)
	if err != nil {
		return "", fmt.Errorf("running git log for %s: %w", path, err)
	}

	raw := strings.TrimSpace(string(out))
	if raw == "" {
		return "", fmt.Errorf("no commit history for %s", path)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateFormat), nil
		}
	}
	return "", fmt.Errorf("unparseable commit date %q for %s", raw, path)
}
