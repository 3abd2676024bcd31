// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/knowledge-publisher/internal/krepo"
)

func writeTreeFile(t *testing.T, root string, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPublishTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "machine-learning")

	good := writeTreeFile(t, root, "trees/decision_tree.ipynb", wellFormed)
	bad := writeTreeFile(t, root, "trees/broken.ipynb", "{not json")
	marked := writeTreeFile(t, root, "trees/old-converted.ipynb", wellFormed)
	writeTreeFile(t, root, "trees/notes.txt", "not a notebook")
	writeTreeFile(t, root, "README.md", "# readme")

	git := &fakeGit{created: "2018-01-05", updated: "2019-07-21"}
	reg := &fakeRegistrar{}
	rec := &fakeRecorder{}
	p := New(testConfig("/kr"), git, reg, rec)

	var out strings.Builder
	result, err := p.PublishTree(context.Background(), root, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Published)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Total())
	assert.True(t, result.HasFailures())

	assert.Equal(t, 1, reg.calls, "only the well-formed notebook reaches the converter")

	log := out.String()
	assert.Contains(t, log, "published: "+good)
	assert.Contains(t, log, "failed:    "+bad)
	assert.Contains(t, log, "skipped:   "+marked)
	assert.NotContains(t, log, "notes.txt")
	assert.Contains(t, log, "Batch summary: 1 published, 1 skipped, 1 failed (total: 3)")

	// Only the successful registration reaches the ledger.
	require.Len(t, rec.records, 1)
	assert.Equal(t, "decision_tree", rec.records[0].Tag)
}

func TestPublishTreeRegistrationFailureIsPerFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "machine-learning")
	writeTreeFile(t, root, "a/first.ipynb", wellFormed)
	writeTreeFile(t, root, "b/second.ipynb", wellFormed)

	git := &fakeGit{created: "2018-01-05", updated: "2019-07-21"}
	reg := &fakeRegistrar{result: krepo.RunResult{ExitCode: 3, Output: "repo locked"}}
	rec := &fakeRecorder{}
	p := New(testConfig("/kr"), git, reg, rec)

	var out strings.Builder
	result, err := p.PublishTree(context.Background(), root, &out)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Published)
	assert.Equal(t, 2, result.Failed, "a failing registrar marks each file failed, not the batch")
	assert.Equal(t, 2, reg.calls)
	assert.Contains(t, out.String(), "knowledge_repo exited 3")

	// Outcomes are still recorded, with the exit code.
	require.Len(t, rec.records, 2)
	assert.Equal(t, 3, rec.records[0].ExitCode)
	assert.Equal(t, "repo locked", rec.records[0].Output)
}

func TestPublishTreeWithoutLedger(t *testing.T) {
	root := filepath.Join(t.TempDir(), "machine-learning")
	writeTreeFile(t, root, "nb.ipynb", wellFormed)

	p := New(testConfig("/kr"), &fakeGit{created: "2018-01-05", updated: "2019-07-21"}, &fakeRegistrar{}, nil)

	var out strings.Builder
	result, err := p.PublishTree(context.Background(), root, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Published)
}

func TestConvertedPath(t *testing.T) {
	assert.Equal(t, "/a/b/nb-converted.ipynb", convertedPath("/a/b/nb.ipynb"))
}
